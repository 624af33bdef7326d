package sigs

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/codec"
	"github.com/iov-one/poa/errors"
	"golang.org/x/crypto/ed25519"
)

// StdSignature is a signature of the transaction together with the public
// key that produced it and the signer sequence it was created for.
type StdSignature struct {
	PubKey    []byte
	Signature []byte
	Sequence  int64
}

func (s *StdSignature) Marshal() ([]byte, error) {
	w := codec.NewWriter()
	w.Bytes(1, s.PubKey)
	w.Bytes(2, s.Signature)
	w.Int64(3, s.Sequence)
	return w.Data()
}

func (s *StdSignature) Unmarshal(raw []byte) error {
	*s = StdSignature{}
	r := codec.NewReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			s.PubKey = r.Bytes()
		case 2:
			s.Signature = r.Bytes()
		case 3:
			s.Sequence = r.Int64()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if err := ValidatePubKey(s.PubKey); err != nil {
		return err
	}
	if len(s.Signature) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}

// ValidatePubKey returns an error unless the key is an ed25519 public key.
func ValidatePubKey(pubKey []byte) error {
	switch n := len(pubKey); {
	case n == 0:
		return errors.Wrap(ErrInvalidPubKey, "missing public key")
	case n != ed25519.PublicKeySize:
		return errors.Wrapf(ErrInvalidPubKey, "ed25519 key must be %d bytes, got %d", ed25519.PublicKeySize, n)
	}
	return nil
}

// Condition returns the condition fulfilled by a valid signature of the
// given ed25519 public key.
func Condition(pubKey []byte) poa.Condition {
	return poa.NewCondition("sigs", "ed25519", pubKey)
}

// SignedTx represents a transaction that contains signatures,
// which can be verified by the Decorator
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the Msg.
	GetSignBytes() ([]byte, error)
	// GetSignatures returns the signature of signers who signed the Msg.
	GetSignatures() []*StdSignature
}
