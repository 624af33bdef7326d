package session

import (
	"github.com/iov-one/poa/codec"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/orm"
	"golang.org/x/crypto/ed25519"
)

// SessionKey is an operating key of an account. It is used for bindings,
// for the queued and for the active set.
type SessionKey struct {
	PubKey []byte `json:"pubkey"`
}

var _ orm.Model = (*SessionKey)(nil)

func (k *SessionKey) Marshal() ([]byte, error) {
	w := codec.NewWriter()
	w.Bytes(1, k.PubKey)
	return w.Data()
}

func (k *SessionKey) Unmarshal(raw []byte) error {
	*k = SessionKey{}
	r := codec.NewReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			k.PubKey = r.Bytes()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

func (k *SessionKey) Validate() error {
	return errors.Field("PubKey", validatePubKey(k.PubKey), "invalid operating key")
}

func validatePubKey(pubKey []byte) error {
	switch len(pubKey) {
	case 0:
		return errors.ErrEmpty
	case ed25519.PublicKeySize:
		return nil
	default:
		return errors.Wrapf(errors.ErrInput, "ed25519 key must be %d bytes, got %d", ed25519.PublicKeySize, len(pubKey))
	}
}

// State is the progress of the session schedule.
type State struct {
	// RotationRequested is set when the queued set changed and must be
	// applied at the next block.
	RotationRequested bool
	// LastBoundary is the height of the last session boundary.
	LastBoundary int64
}

var _ orm.Model = (*State)(nil)

func (s *State) Marshal() ([]byte, error) {
	w := codec.NewWriter()
	w.Bool(1, s.RotationRequested)
	w.Int64(2, s.LastBoundary)
	return w.Data()
}

func (s *State) Unmarshal(raw []byte) error {
	*s = State{}
	r := codec.NewReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			s.RotationRequested = r.Bool()
		case 2:
			s.LastBoundary = r.Int64()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

func (s *State) Validate() error {
	if s.LastBoundary < 0 {
		return errors.Field("LastBoundary", errors.ErrModel, "must not be negative")
	}
	return nil
}
