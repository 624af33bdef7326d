package validators

import (
	"bytes"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/codec"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/orm"
	"golang.org/x/crypto/ed25519"
)

// Validator is a member of the validator set. PubKey is only recorded in
// the keyed scheme, in the account scheme the key is owned by the
// KeyRotator.
type Validator struct {
	Address poa.Address `json:"address"`
	PubKey  []byte      `json:"pubkey,omitempty"`
}

var _ orm.Model = (*Validator)(nil)

func (v *Validator) Marshal() ([]byte, error) {
	w := codec.NewWriter()
	w.Bytes(1, v.Address)
	w.Bytes(2, v.PubKey)
	return w.Data()
}

func (v *Validator) Unmarshal(raw []byte) error {
	*v = Validator{}
	r := codec.NewReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			v.Address = r.Bytes()
		case 2:
			v.PubKey = r.Bytes()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

func (v *Validator) Validate() error {
	errs := errors.AppendField(nil, "Address", v.Address.Validate())
	if v.PubKey != nil {
		errs = errors.AppendField(errs, "PubKey", validatePubKey(v.PubKey))
	}
	return errs
}

func validatePubKey(pubKey []byte) error {
	if len(pubKey) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInput, "ed25519 key must be %d bytes, got %d", ed25519.PublicKeySize, len(pubKey))
	}
	return nil
}

// Proposal marks an open proposal. It is created together with the first
// vote.
type Proposal struct {
	// Height is the block height the proposal was opened at.
	Height int64
}

var _ orm.Model = (*Proposal)(nil)

func (p *Proposal) Marshal() ([]byte, error) {
	w := codec.NewWriter()
	w.Int64(1, p.Height)
	return w.Data()
}

func (p *Proposal) Unmarshal(raw []byte) error {
	*p = Proposal{}
	r := codec.NewReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			p.Height = r.Int64()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

func (p *Proposal) Validate() error {
	if p.Height < 0 {
		return errors.Field("Height", errors.ErrModel, "must not be negative")
	}
	return nil
}

// Expired returns true if a proposal opened at p.Height is no longer open
// at given height.
func (p *Proposal) Expired(ttl int64, height int64) bool {
	return ttl > 0 && height >= p.Height+ttl
}

// VoteRecord lists, in order, the distinct accounts that voted for a
// proposal.
type VoteRecord struct {
	Voters []poa.Address
}

var _ orm.Model = (*VoteRecord)(nil)

func (v *VoteRecord) Marshal() ([]byte, error) {
	raw := make([][]byte, len(v.Voters))
	for i, a := range v.Voters {
		raw[i] = a
	}
	w := codec.NewWriter()
	w.RepeatedBytes(1, raw)
	return w.Data()
}

func (v *VoteRecord) Unmarshal(raw []byte) error {
	*v = VoteRecord{}
	r := codec.NewReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			v.Voters = append(v.Voters, r.Bytes())
		default:
			r.Skip()
		}
	}
	return r.Err()
}

func (v *VoteRecord) Validate() error {
	var errs error
	for i, a := range v.Voters {
		if err := a.Validate(); err != nil {
			errs = errors.Append(errs, errors.Field("Voters", err, "voter %d", i))
		}
		for _, b := range v.Voters[:i] {
			if a.Equals(b) {
				errs = errors.Append(errs, errors.Field("Voters", ErrDuplicateVote, "voter %d", i))
			}
		}
	}
	return errs
}

// Has returns true if the account voted.
func (v *VoteRecord) Has(voter poa.Address) bool {
	for _, a := range v.Voters {
		if a.Equals(voter) {
			return true
		}
	}
	return false
}

// Candidate is what a proposal is about: an account and, in the keyed
// scheme, its operating key.
type Candidate struct {
	Address poa.Address
	PubKey  []byte
}

// Key returns the candidate key used to identify proposals and votes. All
// keys of an account share the account address as prefix.
func (c Candidate) Key(keyed bool) []byte {
	if !keyed {
		return c.Address
	}
	var buf bytes.Buffer
	buf.Write(c.Address)
	buf.Write(c.PubKey)
	return buf.Bytes()
}
