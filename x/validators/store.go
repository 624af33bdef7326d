package validators

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/orm"
)

// Kind distinguishes the two independent proposal namespaces.
type Kind int

const (
	AddKind Kind = iota
	RemoveKind
)

func (k Kind) String() string {
	if k == AddKind {
		return "add"
	}
	return "remove"
}

// GovernanceStore holds the validator set, the proposal markers and the
// vote records. All data is stored in buckets of the given KVStore, it
// keeps no state of its own.
type GovernanceStore struct {
	validators orm.ModelBucket
	proposals  [2]orm.Bucket
	votes      [2]orm.Bucket
}

// NewGovernanceStore returns a store over the governance buckets.
func NewGovernanceStore() GovernanceStore {
	return GovernanceStore{
		validators: orm.NewModelBucket("poaset", &Validator{}),
		proposals: [2]orm.Bucket{
			AddKind:    orm.NewBucket("poaaddp", orm.NewSimpleObj(nil, &Proposal{})),
			RemoveKind: orm.NewBucket("poarmp", orm.NewSimpleObj(nil, &Proposal{})),
		},
		votes: [2]orm.Bucket{
			AddKind:    orm.NewBucket("poaaddv", orm.NewSimpleObj(nil, &VoteRecord{})),
			RemoveKind: orm.NewBucket("poarmv", orm.NewSimpleObj(nil, &VoteRecord{})),
		},
	}
}

// IsValidator returns true if the account holds validator status.
func (s GovernanceStore) IsValidator(db poa.ReadOnlyKVStore, addr poa.Address) (bool, error) {
	switch err := s.validators.Has(db, addr); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

// Validators returns the validator set ordered by address.
func (s GovernanceStore) Validators(db poa.ReadOnlyKVStore) ([]Validator, error) {
	objs, err := s.validators.PrefixScan(db, nil)
	if err != nil {
		return nil, errors.Wrap(err, "scan validators")
	}
	res := make([]Validator, 0, len(objs))
	for _, o := range objs {
		res = append(res, *o.Value().(*Validator))
	}
	return res, nil
}

// Addresses returns the accounts of the validator set ordered by address.
func (s GovernanceStore) Addresses(db poa.ReadOnlyKVStore) ([]poa.Address, error) {
	vals, err := s.Validators(db)
	if err != nil {
		return nil, err
	}
	addrs := make([]poa.Address, len(vals))
	for i, v := range vals {
		addrs[i] = v.Address
	}
	return addrs, nil
}

// AddValidator inserts the account into the validator set.
func (s GovernanceStore) AddValidator(db poa.KVStore, v Validator) error {
	return s.validators.Put(db, v.Address, &v)
}

// RemoveValidator deletes the account from the validator set.
func (s GovernanceStore) RemoveValidator(db poa.KVStore, addr poa.Address) error {
	return s.validators.Delete(db, addr)
}

// Proposal returns the open proposal of given kind, or nil.
func (s GovernanceStore) Proposal(db poa.ReadOnlyKVStore, kind Kind, key []byte) (*Proposal, error) {
	obj, err := s.proposals[kind].Get(db, key)
	if err != nil || obj == nil {
		return nil, err
	}
	return obj.Value().(*Proposal), nil
}

// Votes returns the vote record of given proposal. A missing record is
// returned as an empty one.
func (s GovernanceStore) Votes(db poa.ReadOnlyKVStore, kind Kind, key []byte) (*VoteRecord, error) {
	obj, err := s.votes[kind].Get(db, key)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return &VoteRecord{}, nil
	}
	return obj.Value().(*VoteRecord), nil
}

// Vote appends the voter to the vote record of the proposal, opening the
// proposal at given height if it does not exist. A repeated vote fails
// with ErrDuplicateVote.
func (s GovernanceStore) Vote(db poa.KVStore, kind Kind, key []byte, voter poa.Address, height int64) error {
	p, err := s.Proposal(db, kind, key)
	if err != nil {
		return err
	}
	if p == nil {
		obj := orm.NewSimpleObj(key, &Proposal{Height: height})
		if err := s.proposals[kind].Save(db, obj); err != nil {
			return errors.Wrap(err, "open proposal")
		}
	}

	votes, err := s.Votes(db, kind, key)
	if err != nil {
		return err
	}
	if votes.Has(voter) {
		return errors.Wrapf(ErrDuplicateVote, "%s already voted", voter)
	}
	votes.Voters = append(votes.Voters, voter.Clone())
	if err := s.votes[kind].Save(db, orm.NewSimpleObj(key, votes)); err != nil {
		return errors.Wrap(err, "save votes")
	}
	return nil
}

// Discard deletes a single proposal together with its votes.
func (s GovernanceStore) Discard(db poa.KVStore, kind Kind, key []byte) error {
	if err := s.proposals[kind].Delete(db, key); err != nil {
		return err
	}
	return s.votes[kind].Delete(db, key)
}

// Clear deletes every proposal and vote record, of both kinds, about the
// given account.
func (s GovernanceStore) Clear(db poa.KVStore, account poa.Address) error {
	for _, kind := range []Kind{AddKind, RemoveKind} {
		for _, b := range []orm.Bucket{s.proposals[kind], s.votes[kind]} {
			objs, err := b.PrefixScan(db, account)
			if err != nil {
				return err
			}
			for _, o := range objs {
				if err := b.Delete(db, o.Key()); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// RegisterQuery registers the governance buckets for queries.
func (s GovernanceStore) RegisterQuery(qr poa.QueryRouter) {
	s.validators.Register("poa/validators", qr)
	s.proposals[AddKind].Register("poa/addprops", qr)
	s.proposals[RemoveKind].Register("poa/rmprops", qr)
	s.votes[AddKind].Register("poa/addvotes", qr)
	s.votes[RemoveKind].Register("poa/rmvotes", qr)
}
