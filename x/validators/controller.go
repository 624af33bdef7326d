package validators

import (
	"bytes"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
)

// KeyRotator schedules operating keys for the next session.
type KeyRotator interface {
	// Register queues the account for the next session. The given key is
	// used if not empty, otherwise the key previously bound to the
	// account. The key that was queued is returned. ErrKeyResolution is
	// returned if no key can be found.
	Register(db poa.KVStore, account poa.Address, pubKey []byte) ([]byte, error)
	// Revoke removes the account from the next session.
	Revoke(db poa.KVStore, account poa.Address) error
	// Rotate requests a session boundary at the next block.
	Rotate(db poa.KVStore) error
	// CurrentSize returns the number of accounts queued for the next
	// session.
	CurrentSize(db poa.ReadOnlyKVStore) (int, error)
}

// Controller implements the governance operations on top of the
// GovernanceStore.
type Controller struct {
	store   GovernanceStore
	rotator KeyRotator
}

// NewController returns a controller handing admissions and removals to
// the rotator.
func NewController(rotator KeyRotator) Controller {
	return Controller{
		store:   NewGovernanceStore(),
		rotator: rotator,
	}
}

// Configuration returns the governance configuration.
func (c Controller) Configuration(db poa.ReadOnlyKVStore) (*Configuration, error) {
	return loadConf(db)
}

// CurrentValidators returns the validator set, or nil if it is empty.
func (c Controller) CurrentValidators(db poa.ReadOnlyKVStore) ([]Validator, error) {
	vals, err := c.store.Validators(db)
	if err != nil || len(vals) == 0 {
		return nil, err
	}
	return vals, nil
}

// ProposeAdd records the caller vote for admitting the candidate.
func (c Controller) ProposeAdd(ctx poa.Context, db poa.KVStore, caller poa.Address, cand Candidate) (*Event, error) {
	conf, err := c.prepare(db, cand)
	if err != nil {
		return nil, err
	}
	if err := c.requireValidator(db, caller); err != nil {
		return nil, err
	}
	switch ok, err := c.store.IsValidator(db, cand.Address); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(ErrAlreadyValidator, "%s", cand.Address)
	}
	if err := c.vote(ctx, db, conf, AddKind, cand, caller); err != nil {
		return nil, err
	}
	return &Event{
		Name:      EventValidatorProposed,
		Proposer:  caller,
		Candidate: cand.Address,
		PubKey:    cand.PubKey,
	}, nil
}

// ResolveAdd admits the candidate if every current validator voted for it.
func (c Controller) ResolveAdd(ctx poa.Context, db poa.KVStore, cand Candidate) (*Event, error) {
	conf, err := c.prepare(db, cand)
	if err != nil {
		return nil, err
	}
	switch ok, err := c.store.IsValidator(db, cand.Address); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(ErrAlreadyValidator, "%s", cand.Address)
	}

	members, err := c.store.Addresses(db)
	if err != nil {
		return nil, err
	}
	if err := c.tally(ctx, db, conf, AddKind, cand, members, len(members)); err != nil {
		return nil, err
	}
	return c.admit(db, conf, cand)
}

// AdminAdd admits the candidate without a vote.
func (c Controller) AdminAdd(ctx poa.Context, db poa.KVStore, cand Candidate) (*Event, error) {
	conf, err := c.prepare(db, cand)
	if err != nil {
		return nil, err
	}
	switch ok, err := c.store.IsValidator(db, cand.Address); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(ErrAlreadyValidator, "%s", cand.Address)
	}
	return c.admit(db, conf, cand)
}

// ProposeRemove records the caller vote for removing the candidate.
func (c Controller) ProposeRemove(ctx poa.Context, db poa.KVStore, caller poa.Address, cand Candidate) (*Event, error) {
	conf, err := c.prepare(db, cand)
	if err != nil {
		return nil, err
	}
	if err := c.requireValidator(db, caller); err != nil {
		return nil, err
	}
	if _, err := c.member(db, conf, cand); err != nil {
		return nil, err
	}
	if caller.Equals(cand.Address) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "cannot vote on own removal")
	}
	if err := c.vote(ctx, db, conf, RemoveKind, cand, caller); err != nil {
		return nil, err
	}
	return &Event{
		Name:      EventValidatorRemovalProposed,
		Proposer:  caller,
		Candidate: cand.Address,
		PubKey:    cand.PubKey,
	}, nil
}

// ResolveRemove removes the candidate if every other validator voted for
// it.
func (c Controller) ResolveRemove(ctx poa.Context, db poa.KVStore, cand Candidate) (*Event, error) {
	conf, err := c.prepare(db, cand)
	if err != nil {
		return nil, err
	}
	val, err := c.member(db, conf, cand)
	if err != nil {
		return nil, err
	}

	members, err := c.store.Addresses(db)
	if err != nil {
		return nil, err
	}
	voters := make([]poa.Address, 0, len(members))
	for _, m := range members {
		if !m.Equals(cand.Address) {
			voters = append(voters, m)
		}
	}
	if err := c.tally(ctx, db, conf, RemoveKind, cand, voters, len(members)-1); err != nil {
		return nil, err
	}
	return c.remove(db, val)
}

// AdminRemove removes the candidate without a vote.
func (c Controller) AdminRemove(ctx poa.Context, db poa.KVStore, cand Candidate) (*Event, error) {
	conf, err := c.prepare(db, cand)
	if err != nil {
		return nil, err
	}
	val, err := c.member(db, conf, cand)
	if err != nil {
		return nil, err
	}
	return c.remove(db, val)
}

// prepare loads the configuration and checks the candidate against the key
// scheme.
func (c Controller) prepare(db poa.ReadOnlyKVStore, cand Candidate) (*Configuration, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if err := cand.Address.Validate(); err != nil {
		return nil, errors.Field("Candidate", err, "invalid candidate")
	}
	switch {
	case conf.Keyed() && len(cand.PubKey) == 0:
		return nil, errors.Field("PubKey", errors.ErrEmpty, "required by the keyed scheme")
	case conf.Keyed():
		if err := validatePubKey(cand.PubKey); err != nil {
			return nil, errors.Field("PubKey", err, "invalid operating key")
		}
	case len(cand.PubKey) != 0:
		return nil, errors.Field("PubKey", errors.ErrInput, "not allowed by the account scheme")
	}
	return conf, nil
}

func (c Controller) requireValidator(db poa.ReadOnlyKVStore, caller poa.Address) error {
	if len(caller) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "caller not authenticated")
	}
	ok, err := c.store.IsValidator(db, caller)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not a validator", caller)
	}
	return nil
}

// member returns the validator record of the candidate. In the keyed scheme
// the key must match the recorded one.
func (c Controller) member(db poa.ReadOnlyKVStore, conf *Configuration, cand Candidate) (*Validator, error) {
	var val Validator
	switch err := c.store.validators.One(db, cand.Address, &val); {
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(ErrNotValidator, "%s", cand.Address)
	case err != nil:
		return nil, err
	}
	if conf.Keyed() && !bytes.Equal(val.PubKey, cand.PubKey) {
		return nil, errors.Wrapf(ErrNotValidator, "%s is not a validator with this key", cand.Address)
	}
	return &val, nil
}

func (c Controller) vote(ctx poa.Context, db poa.KVStore, conf *Configuration, kind Kind, cand Candidate, voter poa.Address) error {
	key := cand.Key(conf.Keyed())
	height, _ := poa.GetHeight(ctx)

	p, err := c.store.Proposal(db, kind, key)
	if err != nil {
		return err
	}
	if p != nil && p.Expired(conf.ProposalTTL, height) {
		poa.GetLogger(ctx).Debug("restarting expired proposal",
			"kind", kind, "candidate", cand.Address, "opened", p.Height)
		if err := c.store.Discard(db, kind, key); err != nil {
			return errors.Wrap(err, "discard expired proposal")
		}
	}
	return c.store.Vote(db, kind, key, voter, height)
}

// tally ensures an open proposal has exactly want votes from the pool.
// Votes of accounts that are not in the pool are not counted. A proposal
// nobody can vote on never passes.
func (c Controller) tally(ctx poa.Context, db poa.ReadOnlyKVStore, conf *Configuration, kind Kind, cand Candidate, pool []poa.Address, want int) error {
	if want == 0 {
		return errors.Wrapf(ErrInsufficientVotes, "no validator can vote on %s %s", kind, cand.Address)
	}
	key := cand.Key(conf.Keyed())
	p, err := c.store.Proposal(db, kind, key)
	if err != nil {
		return err
	}
	if p == nil {
		return errors.Wrapf(ErrProposalNotFound, "%s %s", kind, cand.Address)
	}
	if height, ok := poa.GetHeight(ctx); ok && p.Expired(conf.ProposalTTL, height) {
		return errors.Wrapf(errors.ErrExpired, "proposal opened at %d", p.Height)
	}

	votes, err := c.store.Votes(db, kind, key)
	if err != nil {
		return err
	}
	var got int
	for _, a := range pool {
		if votes.Has(a) {
			got++
		}
	}
	if got != want {
		return errors.Wrapf(ErrInsufficientVotes, "%d of %d", got, want)
	}
	return nil
}

func (c Controller) admit(db poa.KVStore, conf *Configuration, cand Candidate) (*Event, error) {
	pubKey, err := c.rotator.Register(db, cand.Address, cand.PubKey)
	if err != nil {
		return nil, errors.Wrap(err, "register key")
	}
	if err := c.rotator.Rotate(db); err != nil {
		return nil, errors.Wrap(err, "rotate")
	}

	val := Validator{Address: cand.Address}
	if conf.Keyed() {
		val.PubKey = cand.PubKey
	}
	if err := c.store.AddValidator(db, val); err != nil {
		return nil, errors.Wrap(err, "add validator")
	}
	if err := c.store.Clear(db, cand.Address); err != nil {
		return nil, errors.Wrap(err, "clear proposals")
	}
	return &Event{
		Name:      EventValidatorAdded,
		Candidate: cand.Address,
		PubKey:    pubKey,
	}, nil
}

// remove deletes the validator. The last validator cannot be removed.
func (c Controller) remove(db poa.KVStore, val *Validator) (*Event, error) {
	members, err := c.store.Addresses(db)
	if err != nil {
		return nil, err
	}
	if len(members) <= 1 {
		return nil, errors.Wrapf(errors.ErrState, "%s is the last validator", val.Address)
	}
	if err := c.rotator.Revoke(db, val.Address); err != nil {
		return nil, errors.Wrap(err, "revoke key")
	}
	if err := c.rotator.Rotate(db); err != nil {
		return nil, errors.Wrap(err, "rotate")
	}
	if err := c.store.RemoveValidator(db, val.Address); err != nil {
		return nil, errors.Wrap(err, "remove validator")
	}
	if err := c.store.Clear(db, val.Address); err != nil {
		return nil, errors.Wrap(err, "clear proposals")
	}
	return &Event{
		Name:      EventValidatorRemoved,
		Candidate: val.Address,
		PubKey:    val.PubKey,
	}, nil
}

// Seed adds a validator without touching proposals. It is used to load the
// genesis validator set.
func (c Controller) Seed(db poa.KVStore, conf *Configuration, val Validator) error {
	if ok, err := c.store.IsValidator(db, val.Address); err != nil {
		return err
	} else if ok {
		return errors.Wrapf(ErrAlreadyValidator, "%s", val.Address)
	}
	if _, err := c.rotator.Register(db, val.Address, val.PubKey); err != nil {
		return errors.Wrapf(err, "register key of %s", val.Address)
	}
	if !conf.Keyed() {
		val.PubKey = nil
	}
	return c.store.AddValidator(db, val)
}

func (c Controller) observe(db poa.ReadOnlyKVStore) {
	if n, err := c.rotator.CurrentSize(db); err == nil {
		validatorsGauge.Set(float64(n))
	}
}

// RegisterQuery registers the governance buckets for queries.
func RegisterQuery(qr poa.QueryRouter) {
	NewGovernanceStore().RegisterQuery(qr)
}
