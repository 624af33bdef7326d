package session

import (
	"bytes"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/orm"
	"github.com/iov-one/poa/x/validators"
)

var stateKey = []byte("state")

// Keeper owns the operating keys. It implements validators.KeyRotator.
type Keeper struct {
	bindings orm.Bucket
	queued   orm.Bucket
	active   orm.Bucket
	state    orm.Bucket
}

var _ validators.KeyRotator = Keeper{}

// NewKeeper returns a keeper over the session buckets.
func NewKeeper() Keeper {
	key := orm.NewSimpleObj(nil, &SessionKey{})
	return Keeper{
		bindings: orm.NewBucket("sess_keys", key),
		queued:   orm.NewBucket("sess_queue", key),
		active:   orm.NewBucket("sess_act", key),
		state:    orm.NewBucket("sess_state", orm.NewSimpleObj(nil, &State{})),
	}
}

// BoundKey returns the key bound to the account, or nil.
func (k Keeper) BoundKey(db poa.ReadOnlyKVStore, account poa.Address) ([]byte, error) {
	return k.key(db, k.bindings, account)
}

// QueuedKey returns the key queued for the account, or nil.
func (k Keeper) QueuedKey(db poa.ReadOnlyKVStore, account poa.Address) ([]byte, error) {
	return k.key(db, k.queued, account)
}

func (k Keeper) key(db poa.ReadOnlyKVStore, b orm.Bucket, account poa.Address) ([]byte, error) {
	obj, err := b.Get(db, account)
	if err != nil || obj == nil {
		return nil, err
	}
	return obj.Value().(*SessionKey).PubKey, nil
}

// Bind sets the operating key of the account. A key can be bound to a
// single account only, and the key of a queued validator cannot change.
func (k Keeper) Bind(db poa.KVStore, account poa.Address, pubKey []byte) error {
	switch ok, err := k.queued.Has(db, account); {
	case err != nil:
		return err
	case ok:
		return errors.Wrapf(ErrKeysLocked, "%s is a validator", account)
	}
	if owner, err := k.owner(db, k.bindings, pubKey); err != nil {
		return err
	} else if owner != nil && !owner.Equals(account) {
		return errors.Wrapf(errors.ErrDuplicate, "key bound to %s", owner)
	}
	return k.bindings.Save(db, orm.NewSimpleObj(account, &SessionKey{PubKey: pubKey}))
}

// owner returns the account the key is stored for in the bucket, or nil.
func (k Keeper) owner(db poa.ReadOnlyKVStore, b orm.Bucket, pubKey []byte) (poa.Address, error) {
	objs, err := b.PrefixScan(db, nil)
	if err != nil {
		return nil, err
	}
	for _, o := range objs {
		if bytes.Equal(o.Value().(*SessionKey).PubKey, pubKey) {
			return o.Key(), nil
		}
	}
	return nil, nil
}

// Register queues the account for the next session. An empty key is
// resolved from the binding of the account.
func (k Keeper) Register(db poa.KVStore, account poa.Address, pubKey []byte) ([]byte, error) {
	if len(pubKey) == 0 {
		bound, err := k.BoundKey(db, account)
		if err != nil {
			return nil, err
		}
		if bound == nil {
			return nil, errors.Wrapf(validators.ErrKeyResolution, "%s has no key bound", account)
		}
		pubKey = bound
	}
	if owner, err := k.owner(db, k.queued, pubKey); err != nil {
		return nil, err
	} else if owner != nil && !owner.Equals(account) {
		return nil, errors.Wrapf(validators.ErrKeyResolution, "key already queued for %s", owner)
	}
	if err := k.queued.Save(db, orm.NewSimpleObj(account, &SessionKey{PubKey: pubKey})); err != nil {
		return nil, errors.Wrap(err, "queue key")
	}
	return pubKey, nil
}

// Revoke drops the account from the next session.
func (k Keeper) Revoke(db poa.KVStore, account poa.Address) error {
	switch ok, err := k.queued.Has(db, account); {
	case err != nil:
		return err
	case !ok:
		return errors.Wrapf(validators.ErrKeyResolution, "%s is not queued", account)
	}
	return k.queued.Delete(db, account)
}

// Rotate requests a session boundary at the next block.
func (k Keeper) Rotate(db poa.KVStore) error {
	s, err := k.State(db)
	if err != nil {
		return err
	}
	s.RotationRequested = true
	return k.saveState(db, s)
}

// CurrentSize returns the number of queued accounts.
func (k Keeper) CurrentSize(db poa.ReadOnlyKVStore) (int, error) {
	objs, err := k.queued.PrefixScan(db, nil)
	if err != nil {
		return 0, err
	}
	return len(objs), nil
}

// State returns the schedule state. A missing state is returned as the
// initial one.
func (k Keeper) State(db poa.ReadOnlyKVStore) (*State, error) {
	obj, err := k.state.Get(db, stateKey)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return &State{}, nil
	}
	return obj.Value().(*State), nil
}

func (k Keeper) saveState(db poa.KVStore, s *State) error {
	return k.state.Save(db, orm.NewSimpleObj(stateKey, s))
}

// Active returns the keys of the active set ordered by account.
func (k Keeper) Active(db poa.ReadOnlyKVStore) ([]Entry, error) {
	return k.entries(db, k.active)
}

// Queued returns the keys of the queued set ordered by account.
func (k Keeper) Queued(db poa.ReadOnlyKVStore) ([]Entry, error) {
	return k.entries(db, k.queued)
}

// Entry pairs an account with its operating key.
type Entry struct {
	Account poa.Address
	PubKey  []byte
}

func (k Keeper) entries(db poa.ReadOnlyKVStore, b orm.Bucket) ([]Entry, error) {
	objs, err := b.PrefixScan(db, nil)
	if err != nil {
		return nil, err
	}
	res := make([]Entry, len(objs))
	for i, o := range objs {
		res[i] = Entry{Account: o.Key(), PubKey: o.Value().(*SessionKey).PubKey}
	}
	return res, nil
}

// activate replaces the active set.
func (k Keeper) activate(db poa.KVStore, set []Entry) error {
	old, err := k.active.PrefixScan(db, nil)
	if err != nil {
		return err
	}
	for _, o := range old {
		if err := k.active.Delete(db, o.Key()); err != nil {
			return err
		}
	}
	for _, e := range set {
		if err := k.active.Save(db, orm.NewSimpleObj(e.Account, &SessionKey{PubKey: e.PubKey})); err != nil {
			return errors.Wrapf(err, "activate %s", e.Account)
		}
	}
	return nil
}

// RegisterQuery registers the key buckets for queries.
func (k Keeper) RegisterQuery(qr poa.QueryRouter) {
	k.bindings.Register("session/keys", qr)
	k.queued.Register("session/queued", qr)
	k.active.Register("session/active", qr)
}

// RegisterQuery registers the session buckets for queries.
func RegisterQuery(qr poa.QueryRouter) {
	NewKeeper().RegisterQuery(qr)
}
