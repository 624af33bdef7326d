package app

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
)

// CommitStore handles loading from a CommitKVStore, maintaining different
// CacheWraps for Deliver and Check, and returning useful state info.
type CommitStore struct {
	committed poa.CommitKVStore
	deliver   poa.KVCacheWrap
	check     poa.KVCacheWrap
}

// NewCommitStore loads the CommitKVStore from disk or panics. It sets up the
// deliver and check caches.
func NewCommitStore(store poa.CommitKVStore) *CommitStore {
	if err := store.LoadLatestVersion(); err != nil {
		panic(err)
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}
}

// CommitInfo returns the current height and hash.
func (cs *CommitStore) CommitInfo() (int64, []byte) {
	id, err := cs.committed.LatestVersion()
	if err != nil {
		panic(err)
	}
	return id.Version, id.Hash
}

// Commit will flush deliver to the underlying store and commit it to disk.
// It then regenerates new deliver and check caches.
func (cs *CommitStore) Commit() (poa.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return poa.CommitID{}, errors.Wrap(err, "write deliver cache")
	}
	cs.check.Discard()

	id, err := cs.committed.Commit()
	if err != nil {
		return id, errors.Wrap(err, "commit")
	}
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return id, nil
}

// CheckStore returns the store that must be used during the checking phase.
func (cs *CommitStore) CheckStore() poa.CacheableKVStore {
	return cs.check
}

// DeliverStore returns the store that must be used during the delivery
// phase.
func (cs *CommitStore) DeliverStore() poa.CacheableKVStore {
	return cs.deliver
}

// _poa: is a prefix for internal data
const chainIDKey = "_poa:chainID"

// mustLoadChainID returns the chain id stored if any.
// panics on db error
func mustLoadChainID(kv poa.ReadOnlyKVStore) string {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		panic(err)
	}
	return string(v)
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv poa.KVStore, chainID string) error {
	if !poa.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}
