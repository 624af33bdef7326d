package validators

import (
	"context"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/gconf"
	"github.com/iov-one/poa/store"
	"github.com/iov-one/poa/weavetest"
	"github.com/iov-one/poa/weavetest/assert"
)

// memRotator is a KeyRotator keeping its state in memory.
type memRotator struct {
	bound     map[string][]byte
	queued    map[string][]byte
	rotations int
}

var _ KeyRotator = (*memRotator)(nil)

func newRotator() *memRotator {
	return &memRotator{
		bound:  make(map[string][]byte),
		queued: make(map[string][]byte),
	}
}

func (r *memRotator) Register(db poa.KVStore, account poa.Address, pubKey []byte) ([]byte, error) {
	if len(pubKey) == 0 {
		pubKey = r.bound[account.String()]
	}
	if len(pubKey) == 0 {
		return nil, errors.Wrap(ErrKeyResolution, "no key bound")
	}
	r.queued[account.String()] = pubKey
	return pubKey, nil
}

func (r *memRotator) Revoke(db poa.KVStore, account poa.Address) error {
	if _, ok := r.queued[account.String()]; !ok {
		return errors.Wrap(ErrKeyResolution, "not queued")
	}
	delete(r.queued, account.String())
	return nil
}

func (r *memRotator) Rotate(poa.KVStore) error {
	r.rotations++
	return nil
}

func (r *memRotator) CurrentSize(poa.ReadOnlyKVStore) (int, error) {
	return len(r.queued), nil
}

// govFixture is a store with a governance configuration and a validator set.
type govFixture struct {
	db      poa.CacheableKVStore
	rotator *memRotator
	ctrl    Controller
	members []poa.Address
	signers []poa.Condition
}

func newFixture(t assert.Tester, conf Configuration, members int) *govFixture {
	t.Helper()

	f := &govFixture{
		db:      store.MemStore(),
		rotator: newRotator(),
	}
	f.ctrl = NewController(f.rotator)
	if err := gconf.Save(f.db, ConfPkg, &conf); err != nil {
		t.Fatalf("cannot save configuration: %s", err)
	}
	for i := 0; i < members; i++ {
		cond := weavetest.NewCondition()
		addr := cond.Address()
		v := Validator{Address: addr, PubKey: weavetest.NewPubKey()}
		if err := f.ctrl.Seed(f.db, &conf, v); err != nil {
			t.Fatalf("cannot seed validator: %s", err)
		}
		f.members = append(f.members, addr)
		f.signers = append(f.signers, cond)
	}
	return f
}

// newAccount returns a fresh account with an operating key bound.
func (f *govFixture) newAccount() poa.Address {
	addr := weavetest.NewCondition().Address()
	f.rotator.bound[addr.String()] = weavetest.NewPubKey()
	return addr
}

func (f *govFixture) isValidator(t assert.Tester, addr poa.Address) bool {
	t.Helper()
	ok, err := f.ctrl.store.IsValidator(f.db, addr)
	assert.Nil(t, err)
	return ok
}

func atHeight(h int64) poa.Context {
	return poa.WithHeight(context.Background(), h)
}
