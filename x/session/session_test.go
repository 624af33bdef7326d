package session

import (
	"context"
	"testing"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/gconf"
	"github.com/iov-one/poa/store"
	"github.com/iov-one/poa/weavetest"
	"github.com/iov-one/poa/x/validators"
	. "github.com/smartystreets/goconvey/convey"
)

type account struct {
	cond   poa.Condition
	pubKey []byte
}

func newAccount() account {
	return account{cond: weavetest.NewCondition(), pubKey: weavetest.NewPubKey()}
}

func (a account) addr() poa.Address { return a.cond.Address() }

func atHeight(h int64) poa.Context {
	return poa.WithHeight(context.Background(), h)
}

func power(diff []poa.ValidatorUpdate, pubKey []byte) (int64, bool) {
	for _, u := range diff {
		if string(u.PubKey.Data) == string(pubKey) {
			return u.Power, true
		}
	}
	return 0, false
}

func genesis(conf Configuration, vals ...account) poa.Options {
	gen := validators.Genesis{}
	for _, a := range vals {
		gen.Validators = append(gen.Validators, validators.Validator{Address: a.addr(), PubKey: a.pubKey})
	}
	opts := poa.Options{}
	So(mustJSON(map[string]interface{}{ConfPkg: conf}, opts, "conf"), ShouldBeNil)
	So(mustJSON(gen, opts, "poa"), ShouldBeNil)
	return opts
}

func TestSessionRotation(t *testing.T) {
	Convey("Given a chain with three validators", t, func() {
		db := store.MemStore()
		keeper := NewKeeper()
		ctrl := validators.NewController(keeper)
		ticker := NewTicker(keeper, ctrl)

		a, b, c := newAccount(), newAccount(), newAccount()
		opts := genesis(Configuration{SessionLength: 100, Power: 5}, a, b, c)
		So(validators.Initializer{Rotator: keeper}.FromGenesis(opts, db), ShouldBeNil)
		So(Initializer{Keeper: keeper}.FromGenesis(opts, db), ShouldBeNil)

		active, err := keeper.Active(db)
		So(err, ShouldBeNil)
		So(active, ShouldHaveLength, 3)

		Convey("Nothing happens within a session", func() {
			res, err := ticker.Tick(atHeight(2), db)
			So(err, ShouldBeNil)
			So(res.Diff, ShouldBeEmpty)
			So(res.Tags, ShouldBeEmpty)
		})

		Convey("An unchanged set produces no updates at the boundary", func() {
			res, err := ticker.Tick(atHeight(100), db)
			So(err, ShouldBeNil)
			So(res.Diff, ShouldBeEmpty)
			So(res.Tags, ShouldHaveLength, 1)
			state, err := keeper.State(db)
			So(err, ShouldBeNil)
			So(state.LastBoundary, ShouldEqual, 100)
		})

		Convey("An admitted validator joins at the next block", func() {
			d := newAccount()
			auth := &weavetest.Auth{Signer: d.cond}
			tx := &weavetest.Tx{Msg: &SetKeysMsg{PubKey: d.pubKey}}
			_, err := NewSetKeysHandler(auth, keeper).Deliver(atHeight(3), db, tx)
			So(err, ShouldBeNil)

			for _, v := range []account{a, b, c} {
				_, err := ctrl.ProposeAdd(atHeight(3), db, v.addr(), validators.Candidate{Address: d.addr()})
				So(err, ShouldBeNil)
			}
			ev, err := ctrl.ResolveAdd(atHeight(3), db, validators.Candidate{Address: d.addr()})
			So(err, ShouldBeNil)
			So(ev.PubKey, ShouldResemble, d.pubKey)

			size, err := keeper.CurrentSize(db)
			So(err, ShouldBeNil)
			So(size, ShouldEqual, 4)

			res, err := ticker.Tick(atHeight(4), db)
			So(err, ShouldBeNil)
			So(res.Diff, ShouldHaveLength, 1)
			p, ok := power(res.Diff, d.pubKey)
			So(ok, ShouldBeTrue)
			So(p, ShouldEqual, 5)

			Convey("and the key is locked", func() {
				_, err := NewSetKeysHandler(auth, keeper).Deliver(atHeight(5), db, &weavetest.Tx{Msg: &SetKeysMsg{PubKey: weavetest.NewPubKey()}})
				So(ErrKeysLocked.Is(err), ShouldBeTrue)
			})

			Convey("and nothing more happens at the next block", func() {
				res, err := ticker.Tick(atHeight(5), db)
				So(err, ShouldBeNil)
				So(res.Diff, ShouldBeEmpty)
			})
		})

		Convey("A removed validator gets zero power", func() {
			_, err := ctrl.AdminRemove(atHeight(3), db, validators.Candidate{Address: b.addr()})
			So(err, ShouldBeNil)

			res, err := ticker.Tick(atHeight(4), db)
			So(err, ShouldBeNil)
			So(res.Diff, ShouldHaveLength, 1)
			p, ok := power(res.Diff, b.pubKey)
			So(ok, ShouldBeTrue)
			So(p, ShouldEqual, 0)

			active, err := keeper.Active(db)
			So(err, ShouldBeNil)
			So(active, ShouldHaveLength, 2)
		})

		Convey("Admission fails without a bound key", func() {
			e := newAccount()
			_, err := ctrl.AdminAdd(atHeight(3), db, validators.Candidate{Address: e.addr()})
			So(validators.ErrKeyResolution.Is(err), ShouldBeTrue)
		})
	})
}

// noValidators is a ValidatorSource that lost every validator.
type noValidators struct{}

func (noValidators) CurrentValidators(poa.ReadOnlyKVStore) ([]validators.Validator, error) {
	return nil, nil
}

func TestEmptySetIsNotApplied(t *testing.T) {
	Convey("Given a validator source that became empty", t, func() {
		db := store.MemStore()
		keeper := NewKeeper()
		ticker := NewTicker(keeper, noValidators{})

		a := newAccount()
		opts := genesis(DefaultConfiguration(), a)
		So(validators.Initializer{Rotator: keeper}.FromGenesis(opts, db), ShouldBeNil)
		So(Initializer{Keeper: keeper}.FromGenesis(opts, db), ShouldBeNil)
		So(keeper.Rotate(db), ShouldBeNil)

		Convey("The boundary keeps the active set", func() {
			res, err := ticker.Tick(atHeight(3), db)
			So(err, ShouldBeNil)
			So(res.Diff, ShouldBeEmpty)

			active, err := keeper.Active(db)
			So(err, ShouldBeNil)
			So(active, ShouldHaveLength, 1)

			state, err := keeper.State(db)
			So(err, ShouldBeNil)
			So(state.RotationRequested, ShouldBeFalse)
		})
	})

	Convey("Given a single validator", t, func() {
		db := store.MemStore()
		keeper := NewKeeper()
		ctrl := validators.NewController(keeper)

		a := newAccount()
		opts := genesis(DefaultConfiguration(), a)
		So(validators.Initializer{Rotator: keeper}.FromGenesis(opts, db), ShouldBeNil)
		So(Initializer{Keeper: keeper}.FromGenesis(opts, db), ShouldBeNil)

		Convey("It cannot be removed", func() {
			_, err := ctrl.AdminRemove(atHeight(2), db, validators.Candidate{Address: a.addr()})
			So(errors.ErrState.Is(err), ShouldBeTrue)
		})
	})
}

func TestKeeper(t *testing.T) {
	Convey("Given an empty keeper", t, func() {
		db := store.MemStore()
		keeper := NewKeeper()
		a, b := newAccount(), newAccount()

		Convey("Keys resolve from bindings", func() {
			So(keeper.Bind(db, a.addr(), a.pubKey), ShouldBeNil)
			key, err := keeper.Register(db, a.addr(), nil)
			So(err, ShouldBeNil)
			So(key, ShouldResemble, a.pubKey)

			queued, err := keeper.QueuedKey(db, a.addr())
			So(err, ShouldBeNil)
			So(queued, ShouldResemble, a.pubKey)
		})

		Convey("An explicit key wins over the binding", func() {
			So(keeper.Bind(db, a.addr(), a.pubKey), ShouldBeNil)
			other := weavetest.NewPubKey()
			key, err := keeper.Register(db, a.addr(), other)
			So(err, ShouldBeNil)
			So(key, ShouldResemble, other)
		})

		Convey("A key cannot be queued twice", func() {
			_, err := keeper.Register(db, a.addr(), a.pubKey)
			So(err, ShouldBeNil)
			_, err = keeper.Register(db, b.addr(), a.pubKey)
			So(validators.ErrKeyResolution.Is(err), ShouldBeTrue)
		})

		Convey("A key cannot be bound twice", func() {
			So(keeper.Bind(db, a.addr(), a.pubKey), ShouldBeNil)
			err := keeper.Bind(db, b.addr(), a.pubKey)
			So(errors.ErrDuplicate.Is(err), ShouldBeTrue)
		})

		Convey("Revoking an unknown account fails", func() {
			err := keeper.Revoke(db, a.addr())
			So(validators.ErrKeyResolution.Is(err), ShouldBeTrue)
		})

		Convey("Rotation is flagged", func() {
			So(keeper.Rotate(db), ShouldBeNil)
			state, err := keeper.State(db)
			So(err, ShouldBeNil)
			So(state.RotationRequested, ShouldBeTrue)
		})
	})
}

func TestSetKeysHandler(t *testing.T) {
	Convey("Given a SetKeys handler", t, func() {
		db := store.MemStore()
		keeper := NewKeeper()
		a := newAccount()

		Convey("An unsigned message is rejected", func() {
			h := NewSetKeysHandler(&weavetest.Auth{}, keeper)
			_, err := h.Check(context.Background(), db, &weavetest.Tx{Msg: &SetKeysMsg{PubKey: a.pubKey}})
			So(errors.ErrUnauthorized.Is(err), ShouldBeTrue)
		})

		Convey("A malformed key is rejected", func() {
			h := NewSetKeysHandler(&weavetest.Auth{Signer: a.cond}, keeper)
			_, err := h.Check(context.Background(), db, &weavetest.Tx{Msg: &SetKeysMsg{PubKey: []byte{1}}})
			So(errors.ErrInput.Is(err), ShouldBeTrue)
		})

		Convey("A key can be replaced before admission", func() {
			h := NewSetKeysHandler(&weavetest.Auth{Signer: a.cond}, keeper)
			_, err := h.Deliver(context.Background(), db, &weavetest.Tx{Msg: &SetKeysMsg{PubKey: a.pubKey}})
			So(err, ShouldBeNil)
			other := weavetest.NewPubKey()
			_, err = h.Deliver(context.Background(), db, &weavetest.Tx{Msg: &SetKeysMsg{PubKey: other}})
			So(err, ShouldBeNil)

			key, err := keeper.BoundKey(db, a.addr())
			So(err, ShouldBeNil)
			So(key, ShouldResemble, other)
		})
	})
}

func TestConfiguration(t *testing.T) {
	Convey("Session configuration", t, func() {
		So((&Configuration{Power: 1}).Validate(), ShouldBeNil)
		So(errors.ErrInput.Is((&Configuration{}).Validate()), ShouldBeTrue)
		So(errors.ErrInput.Is((&Configuration{SessionLength: -1, Power: 1}).Validate()), ShouldBeTrue)

		db := store.MemStore()
		So(Initializer{Keeper: NewKeeper()}.FromGenesis(poa.Options{}, db), ShouldBeNil)
		var conf Configuration
		So(gconf.Load(db, ConfPkg, &conf), ShouldBeNil)
		So(conf, ShouldResemble, DefaultConfiguration())
	})
}
