package app

import (
	"context"
	"testing"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/store"
	"github.com/iov-one/poa/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain(t *testing.T) {
	var nilDecorator *weavetest.Decorator
	d1, d2 := &weavetest.Decorator{}, &weavetest.Decorator{}
	h := &weavetest.Handler{}

	stack := ChainDecorators(d1, nilDecorator, nil).Chain(d2).WithHandler(h)
	ctx := context.Background()
	db := store.MemStore()
	tx := &weavetest.Tx{}

	_, err := stack.Check(ctx, db, tx)
	require.NoError(t, err)
	_, err = stack.Deliver(ctx, db, tx)
	require.NoError(t, err)

	for _, d := range []*weavetest.Decorator{d1, d2} {
		assert.Equal(t, 1, d.CheckCallCount())
		assert.Equal(t, 1, d.DeliverCallCount())
	}
	assert.Equal(t, 2, h.CallCount())
}

func TestChainStopsAtError(t *testing.T) {
	first := &weavetest.Decorator{DeliverErr: errors.ErrUnauthorized}
	second := &weavetest.Decorator{}
	h := &weavetest.Handler{}

	stack := ChainDecorators(first, second).WithHandler(h)
	_, err := stack.Deliver(context.Background(), store.MemStore(), &weavetest.Tx{})
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, 0, second.DeliverCallCount())
	assert.Equal(t, 0, h.DeliverCallCount())
}

func TestChainsDoNotShareTail(t *testing.T) {
	base := ChainDecorators(&weavetest.Decorator{}, &weavetest.Decorator{})
	da, db := &weavetest.Decorator{}, &weavetest.Decorator{}
	a := base.Chain(da).WithHandler(&weavetest.Handler{})
	b := base.Chain(db).WithHandler(&weavetest.Handler{})

	_, err := a.Check(context.Background(), store.MemStore(), &weavetest.Tx{})
	require.NoError(t, err)
	_, err = b.Check(context.Background(), store.MemStore(), &weavetest.Tx{})
	require.NoError(t, err)
	assert.Equal(t, 1, da.CheckCallCount())
	assert.Equal(t, 1, db.CheckCallCount())
}

func TestRouter(t *testing.T) {
	r := NewRouter()
	h := &weavetest.Handler{}
	r.Handle(&weavetest.Msg{RoutePath: "poa/propose_add"}, h)

	assert.Panics(t, func() {
		r.Handle(&weavetest.Msg{RoutePath: "poa/propose_add"}, h)
	})
	assert.Panics(t, func() {
		r.Handle(&weavetest.Msg{RoutePath: "poa propose"}, h)
	})

	cases := map[string]struct {
		tx      poa.Tx
		wantErr *errors.Error
	}{
		"registered path": {
			tx: &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "poa/propose_add"}},
		},
		"unknown path": {
			tx:      &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "poa/other"}},
			wantErr: errors.ErrNotFound,
		},
		"no message": {
			tx:      &weavetest.Tx{},
			wantErr: errors.ErrMsg,
		},
		"broken message": {
			tx:      &weavetest.Tx{Err: errors.ErrInput},
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := r.Check(context.Background(), store.MemStore(), tc.tx)
			assert.True(t, tc.wantErr.Is(err), "got %v", err)
			_, err = r.Deliver(context.Background(), store.MemStore(), tc.tx)
			assert.True(t, tc.wantErr.Is(err), "got %v", err)
		})
	}
}
