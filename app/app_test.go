package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/store/iavl"
	"github.com/iov-one/poa/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
)

// pathDecoder turns raw bytes into a transaction with a message of that
// path.
func pathDecoder(raw []byte) (poa.Tx, error) {
	if len(raw) == 0 {
		return nil, errors.Wrap(errors.ErrInput, "empty tx")
	}
	return &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: string(raw)}}, nil
}

type keyQuery struct{}

func (keyQuery) Query(db poa.ReadOnlyKVStore, mod string, data []byte) ([]poa.Model, error) {
	v, err := db.Get(data)
	if err != nil || v == nil {
		return nil, err
	}
	return []poa.Model{poa.Pair(data, v)}, nil
}

type recordInit struct {
	opts poa.Options
}

func (r *recordInit) FromGenesis(opts poa.Options, db poa.KVStore) error {
	r.opts = opts
	return db.Set([]byte("genesis"), []byte("done"))
}

func newTestApp(t *testing.T, ticker poa.Ticker) (BaseApp, *recordInit) {
	t.Helper()

	router := NewRouter()
	router.Handle(&weavetest.Msg{RoutePath: "test/write"}, weavetest.WriteHandler{Key: []byte("k"), Value: []byte("v")})
	router.Handle(&weavetest.Msg{RoutePath: "test/fail"}, &weavetest.Handler{
		CheckErr:   errors.ErrUnauthorized,
		DeliverErr: errors.ErrUnauthorized,
	})
	router.Handle(&weavetest.Msg{RoutePath: "test/diff"}, &weavetest.Handler{
		DeliverResult: poa.DeliverResult{Diff: []poa.ValidatorUpdate{
			{PubKey: poa.PubKey{Type: poa.PubKeyTypeEd25519, Data: []byte("one")}, Power: 3},
		}},
	})

	qr := poa.NewQueryRouter()
	qr.Register("/test", keyQuery{})

	init := &recordInit{}
	sapp := NewStoreApp("testapp", iavl.NewMemCommitStore(), qr, context.Background()).WithInit(init)
	return NewBaseApp(sapp, pathDecoder, router, ticker, false), init
}

func TestBaseAppLifecycle(t *testing.T) {
	ticker := &weavetest.Ticker{Result: poa.TickResult{
		Diff: []poa.ValidatorUpdate{
			{PubKey: poa.PubKey{Type: poa.PubKeyTypeEd25519, Data: []byte("one")}, Power: 0},
			{PubKey: poa.PubKey{Type: poa.PubKeyTypeEd25519, Data: []byte("two")}, Power: 10},
		},
	}}
	app, init := newTestApp(t, ticker)

	appState, err := json.Marshal(map[string]interface{}{"poa": map[string]int{"x": 1}})
	require.NoError(t, err)
	app.InitChain(abci.RequestInitChain{ChainId: "test-chain", AppStateBytes: appState})
	assert.Equal(t, "test-chain", app.GetChainID())
	assert.Contains(t, init.opts, "poa")

	// the chain id is set once only
	assert.Panics(t, func() {
		app.InitChain(abci.RequestInitChain{ChainId: "other-chain", AppStateBytes: appState})
	})

	app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1, ChainID: "test-chain"}})
	assert.Equal(t, 1, ticker.CallCount())
	h, ok := poa.GetHeight(app.BlockContext())
	assert.True(t, ok)
	assert.Equal(t, int64(1), h)

	chk := app.CheckTx([]byte("test/write"))
	assert.Equal(t, uint32(0), chk.Code, chk.Log)

	chk = app.CheckTx([]byte("test/fail"))
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), chk.Code)

	chk = app.CheckTx([]byte("test/unknown"))
	assert.Equal(t, errors.ErrNotFound.ABCICode(), chk.Code)

	chk = app.CheckTx(nil)
	assert.Equal(t, errors.ErrInput.ABCICode(), chk.Code)

	dres := app.DeliverTx([]byte("test/write"))
	assert.Equal(t, uint32(0), dres.Code, dres.Log)
	dres = app.DeliverTx([]byte("test/diff"))
	assert.Equal(t, uint32(0), dres.Code, dres.Log)

	// the last update for a key wins
	end := app.EndBlock(abci.RequestEndBlock{Height: 1})
	require.Len(t, end.ValidatorUpdates, 2)
	assert.Equal(t, []byte("one"), end.ValidatorUpdates[0].PubKey.Data)
	assert.Equal(t, int64(3), end.ValidatorUpdates[0].Power)
	assert.Equal(t, []byte("two"), end.ValidatorUpdates[1].PubKey.Data)

	// uncommitted data is not visible to queries
	q := app.Query(abci.RequestQuery{Path: "/test", Data: []byte("k")})
	require.Equal(t, uint32(0), q.Code, q.Log)
	var values ResultSet
	require.NoError(t, values.Unmarshal(q.Value))
	assert.Empty(t, values.Results)

	cres := app.Commit()
	assert.NotEmpty(t, cres.Data)

	q = app.Query(abci.RequestQuery{Path: "/test", Data: []byte("k")})
	require.Equal(t, uint32(0), q.Code, q.Log)
	assert.Equal(t, int64(1), q.Height)
	require.NoError(t, values.Unmarshal(q.Value))
	assert.Equal(t, [][]byte{[]byte("v")}, values.Results)

	q = app.Query(abci.RequestQuery{Path: "/test", Data: []byte("genesis")})
	require.NoError(t, values.Unmarshal(q.Value))
	assert.Equal(t, [][]byte{[]byte("done")}, values.Results)

	q = app.Query(abci.RequestQuery{Path: "/nothing"})
	assert.Equal(t, errors.ErrNotFound.ABCICode(), q.Code)

	info := app.Info(abci.RequestInfo{})
	assert.Equal(t, "testapp", info.Data)
	assert.Equal(t, int64(1), info.LastBlockHeight)
	assert.Equal(t, cres.Data, info.LastBlockAppHash)

	// pending changes were flushed
	end = app.EndBlock(abci.RequestEndBlock{Height: 2})
	assert.Empty(t, end.ValidatorUpdates)
}

func TestInitChainRequiresAppState(t *testing.T) {
	app, _ := newTestApp(t, nil)
	assert.Panics(t, func() {
		app.InitChain(abci.RequestInitChain{ChainId: "test-chain"})
	})
}

func TestBeginBlockWithoutTicker(t *testing.T) {
	app, _ := newTestApp(t, nil)
	res := app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 3}})
	assert.Empty(t, res.Tags)
}

func TestTickerFailureHalts(t *testing.T) {
	app, _ := newTestApp(t, &weavetest.Ticker{Err: errors.ErrState})
	assert.Panics(t, func() {
		app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1}})
	})
}
