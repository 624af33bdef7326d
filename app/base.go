package app

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp adds DeliverTx, CheckTx, and BeginBlock handlers to the storage
// and query functionality of StoreApp.
type BaseApp struct {
	*StoreApp
	decoder poa.TxDecoder
	handler poa.Handler
	ticker  poa.Ticker
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs a basic abci application. The ticker may be nil.
func NewBaseApp(store *StoreApp, decoder poa.TxDecoder, handler poa.Handler, ticker poa.Ticker, debug bool) BaseApp {
	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		ticker:   ticker,
		debug:    debug,
	}
}

// DeliverTx - ABCI - dispatches to the handler
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return poa.DeliverTxError(err, b.debug)
	}

	ctx := poa.WithLogInfo(b.BlockContext(), "call", "deliver_tx")
	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	if err == nil {
		b.AddValChange(res.Diff)
	}
	return poa.DeliverOrError(res, err, b.debug)
}

// CheckTx - ABCI - dispatches to the handler
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return poa.CheckTxError(err, b.debug)
	}

	ctx := poa.WithLogInfo(b.BlockContext(), "call", "check_tx")
	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return poa.CheckOrError(res, err, b.debug)
}

// BeginBlock - ABCI - runs the ticker. Its validator changes are returned
// at EndBlock.
func (b BaseApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	res := b.StoreApp.BeginBlock(req)
	if b.ticker == nil {
		return res
	}

	ctx := poa.WithLogInfo(b.BlockContext(), "call", "begin_block")
	tr, err := b.ticker.Tick(ctx, b.DeliverStore())
	if err != nil {
		b.Logger().Error("ticker failed", "height", req.Header.GetHeight(), "err", err)
		panic(err)
	}
	res.Tags = append(res.Tags, tr.Tags...)
	b.AddValChange(tr.Diff)
	return res
}

// loadTx calls the decoder, and capture any panics
func (b BaseApp) loadTx(txBytes []byte) (tx poa.Tx, err error) {
	defer errors.Recover(&err)
	tx, err = b.decoder(txBytes)
	return
}
