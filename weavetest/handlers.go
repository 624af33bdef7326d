package weavetest

import "github.com/iov-one/poa"

// Handler is a poa.Handler that returns the configured results and counts
// calls.
type Handler struct {
	calls

	CheckResult poa.CheckResult
	CheckErr    error

	DeliverResult poa.DeliverResult
	DeliverErr    error
}

var _ poa.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.CheckResult, error) {
	h.check++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.DeliverResult, error) {
	h.deliver++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

// WriteHandler writes a key-value pair to the store on every call before
// returning the configured error.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ poa.Handler = WriteHandler{}

func (h WriteHandler) Check(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.CheckResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &poa.CheckResult{}, nil
}

func (h WriteHandler) Deliver(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.DeliverResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &poa.DeliverResult{}, nil
}

// PanicHandler panics on every call.
type PanicHandler struct {
	Msg string
}

var _ poa.Handler = PanicHandler{}

func (p PanicHandler) Check(poa.Context, poa.KVStore, poa.Tx) (*poa.CheckResult, error) {
	panic(p.Msg)
}

func (p PanicHandler) Deliver(poa.Context, poa.KVStore, poa.Tx) (*poa.DeliverResult, error) {
	panic(p.Msg)
}

// Ticker returns the configured result on every tick.
type Ticker struct {
	calls  int
	Result poa.TickResult
	Err    error
}

var _ poa.Ticker = (*Ticker)(nil)

func (t *Ticker) Tick(poa.Context, poa.KVStore) (poa.TickResult, error) {
	t.calls++
	return t.Result, t.Err
}

func (t *Ticker) CallCount() int {
	return t.calls
}
