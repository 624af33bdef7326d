package session

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/x"
)

const setKeysCost int64 = 50

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r poa.Registry, auth x.Authenticator, keeper Keeper) {
	r.Handle(&SetKeysMsg{}, NewSetKeysHandler(auth, keeper))
}

// SetKeysHandler binds the key given in the message to the main signer.
type SetKeysHandler struct {
	auth   x.Authenticator
	keeper Keeper
}

var _ poa.Handler = SetKeysHandler{}

// NewSetKeysHandler returns a handler of SetKeysMsg.
func NewSetKeysHandler(auth x.Authenticator, keeper Keeper) SetKeysHandler {
	return SetKeysHandler{auth: auth, keeper: keeper}
}

func (h SetKeysHandler) Check(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.CheckResult, error) {
	if _, err := h.bind(ctx, db, tx); err != nil {
		return nil, err
	}
	return &poa.CheckResult{GasAllocated: setKeysCost}, nil
}

func (h SetKeysHandler) Deliver(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.DeliverResult, error) {
	account, err := h.bind(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return &poa.DeliverResult{Log: "keys set for " + account.String()}, nil
}

func (h SetKeysHandler) bind(ctx poa.Context, db poa.KVStore, tx poa.Tx) (poa.Address, error) {
	var msg SetKeysMsg
	if err := poa.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	account := signer.Address()
	if err := h.keeper.Bind(db, account, msg.PubKey); err != nil {
		return nil, err
	}
	return account, nil
}
