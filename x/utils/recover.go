package utils

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
)

// Recovery turns a panic raised below it into an ErrPanic result, so that a
// broken handler fails the transaction instead of halting the node.
type Recovery struct{}

var _ poa.Decorator = Recovery{}

// NewRecovery returns a Recovery decorator.
func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx poa.Context, db poa.KVStore, tx poa.Tx, next poa.Checker) (res *poa.CheckResult, err error) {
	defer recovered(ctx, "check", &err)
	return next.Check(ctx, db, tx)
}

func (Recovery) Deliver(ctx poa.Context, db poa.KVStore, tx poa.Tx, next poa.Deliverer) (res *poa.DeliverResult, err error) {
	defer recovered(ctx, "deliver", &err)
	return next.Deliver(ctx, db, tx)
}

// recovered must be deferred directly, recover has no effect otherwise.
func recovered(ctx poa.Context, call string, err *error) {
	if r := recover(); r != nil {
		*err = errors.Wrapf(errors.ErrPanic, "%v", r)
		poa.GetLogger(ctx).Error("recovered from panic", "call", call, "err", *err)
	}
}
