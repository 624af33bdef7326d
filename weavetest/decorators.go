package weavetest

import "github.com/iov-one/poa"

// calls counts the invocations of a test double.
type calls struct {
	check   int
	deliver int
}

func (c *calls) CheckCallCount() int   { return c.check }
func (c *calls) DeliverCallCount() int { return c.deliver }
func (c *calls) CallCount() int        { return c.check + c.deliver }

// Decorator passes the transaction on unless an error is configured.
type Decorator struct {
	calls

	CheckErr   error
	DeliverErr error
}

var _ poa.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx poa.Context, db poa.KVStore, tx poa.Tx, next poa.Checker) (*poa.CheckResult, error) {
	d.check++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx poa.Context, db poa.KVStore, tx poa.Tx, next poa.Deliverer) (*poa.DeliverResult, error) {
	d.deliver++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

// Decorate returns a handler that calls h through d.
func Decorate(h poa.Handler, d poa.Decorator) poa.Handler {
	return decorated{next: h, dec: d}
}

type decorated struct {
	next poa.Handler
	dec  poa.Decorator
}

func (d decorated) Check(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.CheckResult, error) {
	return d.dec.Check(ctx, db, tx, d.next)
}

func (d decorated) Deliver(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.DeliverResult, error) {
	return d.dec.Deliver(ctx, db, tx, d.next)
}
