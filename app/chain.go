package app

import (
	"reflect"

	"github.com/iov-one/poa"
)

// Decorators is an ordered stack of decorators waiting for the handler they
// wrap. The first decorator runs first.
//
//	app.ChainDecorators(
//		utils.NewLogging(),
//		utils.NewRecovery(),
//		sigs.NewDecorator(),
//	).WithHandler(router)
type Decorators struct {
	chain []poa.Decorator
}

// ChainDecorators starts a stack. Nil decorators are skipped, so optional
// ones can be passed unconditionally.
func ChainDecorators(chain ...poa.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain returns a new stack with the decorators appended. The receiver is
// not modified, so two stacks can share the same base.
func (d Decorators) Chain(chain ...poa.Decorator) Decorators {
	next := make([]poa.Decorator, len(d.chain), len(d.chain)+len(chain))
	copy(next, d.chain)
	for _, dec := range chain {
		if !isNil(dec) {
			next = append(next, dec)
		}
	}
	return Decorators{chain: next}
}

func isNil(d poa.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler closes the stack with h and returns the resulting handler.
func (d Decorators) WithHandler(h poa.Handler) poa.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{dec: d.chain[i], next: h}
	}
	return h
}

// step runs one decorator around the rest of the stack.
type step struct {
	dec  poa.Decorator
	next poa.Handler
}

func (s step) Check(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.CheckResult, error) {
	return s.dec.Check(ctx, db, tx, s.next)
}

func (s step) Deliver(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.DeliverResult, error) {
	return s.dec.Deliver(ctx, db, tx, s.next)
}
