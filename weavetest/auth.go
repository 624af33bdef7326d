package weavetest

import (
	"context"

	"github.com/iov-one/poa"
)

// Auth authenticates a fixed list of conditions. Signer and Signers are
// both returned, Signer last, so it becomes the main signer.
type Auth struct {
	Signer  poa.Condition
	Signers []poa.Condition
}

func (a *Auth) GetConditions(poa.Context) []poa.Condition {
	conds := append([]poa.Condition(nil), a.Signers...)
	if a.Signer != nil {
		conds = append(conds, a.Signer)
	}
	return conds
}

func (a *Auth) HasAddress(ctx poa.Context, addr poa.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

// CtxAuth authenticates the conditions stored in the context with
// SetConditions. It lets a single handler serve callers that differ per
// test case.
type CtxAuth struct {
	Key string
}

type ctxAuthKey string

func (a *CtxAuth) SetConditions(ctx poa.Context, conds ...poa.Condition) poa.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), conds)
}

func (a *CtxAuth) GetConditions(ctx poa.Context) []poa.Condition {
	conds, _ := ctx.Value(ctxAuthKey(a.Key)).([]poa.Condition)
	return conds
}

func (a *CtxAuth) HasAddress(ctx poa.Context, addr poa.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

func hasAddress(conds []poa.Condition, addr poa.Address) bool {
	for _, c := range conds {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
