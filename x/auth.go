package x

import (
	"github.com/iov-one/poa"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system,
// rather than hard-coding x/sigs for all extensions.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled,
	// you may want GetAddresses helper
	GetConditions(poa.Context) []poa.Condition
	// HasAddress checks if any condition matches this address
	HasAddress(poa.Context, poa.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions combines all Conditions from all Authenticators.
// A condition reported by more than one Authenticator is returned once.
func (m MultiAuth) GetConditions(ctx poa.Context) []poa.Condition {
	var res []poa.Condition
	for _, impl := range m.impls {
		for _, c := range impl.GetConditions(ctx) {
			if !hasCondition(res, c) {
				res = append(res, c)
			}
		}
	}
	return res
}

// HasAddress returns true iff any Authenticator support this
func (m MultiAuth) HasAddress(ctx poa.Context, addr poa.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses wraps the GetConditions method of any Authenticator
func GetAddresses(ctx poa.Context, auth Authenticator) []poa.Address {
	conds := auth.GetConditions(ctx)
	addrs := make([]poa.Address, len(conds))
	for i, c := range conds {
		addrs[i] = c.Address()
	}
	return addrs
}

// MainSigner returns the first condition if any, otherwise nil
func MainSigner(ctx poa.Context, auth Authenticator) poa.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// HasAllAddresses returns true if all elements in required are
// also in context.
func HasAllAddresses(ctx poa.Context, auth Authenticator, required []poa.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}

// AnySigner returns the address of the first signer that belongs to the
// given set, or nil.
func AnySigner(ctx poa.Context, auth Authenticator, among []poa.Address) poa.Address {
	for _, a := range among {
		if auth.HasAddress(ctx, a) {
			return a
		}
	}
	return nil
}

func hasCondition(conds []poa.Condition, c poa.Condition) bool {
	for _, have := range conds {
		if have.Equals(c) {
			return true
		}
	}
	return false
}
