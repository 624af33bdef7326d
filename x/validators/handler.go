package validators

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/gconf"
	"github.com/iov-one/poa/x"
)

// Gas allocated by the governance messages.
const (
	proposeCost int64 = 100
	resolveCost int64 = 50
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r poa.Registry, auth x.Authenticator, ctrl Controller) {
	r.Handle(&ProposeAddMsg{}, NewProposeHandler(auth, ctrl, AddKind))
	r.Handle(&ProposeRemoveMsg{}, NewProposeHandler(auth, ctrl, RemoveKind))
	r.Handle(&ResolveAddMsg{}, NewResolveHandler(ctrl, AddKind))
	r.Handle(&ResolveRemoveMsg{}, NewResolveHandler(ctrl, RemoveKind))
	r.Handle(&AdminAddMsg{}, NewAdminHandler(auth, ctrl, AddKind))
	r.Handle(&AdminRemoveMsg{}, NewAdminHandler(auth, ctrl, RemoveKind))
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(ConfPkg, &Configuration{}, auth))
}

type candidateMsg interface {
	poa.Msg
	AsCandidate() Candidate
}

// loadCandidate returns the candidate of a validated message of the
// expected path.
func loadCandidate(tx poa.Tx, path string) (Candidate, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return Candidate{}, errors.Wrap(err, "cannot get transaction message")
	}
	cm, ok := msg.(candidateMsg)
	if !ok || cm.Path() != path {
		return Candidate{}, errors.WithType(errors.ErrMsg, msg)
	}
	if err := cm.Validate(); err != nil {
		return Candidate{}, errors.Wrap(err, "invalid message")
	}
	return cm.AsCandidate(), nil
}

// ProposeHandler records a vote of the main signer.
type ProposeHandler struct {
	auth x.Authenticator
	ctrl Controller
	kind Kind
}

var _ poa.Handler = ProposeHandler{}

// NewProposeHandler returns a handler of ProposeAddMsg or
// ProposeRemoveMsg, depending on the kind.
func NewProposeHandler(auth x.Authenticator, ctrl Controller, kind Kind) ProposeHandler {
	return ProposeHandler{auth: auth, ctrl: ctrl, kind: kind}
}

func (h ProposeHandler) Check(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.CheckResult, error) {
	if _, err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	return &poa.CheckResult{GasAllocated: proposeCost}, nil
}

func (h ProposeHandler) Deliver(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.DeliverResult, error) {
	ev, err := h.apply(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	votesTotal.WithLabelValues(h.kind.String()).Inc()
	return ev.DeliverResult(), nil
}

func (h ProposeHandler) apply(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*Event, error) {
	path := PathProposeAdd
	if h.kind == RemoveKind {
		path = PathProposeRemove
	}
	cand, err := loadCandidate(tx, path)
	if err != nil {
		return nil, err
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	if h.kind == AddKind {
		return h.ctrl.ProposeAdd(ctx, db, signer.Address(), cand)
	}
	return h.ctrl.ProposeRemove(ctx, db, signer.Address(), cand)
}

// ResolveHandler applies an unanimous proposal. Anybody may resolve a
// proposal, the message does not need to be signed by a validator.
type ResolveHandler struct {
	ctrl Controller
	kind Kind
}

var _ poa.Handler = ResolveHandler{}

// NewResolveHandler returns a handler of ResolveAddMsg or
// ResolveRemoveMsg, depending on the kind.
func NewResolveHandler(ctrl Controller, kind Kind) ResolveHandler {
	return ResolveHandler{ctrl: ctrl, kind: kind}
}

func (h ResolveHandler) Check(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.CheckResult, error) {
	if _, err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	return &poa.CheckResult{GasAllocated: resolveCost}, nil
}

func (h ResolveHandler) Deliver(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.DeliverResult, error) {
	ev, err := h.apply(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	resolutionsTotal.WithLabelValues(h.kind.String(), pathVote).Inc()
	h.ctrl.observe(db)
	return ev.DeliverResult(), nil
}

func (h ResolveHandler) apply(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*Event, error) {
	path := PathResolveAdd
	if h.kind == RemoveKind {
		path = PathResolveRemove
	}
	cand, err := loadCandidate(tx, path)
	if err != nil {
		return nil, err
	}
	if h.kind == AddKind {
		return h.ctrl.ResolveAdd(ctx, db, cand)
	}
	return h.ctrl.ResolveRemove(ctx, db, cand)
}

// AdminHandler applies an administrative override. The message must be
// signed by the configured administrator.
type AdminHandler struct {
	auth x.Authenticator
	ctrl Controller
	kind Kind
}

var _ poa.Handler = AdminHandler{}

// NewAdminHandler returns a handler of AdminAddMsg or AdminRemoveMsg,
// depending on the kind.
func NewAdminHandler(auth x.Authenticator, ctrl Controller, kind Kind) AdminHandler {
	return AdminHandler{auth: auth, ctrl: ctrl, kind: kind}
}

func (h AdminHandler) Check(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.CheckResult, error) {
	if _, err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	return &poa.CheckResult{GasAllocated: resolveCost}, nil
}

func (h AdminHandler) Deliver(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*poa.DeliverResult, error) {
	ev, err := h.apply(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	resolutionsTotal.WithLabelValues(h.kind.String(), pathAdmin).Inc()
	h.ctrl.observe(db)
	return ev.DeliverResult(), nil
}

func (h AdminHandler) apply(ctx poa.Context, db poa.KVStore, tx poa.Tx) (*Event, error) {
	path := PathAdminAdd
	if h.kind == RemoveKind {
		path = PathAdminRemove
	}
	cand, err := loadCandidate(tx, path)
	if err != nil {
		return nil, err
	}

	conf, err := h.ctrl.Configuration(db)
	if err != nil {
		return nil, err
	}
	if len(conf.Admin) == 0 {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no administrator configured")
	}
	if !h.auth.HasAddress(ctx, conf.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "administrator did not sign")
	}

	if h.kind == AddKind {
		return h.ctrl.AdminAdd(ctx, db, cand)
	}
	return h.ctrl.AdminRemove(ctx, db, cand)
}
