package validators

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/codec"
	"github.com/iov-one/poa/errors"
)

// Message paths, used by the router and as the action tag.
const (
	PathProposeAdd          = "poa/propose_add"
	PathResolveAdd          = "poa/resolve_add"
	PathAdminAdd            = "poa/admin_add"
	PathProposeRemove       = "poa/propose_remove"
	PathResolveRemove       = "poa/resolve_remove"
	PathAdminRemove         = "poa/admin_remove"
	PathUpdateConfiguration = "poa/update_configuration"
)

// CandidateMsg is the payload shared by all governance messages. PubKey is
// required by the keyed scheme and forbidden by the account scheme.
type CandidateMsg struct {
	Candidate poa.Address `json:"candidate"`
	PubKey    []byte      `json:"pubkey,omitempty"`
}

func (m *CandidateMsg) Marshal() ([]byte, error) {
	w := codec.NewWriter()
	w.Bytes(1, m.Candidate)
	w.Bytes(2, m.PubKey)
	return w.Data()
}

func (m *CandidateMsg) Unmarshal(raw []byte) error {
	*m = CandidateMsg{}
	r := codec.NewReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			m.Candidate = r.Bytes()
		case 2:
			m.PubKey = r.Bytes()
		default:
			r.Skip()
		}
	}
	return r.Err()
}

func (m *CandidateMsg) Validate() error {
	errs := errors.AppendField(nil, "Candidate", m.Candidate.Validate())
	if len(m.PubKey) != 0 {
		errs = errors.AppendField(errs, "PubKey", validatePubKey(m.PubKey))
	}
	return errs
}

// AsCandidate returns the candidate the message is about.
func (m *CandidateMsg) AsCandidate() Candidate {
	return Candidate{Address: m.Candidate, PubKey: m.PubKey}
}

// ProposeAddMsg votes for admitting the candidate.
type ProposeAddMsg struct{ CandidateMsg }

func (ProposeAddMsg) Path() string { return PathProposeAdd }

// ResolveAddMsg admits the candidate if the vote is unanimous.
type ResolveAddMsg struct{ CandidateMsg }

func (ResolveAddMsg) Path() string { return PathResolveAdd }

// AdminAddMsg admits the candidate without a vote.
type AdminAddMsg struct{ CandidateMsg }

func (AdminAddMsg) Path() string { return PathAdminAdd }

// ProposeRemoveMsg votes for removing the candidate.
type ProposeRemoveMsg struct{ CandidateMsg }

func (ProposeRemoveMsg) Path() string { return PathProposeRemove }

// ResolveRemoveMsg removes the candidate if the vote is unanimous.
type ResolveRemoveMsg struct{ CandidateMsg }

func (ResolveRemoveMsg) Path() string { return PathResolveRemove }

// AdminRemoveMsg removes the candidate without a vote.
type AdminRemoveMsg struct{ CandidateMsg }

func (AdminRemoveMsg) Path() string { return PathAdminRemove }

var (
	_ poa.Msg = (*ProposeAddMsg)(nil)
	_ poa.Msg = (*ResolveAddMsg)(nil)
	_ poa.Msg = (*AdminAddMsg)(nil)
	_ poa.Msg = (*ProposeRemoveMsg)(nil)
	_ poa.Msg = (*ResolveRemoveMsg)(nil)
	_ poa.Msg = (*AdminRemoveMsg)(nil)
	_ poa.Msg = (*UpdateConfigurationMsg)(nil)
)

// UpdateConfigurationMsg patches the governance configuration. It must be
// signed by the current administrator.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

func (UpdateConfigurationMsg) Path() string { return PathUpdateConfiguration }

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	w := codec.NewWriter()
	if m.Patch != nil {
		w.Message(1, m.Patch)
	}
	return w.Data()
}

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	*m = UpdateConfigurationMsg{}
	r := codec.NewReader(raw)
	for r.Next() {
		switch r.Field() {
		case 1:
			m.Patch = &Configuration{}
			r.Message(m.Patch)
		default:
			r.Skip()
		}
	}
	return r.Err()
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Field("Patch", errors.ErrEmpty, "missing patch")
	}
	if m.Patch.KeyScheme != "" {
		return errors.Field("Patch.KeyScheme", errors.ErrInput, "key scheme is fixed at genesis")
	}
	p := *m.Patch
	p.KeyScheme = KeySchemeAccount
	return errors.Field("Patch", p.Validate(), "invalid patch")
}
