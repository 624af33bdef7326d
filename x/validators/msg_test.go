package validators

import (
	"testing"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/weavetest"
	"github.com/iov-one/poa/weavetest/assert"
)

func TestCandidateMsgValidate(t *testing.T) {
	addr := weavetest.NewCondition().Address()

	cases := map[string]struct {
		msg      poa.Msg
		wantErrs map[string]*errors.Error
	}{
		"account candidate": {
			msg: &ProposeAddMsg{CandidateMsg{Candidate: addr}},
			wantErrs: map[string]*errors.Error{
				"Candidate": nil,
				"PubKey":    nil,
			},
		},
		"keyed candidate": {
			msg: &ResolveRemoveMsg{CandidateMsg{Candidate: addr, PubKey: weavetest.NewPubKey()}},
			wantErrs: map[string]*errors.Error{
				"Candidate": nil,
				"PubKey":    nil,
			},
		},
		"missing candidate": {
			msg: &AdminAddMsg{},
			wantErrs: map[string]*errors.Error{
				"Candidate": errors.ErrEmpty,
				"PubKey":    nil,
			},
		},
		"short key": {
			msg: &AdminRemoveMsg{CandidateMsg{Candidate: addr, PubKey: []byte{1, 2, 3}}},
			wantErrs: map[string]*errors.Error{
				"Candidate": nil,
				"PubKey":    errors.ErrInput,
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.msg.Validate()
			for field, want := range tc.wantErrs {
				assert.FieldError(t, err, field, want)
			}
		})
	}
}

func TestCandidateMsgEncoding(t *testing.T) {
	msg := &ProposeRemoveMsg{CandidateMsg{
		Candidate: weavetest.NewCondition().Address(),
		PubKey:    weavetest.NewPubKey(),
	}}
	raw, err := msg.Marshal()
	assert.Nil(t, err)

	var got ProposeRemoveMsg
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, msg.AsCandidate(), got.AsCandidate())
	assert.Equal(t, PathProposeRemove, got.Path())
}

func TestUpdateConfigurationMsg(t *testing.T) {
	assert.IsErr(t, errors.ErrEmpty, (&UpdateConfigurationMsg{}).Validate())
	assert.IsErr(t, errors.ErrInput, (&UpdateConfigurationMsg{Patch: &Configuration{KeyScheme: "ring"}}).Validate())
	assert.IsErr(t, errors.ErrInput, (&UpdateConfigurationMsg{Patch: &Configuration{KeyScheme: KeySchemeKeyed}}).Validate())
	assert.IsErr(t, errors.ErrInput, (&UpdateConfigurationMsg{Patch: &Configuration{ProposalTTL: -1}}).Validate())

	msg := &UpdateConfigurationMsg{Patch: &Configuration{ProposalTTL: 3}}
	assert.Nil(t, msg.Validate())

	raw, err := msg.Marshal()
	assert.Nil(t, err)
	var got UpdateConfigurationMsg
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, msg, &got)
}
