package validators

import (
	"testing"

	"github.com/iov-one/poa/weavetest"
	"github.com/iov-one/poa/weavetest/assert"
)

func TestEventTags(t *testing.T) {
	proposer := weavetest.NewCondition().Address()
	cand := weavetest.NewCondition().Address()

	ev := Event{Name: EventValidatorProposed, Proposer: proposer, Candidate: cand}
	res := ev.DeliverResult()
	assert.Equal(t, 3, len(res.Tags))
	assert.Equal(t, EventValidatorProposed, tagValue(res, TagEvent))
	assert.Equal(t, proposer.String(), tagValue(res, TagProposer))
	assert.Equal(t, cand.String(), tagValue(res, TagCandidate))
	assert.Equal(t, ev.String(), res.Log)

	ev = Event{Name: EventValidatorRemoved, Candidate: cand, PubKey: []byte{0xab, 0x01}}
	res = ev.DeliverResult()
	assert.Equal(t, 3, len(res.Tags))
	assert.Equal(t, "AB01", tagValue(res, TagPubKey))
	assert.Equal(t, "", tagValue(res, TagProposer))
}
