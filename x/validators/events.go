package validators

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/iov-one/poa"
	"github.com/tendermint/tendermint/libs/common"
)

// Names of the governance notifications.
const (
	EventValidatorProposed        = "ValidatorProposed"
	EventValidatorRemovalProposed = "ValidatorRemovalProposed"
	EventValidatorAdded           = "ValidatorAdded"
	EventValidatorRemoved         = "ValidatorRemoved"
)

// Tag keys used to publish notifications.
const (
	TagEvent     = "poa.event"
	TagProposer  = "poa.proposer"
	TagCandidate = "poa.candidate"
	TagPubKey    = "poa.pubkey"
)

// Event is a notification emitted by a successful governance operation.
type Event struct {
	Name      string
	Proposer  poa.Address
	Candidate poa.Address
	PubKey    []byte
}

// Tags returns the event as deliver result tags.
func (e Event) Tags() []common.KVPair {
	tags := []common.KVPair{
		{Key: []byte(TagEvent), Value: []byte(e.Name)},
	}
	if e.Proposer != nil {
		tags = append(tags, common.KVPair{Key: []byte(TagProposer), Value: []byte(e.Proposer.String())})
	}
	tags = append(tags, common.KVPair{Key: []byte(TagCandidate), Value: []byte(e.Candidate.String())})
	if len(e.PubKey) != 0 {
		tags = append(tags, common.KVPair{Key: []byte(TagPubKey), Value: []byte(strings.ToUpper(hex.EncodeToString(e.PubKey)))})
	}
	return tags
}

func (e Event) String() string {
	if e.Proposer != nil {
		return fmt.Sprintf("%s: %s by %s", e.Name, e.Candidate, e.Proposer)
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Candidate)
}

// DeliverResult returns a result publishing the event.
func (e Event) DeliverResult() *poa.DeliverResult {
	return &poa.DeliverResult{
		Log:  e.String(),
		Tags: e.Tags(),
	}
}
