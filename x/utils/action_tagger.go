package utils

import (
	"github.com/iov-one/poa"
	"github.com/tendermint/tendermint/libs/common"
)

// ActionKey is used by ActionTagger as the Key in the Tag it appends
const ActionKey = "action"

// ActionTagger will inspect the message being executed and add a tag
// `action = msg.Path()` to every successful delivery, so that clients have
// a standard way to search or subscribe to a type of transaction.
type ActionTagger struct{}

var _ poa.Decorator = ActionTagger{}

// NewActionTagger creates a ActionTagger decorator
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

// Check just passes the request along
func (ActionTagger) Check(ctx poa.Context, db poa.KVStore, tx poa.Tx, next poa.Checker) (*poa.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver appends a tag on the result if there is a success.
func (ActionTagger) Deliver(ctx poa.Context, db poa.KVStore, tx poa.Tx, next poa.Deliverer) (*poa.DeliverResult, error) {
	// a broken message is reported before dispatching
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, common.KVPair{
		Key:   []byte(ActionKey),
		Value: []byte(msg.Path()),
	})
	return res, nil
}
