package client

import (
	cmn "github.com/tendermint/tendermint/libs/common"
)

// TransactionID is the hash used to identify the transaction
type TransactionID = cmn.HexBytes

// CommitResult is returned from the block (DeliverTx).
// Err is set if it was a failure code
type CommitResult struct {
	ID     TransactionID
	Height int64
	Tags   []cmn.KVPair
	Log    string
	Err    error
}

// Status is the current status of the node we connect to.
type Status struct {
	ChainID    string
	Height     int64
	CatchingUp bool
}
