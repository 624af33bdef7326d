package client

import (
	"context"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/app"
	"github.com/iov-one/poa/errors"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
)

// Client is a tendermint client wrapped to provide simple access to the
// basic data structures of a poa node.
type Client struct {
	conn rpcclient.Client
}

// NewClient wraps a Client around an existing tendermint client connection.
func NewClient(conn rpcclient.Client) *Client {
	return &Client{conn: conn}
}

// Dial returns a client talking to the rpc endpoint of the node at remote,
// for example http://localhost:26657.
func Dial(remote string) *Client {
	return NewClient(rpcclient.NewHTTP(remote, "/websocket"))
}

// Status returns current height and other (subjective) status info from this node
func (c *Client) Status(ctx context.Context) (*Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	status, err := c.conn.Status()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "status: %s", err.Error())
	}
	return &Status{
		ChainID:    status.NodeInfo.Network,
		Height:     status.SyncInfo.LatestBlockHeight,
		CatchingUp: status.SyncInfo.CatchingUp,
	}, nil
}

// Query runs an abci query against the last committed state and returns
// the matching models. A missing key results in an empty list.
func (c *Client) Query(ctx context.Context, path string, data []byte) ([]poa.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := c.conn.ABCIQuery(path, data)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "query: %s", err.Error())
	}
	resp := res.Response
	if resp.IsErr() {
		return nil, errors.ABCIError(resp.Code, resp.Log)
	}

	var keys, values app.ResultSet
	if err := keys.Unmarshal(resp.Key); err != nil {
		return nil, errors.Wrap(err, "keys")
	}
	if err := values.Unmarshal(resp.Value); err != nil {
		return nil, errors.Wrap(err, "values")
	}
	return app.JoinResults(&keys, &values)
}

// CommitTx submits the transaction and blocks until it is included in a
// block. A transaction rejected by CheckTx results in an error, a failed
// delivery is reported in CommitResult.Err.
func (c *Client) CommitTx(ctx context.Context, tx poa.Tx) (*CommitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bz, err := tx.Marshal()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrMsg, "marshaling: %s", err.Error())
	}
	res, err := c.conn.BroadcastTxCommit(bz)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "broadcast tx: %s", err.Error())
	}
	if res.CheckTx.IsErr() {
		return nil, errors.ABCIError(res.CheckTx.Code, res.CheckTx.Log)
	}
	return &CommitResult{
		ID:     res.Hash,
		Height: res.Height,
		Tags:   res.DeliverTx.Tags,
		Log:    res.DeliverTx.Log,
		Err:    errors.ABCIError(res.DeliverTx.Code, res.DeliverTx.Log),
	}, nil
}
