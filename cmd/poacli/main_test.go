package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/app"
	"github.com/iov-one/poa/client"
	poad "github.com/iov-one/poa/cmd/poad/app"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/weavetest"
	"github.com/iov-one/poa/x/sigs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	"golang.org/x/crypto/ed25519"
)

const testChainID = "poacli-test"

// chainNode runs an in-process application and commits every
// transaction in its own block.
type chainNode struct {
	base   app.BaseApp
	height int64
}

func newChainNode(t *testing.T, genesisArgs []string) *chainNode {
	t.Helper()
	state, err := poad.GenInitOptions(genesisArgs, weavetest.NewPubKey())
	require.NoError(t, err)
	base, err := poad.Application("", log.NewNopLogger(), true)
	require.NoError(t, err)
	base.InitChain(abci.RequestInitChain{ChainId: testChainID, AppStateBytes: state.Options})
	n := &chainNode{base: base}
	n.block()
	return n
}

// block runs one block with the transaction, if any, and commits it.
func (n *chainNode) block(txs ...[]byte) abci.ResponseDeliverTx {
	n.height++
	n.base.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: n.height, ChainID: testChainID}})
	var res abci.ResponseDeliverTx
	for _, tx := range txs {
		res = n.base.DeliverTx(tx)
	}
	n.base.EndBlock(abci.RequestEndBlock{Height: n.height})
	n.base.Commit()
	return res
}

func (n *chainNode) Status(ctx context.Context) (*client.Status, error) {
	return &client.Status{ChainID: testChainID, Height: n.height}, nil
}

func (n *chainNode) Query(ctx context.Context, path string, data []byte) ([]poa.Model, error) {
	res := n.base.Query(abci.RequestQuery{Path: path, Data: data})
	if res.IsErr() {
		return nil, errors.ABCIError(res.Code, res.Log)
	}
	var keys, values app.ResultSet
	if err := keys.Unmarshal(res.Key); err != nil {
		return nil, err
	}
	if err := values.Unmarshal(res.Value); err != nil {
		return nil, err
	}
	return app.JoinResults(&keys, &values)
}

func (n *chainNode) CommitTx(ctx context.Context, tx poa.Tx) (*client.CommitResult, error) {
	raw, err := tx.Marshal()
	if err != nil {
		return nil, err
	}
	if res := n.base.CheckTx(raw); res.IsErr() {
		return nil, errors.ABCIError(res.Code, res.Log)
	}
	res := n.block(raw)
	return &client.CommitResult{
		Height: n.height,
		Tags:   res.Tags,
		Log:    res.Log,
		Err:    errors.ABCIError(res.Code, res.Log),
	}, nil
}

// writeKey stores a fresh private key in the directory and returns the
// file path with the address of the key.
func writeKey(t *testing.T, dir, name string) (string, ed25519.PublicKey) {
	t.Helper()
	pub, priv := weavetest.NewKey()
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, priv, 0600))
	return path, pub
}

func run(t *testing.T, n node, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := RootCmd(&out, func(string) node { return n })
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestKeygen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")

	out, err := run(t, nil, "keygen", "--key", path)
	require.NoError(t, err)
	raw, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, raw, ed25519.PrivateKeySize)

	addr := sigs.Condition(ed25519.PrivateKey(raw).Public().(ed25519.PublicKey)).Address()
	assert.Equal(t, addr.String()+"\n", out)

	_, err = run(t, nil, "keygen", "--key", path)
	assert.True(t, errors.ErrDuplicate.Is(err), "got %+v", err)

	out, err = run(t, nil, "keyaddr", "--key", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, addr.String()+" "), out)
}

func TestKeyaddrInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, ioutil.WriteFile(path, []byte("short"), 0600))

	_, err := run(t, nil, "keyaddr", "--key", path)
	assert.True(t, errors.ErrInput.Is(err), "got %+v", err)

	_, err = run(t, nil, "keyaddr", "--key", path+".missing")
	assert.True(t, errors.ErrInput.Is(err), "got %+v", err)
}

func TestGovernanceCommands(t *testing.T) {
	dir := t.TempDir()
	valKey, valPub := writeKey(t, dir, "validator")
	candKey, candPub := writeKey(t, dir, "candidate")
	valAddr := sigs.Condition(valPub).Address()
	candAddr := sigs.Condition(candPub).Address()

	n := newChainNode(t, []string{"-", valAddr.String() + ":" + hex.EncodeToString(valPub)})

	opKey, _ := weavetest.NewKey()
	out, err := run(t, n, "set-keys", hex.EncodeToString(opKey), "--key", candKey)
	require.NoError(t, err)
	assert.Contains(t, out, "committed at height 2")

	_, err = run(t, n, "propose-add", candAddr.String(), "--key", valKey)
	require.NoError(t, err)
	// the chain id given explicitly must match the signed one
	_, err = run(t, n, "resolve-add", candAddr.String(), "--key", valKey, "--chain-id", testChainID)
	require.NoError(t, err)

	seq, err := sequence(context.Background(), n, valAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)

	vals, err := queryValidators(context.Background(), n)
	require.NoError(t, err)
	require.Len(t, vals, 2)

	out, err = run(t, n, "query", "validators")
	require.NoError(t, err)
	assert.Contains(t, out, candAddr.String())

	out, err = run(t, n, "query", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, hex.EncodeToString(opKey))

	// resolving again fails, the proposal is gone
	_, err = run(t, n, "resolve-add", candAddr.String(), "--key", valKey)
	assert.Error(t, err)

	// a signature for another chain is rejected by the node
	_, err = run(t, n, "propose-remove", candAddr.String(), "--key", valKey, "--chain-id", "another-chain")
	assert.Error(t, err)
}

func TestParseCandidate(t *testing.T) {
	addr := weavetest.NewCondition().Address()

	cases := map[string]struct {
		args    []string
		wantErr *errors.Error
		wantKey bool
	}{
		"address only": {
			args: []string{addr.String()},
		},
		"address with pubkey": {
			args:    []string{addr.String(), "0102"},
			wantKey: true,
		},
		"bad address": {
			args:    []string{"zzz"},
			wantErr: errors.ErrInput,
		},
		"bad pubkey": {
			args:    []string{addr.String(), "xyz"},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			cand, err := parseCandidate(tc.args)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, addr, cand.Candidate)
			assert.Equal(t, tc.wantKey, len(cand.PubKey) > 0)
		})
	}
}

func TestAccountOf(t *testing.T) {
	assert.Equal(t, poa.Address("abc"), accountOf([]byte("sess_act:abc")))
	assert.Equal(t, poa.Address("abc"), accountOf([]byte("abc")))
}
