package poa

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/poa/errors"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/common"
)

func TestReadOptions(t *testing.T) {
	opts := Options{
		"stuff": json.RawMessage(`{"name": "odd", "size": 7}`),
		"broken": json.RawMessage(`{"name": `),
	}

	var got struct {
		Name string `json:"name"`
		Size int    `json:"size"`
	}
	assert.NoError(t, opts.ReadOptions("stuff", &got))
	assert.Equal(t, "odd", got.Name)
	assert.Equal(t, 7, got.Size)

	// missing key is not an error and leaves the destination alone
	assert.NoError(t, opts.ReadOptions("missing", &got))
	assert.Equal(t, "odd", got.Name)

	err := opts.ReadOptions("broken", &got)
	assert.True(t, errors.ErrInput.Is(err))
}

type recordingInit struct {
	calls *[]string
	name  string
	err   error
}

func (r recordingInit) FromGenesis(Options, KVStore) error {
	*r.calls = append(*r.calls, r.name)
	return r.err
}

func TestChainInitializers(t *testing.T) {
	var calls []string
	init := ChainInitializers(
		recordingInit{calls: &calls, name: "a"},
		recordingInit{calls: &calls, name: "b", err: errors.ErrState},
		recordingInit{calls: &calls, name: "c"},
	)
	err := init.FromGenesis(nil, nil)
	assert.True(t, errors.ErrState.Is(err))
	assert.Equal(t, []string{"a", "b"}, calls)
}

type fixedTicker TickResult

func (f fixedTicker) Tick(Context, KVStore) (TickResult, error) {
	return TickResult(f), nil
}

func TestChainTickers(t *testing.T) {
	a := fixedTicker{Tags: []common.KVPair{{Key: []byte("a")}}}
	b := fixedTicker{Diff: []ValidatorUpdate{{Power: 1}}}

	res, err := ChainTickers(a, b).Tick(context.Background(), nil)
	assert.NoError(t, err)
	assert.Len(t, res.Tags, 1)
	assert.Len(t, res.Diff, 1)
}

func TestValidatorUpdatesToABCI(t *testing.T) {
	key := PubKey{Type: PubKeyTypeEd25519, Data: []byte("k1")}
	other := PubKey{Type: PubKeyTypeEd25519, Data: []byte("k2")}

	got := ValidatorUpdatesToABCI([]ValidatorUpdate{
		{PubKey: key, Power: 10},
		{PubKey: other, Power: 10},
		{PubKey: key, Power: 0},
	})
	assert.Len(t, got, 2)
	assert.Equal(t, int64(0), got[0].Power)
	assert.Equal(t, []byte("k2"), got[1].PubKey.Data)
}
