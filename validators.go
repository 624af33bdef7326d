package poa

import (
	"bytes"

	abci "github.com/tendermint/tendermint/abci/types"
)

// PubKeyTypeEd25519 is the only validator key type tendermint accepts on
// this chain.
const PubKeyTypeEd25519 = "ed25519"

// PubKey is a validator consensus key.
type PubKey struct {
	Type string
	Data []byte
}

// ValidatorUpdate is a single change of the tendermint validator set. A
// power of zero removes the validator.
type ValidatorUpdate struct {
	PubKey PubKey
	Power  int64
}

// AsABCI converts the update into the tendermint representation.
func (v ValidatorUpdate) AsABCI() abci.ValidatorUpdate {
	return abci.ValidatorUpdate{
		PubKey: abci.PubKey{
			Type: v.PubKey.Type,
			Data: v.PubKey.Data,
		},
		Power: v.Power,
	}
}

// ValidatorUpdatesToABCI converts a list of updates into the tendermint
// representation. When a key is present more than once only the last update
// is kept, at the position of the first occurrence.
func ValidatorUpdatesToABCI(updates []ValidatorUpdate) []abci.ValidatorUpdate {
	var res []abci.ValidatorUpdate
	for _, u := range updates {
		v := u.AsABCI()
		if i := pubKeyIndex(v, res); i >= 0 {
			res[i] = v
		} else {
			res = append(res, v)
		}
	}
	return res
}

// return index of list with validator of same Pubkey, or -1 if no match
func pubKeyIndex(val abci.ValidatorUpdate, list []abci.ValidatorUpdate) int {
	for i, v := range list {
		if val.PubKey.Type == v.PubKey.Type && bytes.Equal(val.PubKey.Data, v.PubKey.Data) {
			return i
		}
	}
	return -1
}
