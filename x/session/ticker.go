package session

import (
	"bytes"
	"strconv"

	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
	"github.com/iov-one/poa/x/validators"
	"github.com/tendermint/tendermint/libs/common"
)

// TagBoundary is set on the block at which a session starts. Its value is
// the block height.
const TagBoundary = "session.boundary"

// ValidatorSource provides the validator set that a new session must use.
type ValidatorSource interface {
	CurrentValidators(db poa.ReadOnlyKVStore) ([]validators.Validator, error)
}

// Ticker applies the validator set at session boundaries.
type Ticker struct {
	keeper Keeper
	source ValidatorSource
}

var _ poa.Ticker = Ticker{}

// NewTicker returns a ticker reading the validator set from the source.
func NewTicker(keeper Keeper, source ValidatorSource) Ticker {
	return Ticker{keeper: keeper, source: source}
}

// Tick ends the session if a rotation was requested or the session length
// elapsed. The returned diff moves the consensus engine from the active set
// to the validator set of the source. An empty validator set is never
// applied.
func (t Ticker) Tick(ctx poa.Context, db poa.KVStore) (poa.TickResult, error) {
	var res poa.TickResult

	conf, err := loadConf(db)
	if err != nil {
		return res, err
	}
	state, err := t.keeper.State(db)
	if err != nil {
		return res, errors.Wrap(err, "load state")
	}
	height, _ := poa.GetHeight(ctx)
	due := conf.SessionLength > 0 && height > 0 && height%conf.SessionLength == 0
	if !state.RotationRequested && !due {
		return res, nil
	}

	log := poa.GetLogger(ctx).With("module", "session", "height", height)

	next, err := t.nextSet(ctx, db)
	if err != nil {
		return res, err
	}
	state.RotationRequested = false
	if len(next) == 0 {
		log.Info("empty validator set, keeping the active one")
		return res, t.keeper.saveState(db, state)
	}

	active, err := t.keeper.Active(db)
	if err != nil {
		return res, errors.Wrap(err, "load active set")
	}
	res.Diff = diff(active, next, conf.Power)
	if err := t.keeper.activate(db, next); err != nil {
		return res, errors.Wrap(err, "activate")
	}
	state.LastBoundary = height
	if err := t.keeper.saveState(db, state); err != nil {
		return res, errors.Wrap(err, "save state")
	}

	res.Tags = []common.KVPair{
		{Key: []byte(TagBoundary), Value: []byte(strconv.FormatInt(height, 10))},
	}
	log.Info("new session", "validators", len(next), "updates", len(res.Diff))
	return res, nil
}

// nextSet returns the operating keys of the validator set. Validators
// without a key are skipped.
func (t Ticker) nextSet(ctx poa.Context, db poa.KVStore) ([]Entry, error) {
	vals, err := t.source.CurrentValidators(db)
	if err != nil {
		return nil, errors.Wrap(err, "current validators")
	}
	set := make([]Entry, 0, len(vals))
	for _, v := range vals {
		key := v.PubKey
		if len(key) == 0 {
			if key, err = t.keeper.QueuedKey(db, v.Address); err != nil {
				return nil, err
			}
		}
		if len(key) == 0 {
			poa.GetLogger(ctx).Error("validator without operating key", "address", v.Address)
			continue
		}
		set = append(set, Entry{Account: v.Address, PubKey: key})
	}
	return set, nil
}

// diff returns updates removing the keys of the active set that are not in
// the next one and adding the keys of the next set that are not active.
func diff(active, next []Entry, power int64) []poa.ValidatorUpdate {
	var updates []poa.ValidatorUpdate
	for _, a := range active {
		if !hasKey(next, a.PubKey) {
			updates = append(updates, update(a.PubKey, 0))
		}
	}
	for _, n := range next {
		if !hasKey(active, n.PubKey) {
			updates = append(updates, update(n.PubKey, power))
		}
	}
	return updates
}

func hasKey(set []Entry, pubKey []byte) bool {
	for _, e := range set {
		if bytes.Equal(e.PubKey, pubKey) {
			return true
		}
	}
	return false
}

func update(pubKey []byte, power int64) poa.ValidatorUpdate {
	return poa.ValidatorUpdate{
		PubKey: poa.PubKey{Type: poa.PubKeyTypeEd25519, Data: pubKey},
		Power:  power,
	}
}
