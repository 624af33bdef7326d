package app

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/codec"
	"github.com/iov-one/poa/errors"
)

// ResultSet holds the keys or the values returned by a query. It can hold
// zero to many results.
type ResultSet struct {
	Results [][]byte
}

var _ poa.Persistent = (*ResultSet)(nil)

func (r *ResultSet) Marshal() ([]byte, error) {
	w := codec.NewWriter()
	// empty results must keep their position
	for _, res := range r.Results {
		w.Message(1, rawBytes(res))
	}
	return w.Data()
}

func (r *ResultSet) Unmarshal(raw []byte) error {
	*r = ResultSet{}
	rd := codec.NewReader(raw)
	for rd.Next() {
		switch rd.Field() {
		case 1:
			r.Results = append(r.Results, rd.Bytes())
		default:
			rd.Skip()
		}
	}
	return rd.Err()
}

type rawBytes []byte

func (b rawBytes) Marshal() ([]byte, error) { return b, nil }

// ResultsFromKeys returns a ResultSet of all keys given a set of models.
func ResultsFromKeys(models []poa.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values given a set of
// models.
func ResultsFromValues(models []poa.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues and makes them a
// consistent whole again.
func JoinResults(keys, values *ResultSet) ([]poa.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrapf(errors.ErrInput, "%d keys and %d values", len(kref), len(vref))
	}
	mods := make([]poa.Model, len(kref))
	for i := range mods {
		mods[i] = poa.Pair(kref[i], vref[i])
	}
	return mods, nil
}

// UnmarshalOneResult will parse a result set, and if it is not empty,
// unmarshal the first result into o. It returns ErrNotFound for an empty
// set.
func UnmarshalOneResult(bz []byte, o poa.Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(bz); err != nil {
		return errors.Wrap(err, "result set")
	}
	if len(res.Results) == 0 {
		return errors.ErrNotFound
	}
	return o.Unmarshal(res.Results[0])
}
