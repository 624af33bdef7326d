package orm

import (
	"github.com/iov-one/poa"
	"github.com/iov-one/poa/errors"
)

// ConsumeIterator will read all remaining data into an
// array and release the iterator
func ConsumeIterator(itr poa.Iterator) ([]poa.Model, error) {
	defer itr.Release()

	var res []poa.Model
	for {
		key, value, err := itr.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		res = append(res, poa.Model{Key: key, Value: value})
	}
}

// queryPrefix returns all models whose key starts with the prefix.
func queryPrefix(db poa.ReadOnlyKVStore, prefix []byte) ([]poa.Model, error) {
	itr, err := db.Iterator(prefixRange(prefix))
	if err != nil {
		return nil, err
	}
	return ConsumeIterator(itr)
}

// prefixRange turns a prefix into (start, end) to use with Iterator
func prefixRange(prefix []byte) ([]byte, []byte) {
	start := make([]byte, len(prefix))
	copy(start, prefix)
	end := make([]byte, len(prefix))
	copy(end, prefix)

	// increment the last byte, carrying over into the previous ones
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 255 {
			end[i]++
			return start, end[:i+1]
		}
	}
	// prefix is all 0xff, no upper bound
	return start, nil
}
