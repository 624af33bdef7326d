package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/poa/errors"
)

// ascendBtree collects all cached items from the [start, end) range in
// ascending order. A nil bound is open.
func ascendBtree(bt *btree.BTree, start, end []byte) []item {
	var items []item
	insert := func(i btree.Item) bool {
		items = append(items, i.(item))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(insert)
	case start == nil:
		bt.AscendLessThan(item{key: end}, insert)
	case end == nil:
		bt.AscendGreaterOrEqual(item{key: start}, insert)
	default:
		bt.AscendRange(item{key: start}, item{key: end}, insert)
	}
	return items
}

// descendBtree collects all cached items from the [start, end) range in
// descending order.
func descendBtree(bt *btree.BTree, start, end []byte) []item {
	items := ascendBtree(bt, start, end)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// mergedIterator joins our cached results with those of the parent,
// taking into consideration overwrites and deletes.
//
// The cached items are materialized when the iterator is created, so
// writing to the cache while iterating does not change the result.
type mergedIterator struct {
	items     []item
	parent    Iterator
	ascending bool

	// peeked parent entry, if any
	parentKey   []byte
	parentValue []byte
	parentDone  bool
	parentErr   error
	peeked      bool
}

var _ Iterator = (*mergedIterator)(nil)

func newMergedIterator(items []item, parent Iterator, ascending bool) *mergedIterator {
	return &mergedIterator{
		items:     items,
		parent:    parent,
		ascending: ascending,
	}
}

func (m *mergedIterator) peekParent() {
	if m.peeked || m.parentDone {
		return
	}
	m.peeked = true
	k, v, err := m.parent.Next()
	switch {
	case err == nil:
		m.parentKey, m.parentValue = k, v
	case errors.ErrIteratorDone.Is(err):
		m.parentDone = true
	default:
		m.parentErr = err
	}
}

// before returns true if key a comes before key b in iteration order.
func (m *mergedIterator) before(a, b []byte) bool {
	if m.ascending {
		return bytes.Compare(a, b) < 0
	}
	return bytes.Compare(a, b) > 0
}

// Next returns the next key in iteration order. Cached values take
// precedence over the parent ones and cached deletes hide parent entries.
func (m *mergedIterator) Next() (key, value []byte, err error) {
	for {
		m.peekParent()
		if m.parentErr != nil {
			return nil, nil, m.parentErr
		}

		if len(m.items) == 0 {
			if m.parentDone {
				return nil, nil, errors.Wrap(errors.ErrIteratorDone, "merged iterator")
			}
			m.peeked = false
			return m.parentKey, m.parentValue, nil
		}

		head := m.items[0]
		headKey := head.key

		if !m.parentDone {
			if m.before(m.parentKey, headKey) {
				m.peeked = false
				return m.parentKey, m.parentValue, nil
			}
			if bytes.Equal(m.parentKey, headKey) {
				// cached value shadows the parent one
				m.peeked = false
			}
		}

		m.items = m.items[1:]
		if head.deleted {
			continue
		}
		return head.key, head.value, nil
	}
}

// Release releases the Iterator.
func (m *mergedIterator) Release() {
	m.parent.Release()
	m.items = nil
}
