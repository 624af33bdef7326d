package store

import (
	"bytes"

	"github.com/google/btree"
)

// DefaultFreeListSize is the number of btree nodes kept for reuse.
const DefaultFreeListSize = btree.DefaultFreeListSize

// BTreeCacheable gives any KVStore a btree backed CacheWrap.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap returns a cache that is written to the wrapped store on Write.
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, NewNonAtomicBatch(b.KVStore), nil)
}

// MemStore returns an empty in-memory store. Nothing is persisted.
func MemStore() CacheableKVStore {
	e := EmptyKVStore{}
	return NewBTreeCacheWrap(e, NewNonAtomicBatch(e), nil)
}

// BTreeCacheWrap keeps all writes in a btree in front of a read only store
// and records them in a batch, so they can be flushed or dropped at once.
type BTreeCacheWrap struct {
	bt    *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap returns a cache over kv that writes through batch. The
// free list may be shared between nested caches, nil allocates a new one.
func NewBTreeCacheWrap(kv ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		bt:    btree.NewWithFreeList(2, free),
		free:  free,
		back:  kv,
		batch: batch,
	}
}

// CacheWrap nests another cache over this one.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, NewNonAtomicBatch(b), b.free)
}

// Write flushes the batch to the backing store and empties the cache.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops all cached writes.
func (b BTreeCacheWrap) Discard() {
	// returns the nodes to the free list
	for b.bt.DeleteMin() != nil {
	}
	if d, ok := b.batch.(discarder); ok {
		d.discard()
	}
}

type discarder interface {
	discard()
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.bt.ReplaceOrInsert(item{key: key, value: value})
	return b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	b.bt.ReplaceOrInsert(item{key: key, deleted: true})
	return b.batch.Delete(key)
}

// Get prefers the cached value and falls back to the backing store.
func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	if it, ok := b.cached(key); ok {
		if it.deleted {
			return nil, nil
		}
		return it.value, nil
	}
	return b.back.Get(key)
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	if it, ok := b.cached(key); ok {
		return !it.deleted, nil
	}
	return b.back.Has(key)
}

func (b BTreeCacheWrap) cached(key []byte) (item, bool) {
	res := b.bt.Get(item{key: key})
	if res == nil {
		return item{}, false
	}
	return res.(item), true
}

// Iterator walks [start, end) in ascending order over both the cache and
// the backing store.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergedIterator(ascendBtree(b.bt, start, end), parent, true), nil
}

// ReverseIterator walks [start, end) in descending order.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergedIterator(descendBtree(b.bt, start, end), parent, false), nil
}

// item is a cached write. A deleted item hides the backing value.
type item struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = item{}

func (i item) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(item).key) < 0
}
