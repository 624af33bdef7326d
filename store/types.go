package store

import "github.com/iov-one/poa"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = poa.ReadOnlyKVStore
type SetDeleter = poa.SetDeleter
type KVStore = poa.KVStore
type Iterator = poa.Iterator
type CacheableKVStore = poa.CacheableKVStore
type KVCacheWrap = poa.KVCacheWrap
type CommitKVStore = poa.CommitKVStore
type CommitID = poa.CommitID
type Model = poa.Model

// Batch can write multiple ops atomically to an underlying KVStore
type Batch interface {
	SetDeleter
	Write() error
}
