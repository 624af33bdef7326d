package store

import (
	"fmt"
	"testing"

	"github.com/iov-one/poa/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	require.NoError(t, err)
	assert.Equal(t, has, exists)
}

func consume(t testing.TB, it Iterator) []Model {
	t.Helper()
	defer it.Release()
	var res []Model
	for {
		k, v, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res
		}
		require.NoError(t, err)
		res = append(res, Model{Key: k, Value: v})
	}
}

func TestCacheGetSet(t *testing.T) {
	base := MemStore()

	k, v := []byte("french"), []byte("fry")
	assertGetHas(t, base, k, nil, false)
	require.NoError(t, base.Set(k, v))
	assertGetHas(t, base, k, v, true)

	// now layer another btree on top and make sure that we get
	// base data
	cache := base.CacheWrap()
	assertGetHas(t, cache, k, v, true)

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	assertGetHas(t, cache, k2, nil, false)
	require.NoError(t, cache.Set(k2, v2))
	assertGetHas(t, cache, k2, v2, true)
	assertGetHas(t, base, k2, nil, false)

	// we can write the cache to the base layer...
	require.NoError(t, cache.Write())
	assertGetHas(t, base, k, v, true)
	assertGetHas(t, base, k2, v2, true)

	// delete is visible in the cache only until written
	cache = base.CacheWrap()
	require.NoError(t, cache.Delete(k))
	assertGetHas(t, cache, k, nil, false)
	assertGetHas(t, base, k, v, true)
	cache.Discard()
	assertGetHas(t, base, k, v, true)
}

func TestCacheDiscardDropsWrites(t *testing.T) {
	base := MemStore()
	cache := base.CacheWrap()
	require.NoError(t, cache.Set([]byte("a"), []byte("1")))
	cache.Discard()
	require.NoError(t, cache.Write())
	assertGetHas(t, base, []byte("a"), nil, false)
}

func TestCacheIterator(t *testing.T) {
	base := MemStore()
	for i := 0; i < 6; i++ {
		require.NoError(t, base.Set([]byte(fmt.Sprintf("k%d", i)), []byte("base")))
	}

	cache := base.CacheWrap()
	require.NoError(t, cache.Set([]byte("k1"), []byte("cache")))
	require.NoError(t, cache.Delete([]byte("k2")))
	require.NoError(t, cache.Set([]byte("k25"), []byte("new")))
	require.NoError(t, cache.Delete([]byte("missing")))

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		want       []string
	}{
		"full range": {
			want: []string{"k0=base", "k1=cache", "k25=new", "k3=base", "k4=base", "k5=base"},
		},
		"bounded range": {
			start: []byte("k1"),
			end:   []byte("k4"),
			want:  []string{"k1=cache", "k25=new", "k3=base"},
		},
		"open end": {
			start: []byte("k4"),
			want:  []string{"k4=base", "k5=base"},
		},
		"open start": {
			end:  []byte("k2"),
			want: []string{"k0=base", "k1=cache"},
		},
		"reverse full range": {
			reverse: true,
			want:    []string{"k5=base", "k4=base", "k3=base", "k25=new", "k1=cache", "k0=base"},
		},
		"reverse bounded": {
			start:   []byte("k1"),
			end:     []byte("k3"),
			reverse: true,
			want:    []string{"k25=new", "k1=cache"},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var (
				it  Iterator
				err error
			)
			if tc.reverse {
				it, err = cache.ReverseIterator(tc.start, tc.end)
			} else {
				it, err = cache.Iterator(tc.start, tc.end)
			}
			require.NoError(t, err)

			var got []string
			for _, m := range consume(t, it) {
				got = append(got, fmt.Sprintf("%s=%s", m.Key, m.Value))
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNestedCacheWrap(t *testing.T) {
	base := MemStore()
	outer := base.CacheWrap()
	inner := outer.CacheWrap()

	require.NoError(t, inner.Set([]byte("deep"), []byte("value")))
	assertGetHas(t, outer, []byte("deep"), nil, false)

	require.NoError(t, inner.Write())
	assertGetHas(t, outer, []byte("deep"), []byte("value"), true)
	assertGetHas(t, base, []byte("deep"), nil, false)

	require.NoError(t, outer.Write())
	assertGetHas(t, base, []byte("deep"), []byte("value"), true)
}

func TestNonAtomicBatch(t *testing.T) {
	base := MemStore()
	b := NewNonAtomicBatch(base)
	require.NoError(t, b.Set([]byte("a"), []byte("1")))
	require.NoError(t, b.Delete([]byte("b")))
	assert.Len(t, b.ShowOps(), 2)
	assertGetHas(t, base, []byte("a"), nil, false)

	require.NoError(t, b.Write())
	assert.Empty(t, b.ShowOps())
	assertGetHas(t, base, []byte("a"), []byte("1"), true)
}
