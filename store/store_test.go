// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/stretchr/testify/require"
)

func TestPutIfAbsent(t *testing.T) {
	kv := New(memdb.New())

	created, err := kv.PutIfAbsent([]byte("k"), []byte("v1"))
	require.NoError(t, err)
	require.True(t, created)

	created, err = kv.PutIfAbsent([]byte("k"), []byte("v2"))
	require.NoError(t, err)
	require.False(t, created)

	// First write wins.
	val, err := kv.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), val)
}

func TestGetAbsent(t *testing.T) {
	kv := New(memdb.New())
	val, err := kv.Get([]byte("missing"))
	require.NoError(t, err)
	require.Nil(t, val)
}

func TestDelete(t *testing.T) {
	kv := New(memdb.New())
	require.NoError(t, kv.Put([]byte("k"), []byte("v")))
	require.NoError(t, kv.Delete([]byte("k")))

	has, err := kv.Has([]byte("k"))
	require.NoError(t, err)
	require.False(t, has)

	created, err := kv.PutIfAbsent([]byte("k"), []byte("v2"))
	require.NoError(t, err)
	require.True(t, created)
}

// Many goroutines race to create the same key; exactly one may win.
func TestPutIfAbsentConcurrent(t *testing.T) {
	kv := New(memdb.New())

	const goroutines = 32
	var wins atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := kv.PutIfAbsent([]byte("contended"), []byte(fmt.Sprintf("writer-%d", i)))
			if err != nil {
				t.Error(err)
				return
			}
			if created {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, int64(1), wins.Load())
}
