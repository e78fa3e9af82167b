// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package testsuite

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"storj.io/stratusvault/internal/testrand"
	"storj.io/stratusvault/storage"
)

// RunObjectStoreTests runs common storage.ObjectStore tests
func RunObjectStoreTests(t *testing.T, store storage.ObjectStore) {
	t.Run("CRUD", func(t *testing.T) { testCRUD(t, store) })
	t.Run("EmptyKey", func(t *testing.T) { testEmptyKey(t, store) })
	t.Run("EmptyObject", func(t *testing.T) { testEmptyObject(t, store) })
	t.Run("Parallel", func(t *testing.T) { testParallel(t, store) })
}

func testCRUD(t *testing.T, store storage.ObjectStore) {
	ctx := context.Background()

	key := "crud-0c5ed7c9.gz"
	data := []byte{0x1f, 0x8b, 0, 0, 255, 255}

	_, err := store.Get(ctx, key)
	require.Error(t, err)
	assert.True(t, storage.ErrObjectNotFound.Has(err), "expected not found, got %+v", err)

	require.NoError(t, store.Put(ctx, key, data, "application/pdf"))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	replacement := []byte("replacement")
	require.NoError(t, store.Put(ctx, key, replacement, ""))
	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, replacement, got)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.True(t, storage.ErrObjectNotFound.Has(err))

	// deleting a missing object is not an error
	require.NoError(t, store.Delete(ctx, key))
}

func testEmptyKey(t *testing.T, store storage.ObjectStore) {
	ctx := context.Background()

	err := store.Put(ctx, "", []byte("x"), "")
	assert.True(t, storage.ErrEmptyKey.Has(err))
	_, err = store.Get(ctx, "")
	assert.True(t, storage.ErrEmptyKey.Has(err))
	err = store.Delete(ctx, "")
	assert.True(t, storage.ErrEmptyKey.Has(err))
}

func testEmptyObject(t *testing.T, store storage.ObjectStore) {
	ctx := context.Background()

	key := "empty-object"
	require.NoError(t, store.Put(ctx, key, nil, "text/plain"))
	defer func() { assert.NoError(t, store.Delete(ctx, key)) }()

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Len(t, got, 0)
}

func testParallel(t *testing.T, store storage.ObjectStore) {
	ctx := context.Background()

	const n = 10
	var group errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		group.Go(func() error {
			key := "parallel-" + strconv.Itoa(i)
			data := testrand.BytesN(100 + i)
			if err := store.Put(ctx, key, data, ""); err != nil {
				return err
			}
			got, err := store.Get(ctx, key)
			if err != nil {
				return err
			}
			if !bytes.Equal(got, data) {
				return storage.ErrUnavailable.New("mismatched object %q", key)
			}
			return store.Delete(ctx, key)
		})
	}
	require.NoError(t, group.Wait())
}
