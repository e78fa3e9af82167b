// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package testsuite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/stratusvault/storage"
)

// RunQueueTests runs common storage.Queue tests.
// The queue must be empty when the tests start.
func RunQueueTests(t *testing.T, q storage.Queue) {
	t.Run("basic", func(t *testing.T) { testQueueBasic(t, q) })
	t.Run("unacked", func(t *testing.T) { testQueueUnacked(t, q) })
}

func testQueueBasic(t *testing.T, q storage.Queue) {
	ctx := context.Background()

	_, err := q.Peek(ctx)
	assert.True(t, storage.ErrEmptyQueue.Has(err))

	keys := []string{"hello world", "Привіт, світе", "7e7a4f9c-6b0e-4b8e-a0a8-5a8b0d8d3c1e.gz"}
	for _, key := range keys {
		require.NoError(t, q.Enqueue(ctx, key))
	}

	for _, expected := range keys {
		out, err := q.Peek(ctx)
		require.NoError(t, err)
		assert.Equal(t, expected, out)
		require.NoError(t, q.Ack(ctx, out))
	}

	out, err := q.Peek(ctx)
	assert.Equal(t, "", out)
	assert.True(t, storage.ErrEmptyQueue.Has(err))

	require.NoError(t, q.Ack(ctx, "never queued"))
}

func testQueueUnacked(t *testing.T, q storage.Queue) {
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "a.gz"))
	require.NoError(t, q.Enqueue(ctx, "b.gz"))

	// a key stays at the head until it is acknowledged
	for i := 0; i < 2; i++ {
		out, err := q.Peek(ctx)
		require.NoError(t, err)
		assert.Equal(t, "a.gz", out)
	}

	// acknowledging out of order leaves the rest in place
	require.NoError(t, q.Ack(ctx, "b.gz"))
	out, err := q.Peek(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a.gz", out)

	require.NoError(t, q.Ack(ctx, "a.gz"))
	_, err = q.Peek(ctx)
	assert.True(t, storage.ErrEmptyQueue.Has(err))
}
