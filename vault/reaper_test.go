// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vault_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/stratusvault/internal/testcontext"
	"storj.io/stratusvault/storage/testqueue"
	"storj.io/stratusvault/storage/teststore"
	"storj.io/stratusvault/vault"
)

func TestReaper(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	objects := teststore.New()
	orphans := testqueue.New()
	for _, key := range []string{"a.gz", "b.gz", "c.gz"} {
		require.NoError(t, objects.Put(ctx, key, []byte(key), ""))
		require.NoError(t, orphans.Enqueue(ctx, key))
	}
	require.NoError(t, objects.Put(ctx, "live.gz", []byte("live"), ""))

	reaper := vault.NewReaper(zaptest.NewLogger(t), objects, orphans, vault.ReaperConfig{
		Interval:  time.Hour,
		BatchSize: 2,
	})

	t.Run("failure stays queued", func(t *testing.T) {
		objects.FailNext(teststore.OpDelete, 1)
		require.NoError(t, reaper.RunOnce(ctx))
		assert.Equal(t, []string{"a.gz", "b.gz", "c.gz"}, orphans.Keys())
		assert.Equal(t, []string{"a.gz", "b.gz", "c.gz", "live.gz"}, objects.Keys())
	})

	t.Run("batches", func(t *testing.T) {
		require.NoError(t, reaper.RunOnce(ctx))
		assert.Equal(t, []string{"c.gz"}, orphans.Keys())
		assert.Equal(t, []string{"c.gz", "live.gz"}, objects.Keys())
	})

	t.Run("loop", func(t *testing.T) {
		ctx.Go(func() error { return reaper.Run(ctx) })
		reaper.Loop.TriggerWait()

		assert.Empty(t, orphans.Keys())
		assert.Equal(t, []string{"live.gz"}, objects.Keys())
		require.NoError(t, reaper.Close())
	})
}

func TestReaper_AckFailure(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	objects := teststore.New()
	orphans := testqueue.New()
	require.NoError(t, objects.Put(ctx, "a.gz", []byte("a"), ""))
	require.NoError(t, orphans.Enqueue(ctx, "a.gz"))

	reaper := vault.NewReaper(zaptest.NewLogger(t), objects, orphans, vault.ReaperConfig{})

	// the object is gone but the key was not acknowledged
	orphans.FailNextAck(1)
	err := reaper.RunOnce(ctx)
	require.Error(t, err)
	assert.True(t, vault.ErrReaper.Has(err))
	assert.Empty(t, objects.Keys())
	assert.Equal(t, []string{"a.gz"}, orphans.Keys())

	// the next pass deletes the missing object again and drops the key
	require.NoError(t, reaper.RunOnce(ctx))
	assert.Empty(t, orphans.Keys())
}
