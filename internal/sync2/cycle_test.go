// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information

package sync2_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storj.io/stratusvault/internal/sync2"
	"storj.io/stratusvault/internal/testcontext"
)

func TestCycle_TriggerWait(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	var count int64
	cycle := sync2.NewCycle(time.Hour)

	ctx.Go(func() error {
		return cycle.Run(ctx, func(ctx context.Context) error {
			atomic.AddInt64(&count, 1)
			return nil
		})
	})

	cycle.TriggerWait()
	cycle.TriggerWait()
	// the first run happens on start
	require.Equal(t, int64(3), atomic.LoadInt64(&count))

	cycle.Stop()
}

func TestCycle_StopsOnError(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	failure := errors.New("failure")
	cycle := sync2.NewCycle(time.Millisecond)

	err := cycle.Run(ctx, func(ctx context.Context) error {
		return failure
	})
	require.Equal(t, failure, err)

	// control methods must not block on a finished cycle
	cycle.TriggerWait()
	cycle.Stop()
}

func TestCycle_ContextCanceled(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	runctx, cancel := context.WithCancel(ctx)
	cycle := sync2.NewCycle(time.Millisecond)

	var count int64
	err := cycle.Run(runctx, func(ctx context.Context) error {
		if atomic.AddInt64(&count, 1) >= 5 {
			cancel()
		}
		return nil
	})
	require.Equal(t, context.Canceled, err)
	require.True(t, atomic.LoadInt64(&count) >= 5)
}
