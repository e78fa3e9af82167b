// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vault

import (
	"context"

	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/stratusvault/internal/sync2"
	"storj.io/stratusvault/storage"
)

// ErrReaper is the reaper error class
var ErrReaper = errs.Class("reaper")

// Reaper deletes objects whose metadata is gone but whose removal failed.
type Reaper struct {
	log     *zap.Logger
	objects storage.ObjectStore
	orphans storage.Queue
	config  ReaperConfig

	Loop *sync2.Cycle
}

// NewReaper creates a new reaper draining orphans into objects.
func NewReaper(log *zap.Logger, objects storage.ObjectStore, orphans storage.Queue, config ReaperConfig) *Reaper {
	if config.Interval <= 0 {
		config.Interval = DefaultReaperInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultReaperBatchSize
	}
	return &Reaper{
		log:     log,
		objects: objects,
		orphans: orphans,
		config:  config,
		Loop:    sync2.NewCycle(config.Interval),
	}
}

// Run runs the reaper until the context is canceled or the loop is stopped.
func (reaper *Reaper) Run(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)
	return reaper.Loop.Run(ctx, func(ctx context.Context) error {
		if err := reaper.RunOnce(ctx); err != nil {
			reaper.log.Error("reaper pass failed", zap.Error(err))
		}
		return nil
	})
}

// RunOnce handles up to BatchSize queued keys. A key is acknowledged only after
// its object is gone; the pass stops at the first failing delete and leaves
// that key at the head of the queue for the next pass.
func (reaper *Reaper) RunOnce(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	for i := 0; i < reaper.config.BatchSize; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		key, err := reaper.orphans.Peek(ctx)
		if storage.ErrEmptyQueue.Has(err) {
			return nil
		}
		if err != nil {
			return ErrReaper.Wrap(err)
		}

		if err := reaper.objects.Delete(ctx, key); err != nil {
			reaper.log.Warn("orphan delete failed", zap.String("key", key), zap.Error(err))
			return nil
		}

		// delete of a missing object succeeds, so an unacked key is retried safely
		if err := reaper.orphans.Ack(ctx, key); err != nil {
			reaper.log.Error("orphan deleted but still queued", zap.String("key", key), zap.Error(err))
			return ErrReaper.Wrap(err)
		}

		mon.Meter("orphans_reaped").Mark(1)
		reaper.log.Debug("orphan deleted", zap.String("key", key))
	}
	return nil
}

// Close stops the reaper loop.
func (reaper *Reaper) Close() error {
	reaper.Loop.Close()
	return nil
}
