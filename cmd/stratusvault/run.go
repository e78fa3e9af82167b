// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storj.io/stratusvault/internal/errs2"
)

func cmdRun(cmd *cobra.Command, args []string) (err error) {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	return withPeer(cmd, config, func(ctx context.Context, peer *Peer) error {
		peer.Log.Info("reaper started",
			zap.Duration("interval", config.Reaper.Interval),
			zap.Int("batch size", config.Reaper.BatchSize))

		err := errs2.IgnoreCanceled(peer.Reaper.Run(ctx))
		peer.Log.Info("reaper stopped")
		return err
	})
}

func cmdReap(cmd *cobra.Command, args []string) (err error) {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	return withPeer(cmd, config, func(ctx context.Context, peer *Peer) error {
		return peer.Reaper.RunOnce(ctx)
	})
}
