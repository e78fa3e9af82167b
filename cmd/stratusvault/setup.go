// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/stratusvault/pkg/process"
)

func cmdSetup(cmd *cobra.Command, args []string) (err error) {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(config.ConfigDir, 0700); err != nil {
		return Error.Wrap(err)
	}
	configFile := filepath.Join(config.ConfigDir, process.ConfigFileName)
	if _, err := os.Stat(configFile); err == nil && !setupOverwrite {
		return Error.New("%q already exists, use --overwrite to replace it", configFile)
	}

	err = withPeer(cmd, config, func(ctx context.Context, peer *Peer) error {
		peer.Log.Info("database ready", zap.String("database", config.Database))
		return nil
	})
	if err != nil {
		return err
	}

	if err := process.SaveConfig(cmd, configFile, nil); err != nil {
		return err
	}
	fmt.Printf("Your stratusvault configuration is saved to %s\n", configFile)
	return nil
}

// withPeer opens a peer for config, makes sure the tables exist and runs fn.
func withPeer(cmd *cobra.Command, config Config, fn func(ctx context.Context, peer *Peer) error) (err error) {
	ctx, cancel := process.Ctx(cmd)
	defer cancel()

	log, err := process.NewLogger(config.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	peer, err := NewPeer(ctx, log, config)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, peer.Close()) }()

	if err := peer.DB.CreateTables(ctx); err != nil {
		return err
	}
	return fn(ctx, peer)
}
