// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"strings"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"

	"storj.io/stratusvault/pkg/codec"
	"storj.io/stratusvault/pkg/process"
	"storj.io/stratusvault/vault"
)

// Error is the error class for the stratusvault command.
var Error = errs.Class("stratusvault")

// Config is the full configuration of a stratusvault process.
type Config struct {
	ConfigDir        string
	Database         string
	Objects          string
	OrphanQueue      string
	MinimumFreeSpace int64

	Caller vault.Caller
	Vault  vault.Config
	Reaper vault.ReaperConfig
	Log    process.LogConfig
}

// loadConfig reads cmd's flags, the environment and the config file.
func loadConfig(cmd *cobra.Command) (config Config, err error) {
	vip, err := process.Viper(cmd)
	if err != nil {
		return Config{}, err
	}

	config.ConfigDir = process.ConfigDir(cmd)
	expand := func(value string) string {
		return strings.Replace(value, "$CONFDIR", config.ConfigDir, -1)
	}

	config.Database = expand(vip.GetString("database"))
	config.Objects = expand(vip.GetString("objects"))
	config.OrphanQueue = expand(vip.GetString("orphan-queue"))

	minFree, err := humanize.ParseBytes(vip.GetString("min-free-space"))
	if err != nil {
		return Config{}, Error.New("invalid min-free-space: %v", err)
	}
	config.MinimumFreeSpace = int64(minFree)

	maxUpload, err := humanize.ParseBytes(vip.GetString("max-upload-size"))
	if err != nil {
		return Config{}, Error.New("invalid max-upload-size: %v", err)
	}
	if maxUpload == 0 {
		return Config{}, Error.New("max-upload-size must be positive")
	}

	config.Vault = vault.Config{
		MaxUploadSize: int64(maxUpload),
		Codec:         vip.GetString("codec"),
	}
	if _, err := codec.ByName(config.Vault.Codec); err != nil {
		return Config{}, Error.New("invalid codec %q, expected one of %v", config.Vault.Codec, codec.Names())
	}

	config.Reaper = vault.ReaperConfig{
		Interval:  vip.GetDuration("reaper.interval"),
		BatchSize: vip.GetInt("reaper.batch-size"),
	}
	config.Caller = vault.Caller{
		Subject: vip.GetString("subject"),
		Email:   vip.GetString("email"),
	}
	config.Log = process.LogConfigFrom(vip)

	return config, nil
}
