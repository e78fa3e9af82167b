// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vault

import (
	"time"

	"storj.io/stratusvault/pkg/codec"
)

const (
	// DefaultMaxUploadSize is the largest accepted upload unless configured otherwise.
	DefaultMaxUploadSize = 64 << 20
	// DefaultReaperInterval is how often the reaper drains the orphan queue.
	DefaultReaperInterval = time.Minute
	// DefaultReaperBatchSize is how many keys the reaper handles per pass.
	DefaultReaperBatchSize = 100
)

// Config contains configurable values for the vault service.
type Config struct {
	MaxUploadSize int64
	Codec         string
}

// ReaperConfig contains configurable values for the orphan reaper.
type ReaperConfig struct {
	Interval  time.Duration
	BatchSize int
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		MaxUploadSize: DefaultMaxUploadSize,
		Codec:         codec.Default,
	}
}

// DefaultReaperConfig returns the reaper configuration used when nothing is overridden.
func DefaultReaperConfig() ReaperConfig {
	return ReaperConfig{
		Interval:  DefaultReaperInterval,
		BatchSize: DefaultReaperBatchSize,
	}
}
