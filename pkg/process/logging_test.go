// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package process_test

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/stratusvault/internal/testcontext"
	"storj.io/stratusvault/pkg/process"
)

func TestNewLogger(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	output := ctx.File("logs", "vault.log")

	config := process.DefaultLogConfig()
	config.Level = "warn"
	config.Encoding = "json"
	config.Output = output

	log, err := process.NewLogger(config)
	require.NoError(t, err)

	log.Named("reaper").Info("hidden")
	log.Named("reaper").Warn("visible")
	require.NoError(t, log.Sync())

	data, err := ioutil.ReadFile(filepath.Clean(output))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"M":"visible"`)
	assert.Contains(t, lines[0], `"N":"reaper"`)
}

func TestNewLogger_Invalid(t *testing.T) {
	config := process.DefaultLogConfig()
	config.Level = "loud"
	_, err := process.NewLogger(config)
	assert.True(t, process.Error.Has(err))

	config = process.DefaultLogConfig()
	config.Encoding = "xml"
	_, err = process.NewLogger(config)
	assert.True(t, process.Error.Has(err))
}
