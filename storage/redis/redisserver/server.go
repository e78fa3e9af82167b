// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package redisserver is package for starting a redis test server
package redisserver

import (
	"os"

	"github.com/alicebob/miniredis"
)

// EnvAddress names the environment variable pointing tests at a real redis server.
const EnvAddress = "STRATUS_REDIS_TEST"

// Start returns the redis server from EnvAddress when set, otherwise it starts miniredis.
func Start() (addr string, cleanup func(), err error) {
	if addr := os.Getenv(EnvAddress); addr != "" {
		return addr, func() {}, nil
	}
	return Mini()
}

// Mini starts miniredis server
func Mini() (addr string, cleanup func(), err error) {
	server, err := miniredis.Run()
	if err != nil {
		return "", nil, err
	}

	return server.Addr(), func() {
		server.Close()
	}, nil
}
