// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package testrand implements generating random values for tests.
package testrand

import (
	"fmt"
	"math/rand"

	"storj.io/stratusvault/vault"
)

// Int63n returns, as an int64, a non-negative pseudo-random number in [0,n)
// from the default Source.
// It panics if n <= 0.
func Int63n(n int64) int64 {
	return rand.Int63n(n)
}

// Read reads pseudo-random data into data.
func Read(data []byte) {
	const newSourceThreshold = 64
	if len(data) < newSourceThreshold {
		_, _ = rand.Read(data)
		return
	}

	src := rand.NewSource(rand.Int63())
	r := rand.New(src)
	_, _ = r.Read(data)
}

// BytesN generates size amount of random data.
func BytesN(size int) []byte {
	data := make([]byte, size)
	Read(data)
	return data
}

// Caller returns a caller with a random subject and a matching email.
func Caller() vault.Caller {
	id := rand.Int63()
	return vault.Caller{
		Subject: fmt.Sprintf("auth0|%x", id),
		Email:   fmt.Sprintf("user-%x@example.com", id),
	}
}
