// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package testqueue_test

import (
	"testing"

	"storj.io/stratusvault/storage/testqueue"
	"storj.io/stratusvault/storage/testsuite"
)

func TestSuite(t *testing.T) {
	testsuite.RunQueueTests(t, testqueue.New())
}
