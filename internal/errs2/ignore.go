// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package errs2

import (
	"context"

	"github.com/zeebo/errs"
)

// IsCanceled returns true when err is or wraps context.Canceled.
func IsCanceled(err error) bool {
	return errs.IsFunc(err, func(err error) bool {
		return err == context.Canceled
	})
}

// IgnoreCanceled returns nil when err is a cancellation and err otherwise.
func IgnoreCanceled(err error) error {
	if IsCanceled(err) {
		return nil
	}
	return err
}
