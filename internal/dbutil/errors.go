// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package dbutil

import (
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/zeebo/errs"
)

// IsConstraintError checks if given error is about constraint violation
func IsConstraintError(err error) bool {
	return errs.IsFunc(err, func(err error) bool {
		switch e := err.(type) {
		case *pq.Error:
			return e.Code.Class() == "23"
		case sqlite3.Error:
			return e.Code == sqlite3.ErrConstraint
		}
		return false
	})
}

// IsUniqueViolation checks if given error is about a unique or primary key constraint.
func IsUniqueViolation(err error) bool {
	return errs.IsFunc(err, func(err error) bool {
		switch e := err.(type) {
		case *pq.Error:
			return e.Code == "23505"
		case sqlite3.Error:
			return e.ExtendedCode == sqlite3.ErrConstraintUnique ||
				e.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
		}
		return false
	})
}

// isRetryable checks if the transaction failed on a serialization conflict or a busy database.
func isRetryable(err error) bool {
	return errs.IsFunc(err, func(err error) bool {
		switch e := err.(type) {
		case *pq.Error:
			return e.Code == "40001" || e.Code == "40P01"
		case sqlite3.Error:
			return e.Code == sqlite3.ErrBusy || e.Code == sqlite3.ErrLocked
		}
		return false
	})
}
