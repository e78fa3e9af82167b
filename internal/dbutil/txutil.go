// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package dbutil

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zeebo/errs"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"
)

var mon = monkit.Package()

const (
	maxRetries   = 10
	maxRetryTime = time.Minute
)

// WithTx starts a transaction on db and calls fn with it. If fn returns an
// error the transaction is rolled back, otherwise it is committed. Transactions
// failing on serialization conflicts or a busy database are restarted, so fn
// must not have side effects outside of the database.
func WithTx(ctx context.Context, db *sql.DB, fn func(context.Context, *sql.Tx) error) (err error) {
	defer mon.Task()(&ctx)(&err)

	start := time.Now()
	for i := 0; ; i++ {
		err, rollbackErr := withTxOnce(ctx, db, fn)
		if err != nil && isRetryable(err) && i < maxRetries && time.Since(start) < maxRetryTime {
			mon.Event(fmt.Sprintf("transaction_retry_%d", i+1))
			continue
		}
		mon.IntVal("transaction_retries").Observe(int64(i))
		if rollbackErr != nil {
			return errs.Combine(err, rollbackErr)
		}
		return err
	}
}

// withTxOnce creates a transaction and ensures that it is eventually released.
func withTxOnce(ctx context.Context, db *sql.DB, fn func(context.Context, *sql.Tx) error) (err, rollbackErr error) {
	defer mon.Task()(&ctx)(&err)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err, nil
	}
	defer func() {
		if err == nil {
			err = tx.Commit()
		} else {
			rollbackErr = tx.Rollback()
		}
	}()

	return fn(ctx, tx), nil
}
