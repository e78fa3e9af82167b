// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vaultdb

import (
	"context"
	"database/sql"
	"time"

	"storj.io/stratusvault/storage"
)

// ensures that orphanQueue implements storage.Queue.
var _ storage.Queue = (*orphanQueue)(nil)

// orphanQueue keeps storage keys awaiting deletion next to the metadata.
type orphanQueue struct {
	db *vaultDB
}

// Enqueue adds key to the queue. Queueing an already queued key is a no-op.
func (queue *orphanQueue) Enqueue(ctx context.Context, key string) (err error) {
	defer mon.Task()(&ctx)(&err)
	if err := storage.CheckKey(key); err != nil {
		return err
	}

	_, err = queue.db.ExecContext(ctx, queue.db.Rebind(`
		INSERT INTO orphaned_objects ( storage_key, queued_at ) VALUES ( ?, ? )
		ON CONFLICT ( storage_key ) DO NOTHING`),
		key, time.Now().UTC())
	return Error.Wrap(err)
}

// Peek returns the oldest key without removing it.
func (queue *orphanQueue) Peek(ctx context.Context) (_ string, err error) {
	defer mon.Task()(&ctx)(&err)

	var key string
	err = queue.db.QueryRowContext(ctx, `
		SELECT storage_key FROM orphaned_objects ORDER BY id LIMIT 1`,
	).Scan(&key)
	if err == sql.ErrNoRows {
		return "", storage.ErrEmptyQueue.New("")
	}
	if err != nil {
		return "", Error.Wrap(err)
	}
	return key, nil
}

// Ack removes key from the queue.
func (queue *orphanQueue) Ack(ctx context.Context, key string) (err error) {
	defer mon.Task()(&ctx)(&err)
	if err := storage.CheckKey(key); err != nil {
		return err
	}

	_, err = queue.db.ExecContext(ctx, queue.db.Rebind(`
		DELETE FROM orphaned_objects WHERE storage_key = ?`), key)
	return Error.Wrap(err)
}
