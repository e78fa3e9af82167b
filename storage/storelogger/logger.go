// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package storelogger

import (
	"context"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"storj.io/stratusvault/storage"
)

var mon = monkit.Package()

var id int64

// Logger implements a zap.Logger for storage.ObjectStore
type Logger struct {
	log   *zap.Logger
	store storage.ObjectStore
}

// New creates a new Logger with log and store
func New(log *zap.Logger, store storage.ObjectStore) *Logger {
	loggerid := atomic.AddInt64(&id, 1)
	name := strconv.Itoa(int(loggerid))
	return &Logger{log.Named(name), store}
}

var _ storage.ObjectStore = (*Logger)(nil)

// Put adds an object to the store
func (store *Logger) Put(ctx context.Context, key string, data []byte, contentType string) (err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("Put", zap.String("key", key), zap.Int("length", len(data)), zap.String("content type", contentType))
	err = store.store.Put(ctx, key, data, contentType)
	if err != nil {
		store.log.Debug("Put failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Get gets an object from the store
func (store *Logger) Get(ctx context.Context, key string) (_ []byte, err error) {
	defer mon.Task()(&ctx)(&err)
	data, err := store.store.Get(ctx, key)
	store.log.Debug("Get", zap.String("key", key), zap.Int("length", len(data)), zap.Error(err))
	return data, err
}

// Delete deletes an object from the store
func (store *Logger) Delete(ctx context.Context, key string) (err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("Delete", zap.String("key", key))
	return store.store.Delete(ctx, key)
}

// Close closes the store
func (store *Logger) Close() error {
	store.log.Debug("Close")
	return store.store.Close()
}
