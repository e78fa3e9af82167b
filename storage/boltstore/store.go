// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package boltstore

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	humanize "github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/disk"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"storj.io/stratusvault/storage"
)

var (
	mon = monkit.Package()

	// Error is the default boltstore errs class
	Error = errs.Class("boltstore")
)

var (
	defaultTimeout = 1 * time.Second

	objectBucket = []byte("objects")
	typeBucket   = []byte("content_types")
)

const (
	// fileMode sets permissions so owner can read and write
	fileMode = 0600
)

// Config configures a bolt backed object store.
type Config struct {
	Path             string
	MinimumFreeSpace int64
}

// Store is an ObjectStore backed by a single bolt database file.
//
// Every object has an entry in the content type bucket, which is
// the authority on whether the object exists.
type Store struct {
	log  *zap.Logger
	db   *bolt.DB
	Path string
}

var _ storage.ObjectStore = (*Store)(nil)

// Open opens or creates the bolt database at config.Path.
func Open(log *zap.Logger, config Config) (*Store, error) {
	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, Error.Wrap(err)
	}
	if err := checkFreeSpace(log, dir, config.MinimumFreeSpace); err != nil {
		return nil, err
	}

	db, err := bolt.Open(config.Path, fileMode, &bolt.Options{Timeout: defaultTimeout})
	if err != nil {
		return nil, Error.Wrap(err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(objectBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(typeBucket)
		return err
	})
	if err != nil {
		return nil, Error.Wrap(errs.Combine(err, db.Close()))
	}

	return &Store{
		log:  log,
		db:   db,
		Path: config.Path,
	}, nil
}

func checkFreeSpace(log *zap.Logger, dir string, minimum int64) error {
	if minimum <= 0 {
		return nil
	}
	usage, err := disk.Usage(dir)
	if err != nil {
		return Error.Wrap(err)
	}
	if usage.Free < uint64(minimum) {
		return Error.New("not enough free space in %q: %s available, %s required",
			dir, humanize.Bytes(usage.Free), humanize.Bytes(uint64(minimum)))
	}
	log.Debug("free space", zap.String("dir", dir), zap.String("available", humanize.Bytes(usage.Free)))
	return nil
}

// Put stores data under key.
func (store *Store) Put(ctx context.Context, key string, data []byte, contentType string) (err error) {
	defer mon.Task()(&ctx)(&err)
	if err := storage.CheckKey(key); err != nil {
		return err
	}

	// an empty value would be indistinguishable from a missing one
	if contentType == "" {
		contentType = storage.DefaultContentType
	}

	err = store.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(objectBucket).Put([]byte(key), data); err != nil {
			return err
		}
		return tx.Bucket(typeBucket).Put([]byte(key), []byte(contentType))
	})
	return storage.ErrUnavailable.Wrap(err)
}

// Get returns the data stored under key.
func (store *Store) Get(ctx context.Context, key string) (_ []byte, err error) {
	defer mon.Task()(&ctx)(&err)
	if err := storage.CheckKey(key); err != nil {
		return nil, err
	}

	var data []byte
	err = store.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(typeBucket).Get([]byte(key)) == nil {
			return storage.ErrObjectNotFound.New("%q", key)
		}
		// bolt values are only valid inside the transaction
		data = append([]byte{}, tx.Bucket(objectBucket).Get([]byte(key))...)
		return nil
	})
	if storage.ErrObjectNotFound.Has(err) {
		return nil, err
	}
	if err != nil {
		return nil, storage.ErrUnavailable.Wrap(err)
	}
	return data, nil
}

// ContentType returns the content type the object was stored with.
func (store *Store) ContentType(ctx context.Context, key string) (_ string, err error) {
	defer mon.Task()(&ctx)(&err)

	var contentType string
	err = store.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(typeBucket).Get([]byte(key))
		if value == nil {
			return storage.ErrObjectNotFound.New("%q", key)
		}
		contentType = string(value)
		return nil
	})
	return contentType, err
}

// Delete removes the object stored under key.
func (store *Store) Delete(ctx context.Context, key string) (err error) {
	defer mon.Task()(&ctx)(&err)
	if err := storage.CheckKey(key); err != nil {
		return err
	}

	err = store.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(objectBucket).Delete([]byte(key)); err != nil {
			return err
		}
		return tx.Bucket(typeBucket).Delete([]byte(key))
	})
	return storage.ErrUnavailable.Wrap(err)
}

// Close closes the bolt database.
func (store *Store) Close() error {
	return Error.Wrap(store.db.Close())
}
