// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"context"
	"strings"

	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/stratusvault/storage"
	"storj.io/stratusvault/storage/boltstore"
	"storj.io/stratusvault/storage/filestore"
	"storj.io/stratusvault/storage/redis"
	"storj.io/stratusvault/storage/s3store"
	"storj.io/stratusvault/storage/storelogger"
	"storj.io/stratusvault/vault"
	"storj.io/stratusvault/vault/vaultdb"
)

// Peer is a fully wired stratusvault process.
type Peer struct {
	Log *zap.Logger

	DB      vault.DB
	Objects storage.ObjectStore
	Orphans storage.Queue

	Service *vault.Service
	Reaper  *vault.Reaper

	closers []func() error
}

// NewPeer opens every backend named in config.
func NewPeer(ctx context.Context, log *zap.Logger, config Config) (_ *Peer, err error) {
	peer := &Peer{Log: log}
	defer func() {
		if err != nil {
			err = errs.Combine(err, peer.Close())
		}
	}()

	peer.DB, err = vaultdb.Open(ctx, log.Named("db"), config.Database)
	if err != nil {
		return nil, err
	}
	peer.closers = append(peer.closers, peer.DB.Close)

	peer.Objects, err = openObjectStore(ctx, log.Named("objects"), config.Objects, config.MinimumFreeSpace)
	if err != nil {
		return nil, err
	}
	peer.closers = append(peer.closers, peer.Objects.Close)

	peer.Orphans, err = openOrphanQueue(config.OrphanQueue, peer.DB)
	if err != nil {
		return nil, err
	}
	if queue, ok := peer.Orphans.(*redis.Queue); ok {
		peer.closers = append(peer.closers, queue.Close)
	}

	peer.Service, err = vault.NewService(log.Named("vault"), peer.DB, peer.Objects, peer.Orphans, config.Vault)
	if err != nil {
		return nil, err
	}
	peer.Reaper = vault.NewReaper(log.Named("reaper"), peer.Objects, peer.Orphans, config.Reaper)
	peer.closers = append(peer.closers, peer.Reaper.Close)

	return peer, nil
}

// Close closes everything the peer opened, in reverse order.
func (peer *Peer) Close() error {
	var group errs.Group
	for i := len(peer.closers) - 1; i >= 0; i-- {
		group.Add(peer.closers[i]())
	}
	peer.closers = nil
	return group.Err()
}

// openObjectStore opens the object store at address.
func openObjectStore(ctx context.Context, log *zap.Logger, address string, minimumFreeSpace int64) (storage.ObjectStore, error) {
	var store storage.ObjectStore
	switch {
	case strings.HasPrefix(address, "bolt://"):
		bolt, err := boltstore.Open(log, boltstore.Config{
			Path:             strings.TrimPrefix(address, "bolt://"),
			MinimumFreeSpace: minimumFreeSpace,
		})
		if err != nil {
			return nil, err
		}
		store = bolt
	case strings.HasPrefix(address, "file://"):
		files, err := filestore.NewAt(strings.TrimPrefix(address, "file://"))
		if err != nil {
			return nil, err
		}
		if err := files.GarbageCollect(ctx); err != nil {
			log.Warn("removing partial files failed", zap.Error(err))
		}
		store = files
	case strings.HasPrefix(address, "s3://"):
		config, err := s3store.ParseURL(address)
		if err != nil {
			return nil, err
		}
		s3, err := s3store.Open(log, config)
		if err != nil {
			return nil, err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, errs.Combine(err, s3.Close())
		}
		store = s3
	default:
		return nil, Error.New("unsupported object store address %q", address)
	}
	return storelogger.New(log, store), nil
}

// openOrphanQueue opens the queue at address, using the database table when address is empty.
func openOrphanQueue(address string, db vault.DB) (storage.Queue, error) {
	switch {
	case address == "":
		return db.OrphanQueue(), nil
	case strings.HasPrefix(address, "redis://"):
		queue, err := redis.NewQueueFrom(address)
		if err != nil {
			return nil, err
		}
		return queue, nil
	default:
		return nil, Error.New("unsupported orphan queue address %q", address)
	}
}
