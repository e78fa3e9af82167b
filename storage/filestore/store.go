// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package filestore implements storage.ObjectStore as files in a local directory.
package filestore

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/errs"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"storj.io/stratusvault/storage"
)

var (
	mon = monkit.Package()

	// Error is the default filestore error class
	Error = errs.Class("filestore error")
)

const (
	dirPermission    = 0700
	objectPermission = 0600
)

// Store keeps every object in its own file, sharded into
// subdirectories by the first two characters of the key.
//
// The content type is not persisted; document metadata carries it.
type Store struct {
	dir string
}

var _ storage.ObjectStore = (*Store)(nil)

// NewAt creates a new file store in the specified directory
func NewAt(path string) (*Store, error) {
	store := &Store{dir: path}
	err := errs.Combine(
		os.MkdirAll(store.dir, dirPermission),
		os.MkdirAll(store.tempdir(), dirPermission),
	)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return store, nil
}

func (store *Store) tempdir() string { return filepath.Join(store.dir, "tmp") }

// keyToPath converts key to the path of its file.
func (store *Store) keyToPath(key string) (string, error) {
	if err := storage.CheckKey(key); err != nil {
		return "", err
	}
	if strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", Error.New("invalid key %q", key)
	}
	prefix := "_"
	if len(key) >= 2 {
		prefix = key[:2]
	}
	return filepath.Join(store.dir, prefix, key), nil
}

// Put writes data to a temporary file and moves it in place.
func (store *Store) Put(ctx context.Context, key string, data []byte, contentType string) (err error) {
	defer mon.Task()(&ctx)(&err)

	path, err := store.keyToPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPermission); err != nil {
		return storage.ErrUnavailable.Wrap(err)
	}

	file, err := ioutil.TempFile(store.tempdir(), "object-*.partial")
	if err != nil {
		return storage.ErrUnavailable.Wrap(err)
	}
	defer func() {
		if err != nil {
			err = errs.Combine(err, os.Remove(file.Name()))
		}
	}()

	_, writeErr := file.Write(data)
	syncErr := file.Sync()
	closeErr := file.Close()
	if err := errs.Combine(writeErr, syncErr, closeErr); err != nil {
		return storage.ErrUnavailable.Wrap(err)
	}
	if err := os.Chmod(file.Name(), objectPermission); err != nil {
		return storage.ErrUnavailable.Wrap(err)
	}
	return storage.ErrUnavailable.Wrap(os.Rename(file.Name(), path))
}

// Get reads the object stored under key.
func (store *Store) Get(ctx context.Context, key string) (_ []byte, err error) {
	defer mon.Task()(&ctx)(&err)

	path, err := store.keyToPath(key)
	if err != nil {
		return nil, err
	}
	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, storage.ErrObjectNotFound.New("%q", key)
	}
	if err != nil {
		return nil, storage.ErrUnavailable.Wrap(err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// Delete removes the file of key.
func (store *Store) Delete(ctx context.Context, key string) (err error) {
	defer mon.Task()(&ctx)(&err)

	path, err := store.keyToPath(key)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return storage.ErrUnavailable.Wrap(err)
}

// GarbageCollect removes temporary files left behind by interrupted writes.
func (store *Store) GarbageCollect(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	files, err := ioutil.ReadDir(store.tempdir())
	if err != nil {
		return Error.Wrap(err)
	}
	var group errs.Group
	for _, file := range files {
		err := os.Remove(filepath.Join(store.tempdir(), file.Name()))
		if err != nil && !os.IsNotExist(err) {
			group.Add(err)
		}
	}
	return Error.Wrap(group.Err())
}

// Close does nothing; files are closed after every operation.
func (store *Store) Close() error { return nil }
