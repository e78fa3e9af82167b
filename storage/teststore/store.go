// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package teststore

import (
	"context"
	"sort"
	"sync"

	"storj.io/stratusvault/storage"
)

// Op names an ObjectStore operation for fault injection.
type Op int

// ObjectStore operations
const (
	OpPut Op = iota
	OpGet
	OpDelete
)

type object struct {
	data        []byte
	contentType string
}

// Store is an in-memory object store implementation for testing.
type Store struct {
	mu       sync.Mutex
	objects  map[string]object
	failures map[Op]int

	CallCount struct {
		Put    int
		Get    int
		Delete int
		Close  int
	}
}

// New creates a new in-memory object store.
func New() *Store {
	return &Store{
		objects:  map[string]object{},
		failures: map[Op]int{},
	}
}

var _ storage.ObjectStore = (*Store)(nil)

// FailNext makes the next n calls of op fail with storage.ErrUnavailable.
func (store *Store) FailNext(op Op, n int) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.failures[op] = n
}

func (store *Store) injected(op Op) error {
	if store.failures[op] > 0 {
		store.failures[op]--
		return storage.ErrUnavailable.New("injected failure")
	}
	return nil
}

// Put stores data under key.
func (store *Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Put++

	if err := storage.CheckKey(key); err != nil {
		return err
	}
	if err := store.injected(OpPut); err != nil {
		return err
	}

	store.objects[key] = object{
		data:        append([]byte{}, data...),
		contentType: contentType,
	}
	return nil
}

// Get returns the data stored under key.
func (store *Store) Get(ctx context.Context, key string) ([]byte, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Get++

	if err := storage.CheckKey(key); err != nil {
		return nil, err
	}
	if err := store.injected(OpGet); err != nil {
		return nil, err
	}

	obj, ok := store.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound.New("%q", key)
	}
	return append([]byte{}, obj.data...), nil
}

// Delete removes the object stored under key.
func (store *Store) Delete(ctx context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Delete++

	if err := storage.CheckKey(key); err != nil {
		return err
	}
	if err := store.injected(OpDelete); err != nil {
		return err
	}

	delete(store.objects, key)
	return nil
}

// Close closes the store.
func (store *Store) Close() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Close++
	return nil
}

// ContentType returns the content type the object was stored with.
func (store *Store) ContentType(key string) (string, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	obj, ok := store.objects[key]
	return obj.contentType, ok
}

// Overwrite replaces the bytes of an object without going through Put.
func (store *Store) Overwrite(key string, data []byte) {
	store.mu.Lock()
	defer store.mu.Unlock()
	obj := store.objects[key]
	obj.data = append([]byte{}, data...)
	store.objects[key] = obj
}

// Remove drops an object without going through Delete.
func (store *Store) Remove(key string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.objects, key)
}

// Keys returns the sorted list of stored keys.
func (store *Store) Keys() []string {
	store.mu.Lock()
	defer store.mu.Unlock()
	keys := make([]string, 0, len(store.objects))
	for key := range store.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
