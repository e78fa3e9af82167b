// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package storage

import (
	"context"

	"github.com/zeebo/errs"
)

var (
	// ErrObjectNotFound is returned when there is no object stored under a key.
	ErrObjectNotFound = errs.Class("object not found")

	// ErrUnavailable is returned when the backend could not serve the request.
	ErrUnavailable = errs.Class("storage unavailable")

	// ErrEmptyKey is returned when an empty key is used in Put, Get or Delete.
	ErrEmptyKey = errs.Class("empty key")

	// ErrEmptyQueue is returned when attempting to Peek into an empty queue.
	ErrEmptyQueue = errs.Class("empty queue")
)

// DefaultContentType is used when an object is stored without a content type.
const DefaultContentType = "application/octet-stream"

// ObjectStore is an opaque key to bytes store holding document payloads.
//
// Keys are generated by the caller and never reused. Delete of a missing
// key succeeds, and Get of a missing key fails with ErrObjectNotFound.
type ObjectStore interface {
	// Put stores data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns the data stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
	// Close closes the store.
	Close() error
}

// Queue is a durable FIFO of object keys awaiting deletion.
//
// A key leaves the queue only when it is acknowledged, so a consumer that
// stops between Peek and Ack sees the same key again.
type Queue interface {
	// Enqueue adds key to the end of the queue.
	Enqueue(ctx context.Context, key string) error
	// Peek returns the oldest key without removing it, or fails with ErrEmptyQueue.
	Peek(ctx context.Context) (string, error)
	// Ack removes key from the queue. Acknowledging a key that is not queued is a no-op.
	Ack(ctx context.Context, key string) error
}

// CheckKey returns ErrEmptyKey when key is empty.
func CheckKey(key string) error {
	if key == "" {
		return ErrEmptyKey.New("")
	}
	return nil
}
