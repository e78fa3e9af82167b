// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package testqueue

import (
	"context"
	"sync"

	"storj.io/stratusvault/storage"
)

// Queue is an in-memory queue implementation for testing.
type Queue struct {
	mu       sync.Mutex
	keys     []string
	failures int
	ackFails int
}

// New creates a new in-memory queue.
func New() *Queue { return &Queue{} }

var _ storage.Queue = (*Queue)(nil)

// FailNextEnqueue makes the next n Enqueue calls fail.
func (q *Queue) FailNextEnqueue(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failures = n
}

// FailNextAck makes the next n Ack calls fail.
func (q *Queue) FailNextAck(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ackFails = n
}

// Enqueue adds key to the end of the queue.
func (q *Queue) Enqueue(ctx context.Context, key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failures > 0 {
		q.failures--
		return storage.ErrUnavailable.New("injected failure")
	}
	q.keys = append(q.keys, key)
	return nil
}

// Peek returns the oldest key without removing it.
func (q *Queue) Peek(ctx context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.keys) == 0 {
		return "", storage.ErrEmptyQueue.New("")
	}
	return q.keys[0], nil
}

// Ack removes the oldest occurrence of key.
func (q *Queue) Ack(ctx context.Context, key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ackFails > 0 {
		q.ackFails--
		return storage.ErrUnavailable.New("injected failure")
	}
	for i, queued := range q.keys {
		if queued == key {
			q.keys = append(q.keys[:i:i], q.keys[i+1:]...)
			return nil
		}
	}
	return nil
}

// Keys returns the queued keys in order.
func (q *Queue) Keys() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string{}, q.keys...)
}
