// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package redis

import (
	"context"
	"net/url"
	"strconv"

	"github.com/go-redis/redis"
	"github.com/zeebo/errs"

	"storj.io/stratusvault/storage"
)

var (
	// Error is a redis error
	Error = errs.Class("redis error")
)

// DefaultQueueKey is the redis list holding queued keys.
const DefaultQueueKey = "stratusvault:orphans"

// Queue is a storage.Queue backed by a redis list.
type Queue struct {
	db  *redis.Client
	key string
}

var _ storage.Queue = (*Queue)(nil)

// NewQueue returns a configured Queue instance, verifying a successful connection to redis
func NewQueue(address, password string, db int, key string) (*Queue, error) {
	if key == "" {
		key = DefaultQueueKey
	}
	queue := &Queue{
		db: redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       db,
		}),
		key: key,
	}

	// ping here to verify we are able to connect to redis with the initialized client.
	if err := queue.db.Ping().Err(); err != nil {
		return nil, Error.New("ping failed: %v", errs.Combine(err, queue.db.Close()))
	}

	return queue, nil
}

// NewQueueFrom returns a configured Queue instance from a redis address,
// for example redis://:password@localhost:6379?db=1&key=orphans
func NewQueueFrom(address string) (*Queue, error) {
	redisurl, err := url.Parse(address)
	if err != nil {
		return nil, err
	}

	if redisurl.Scheme != "redis" {
		return nil, Error.New("not a redis:// formatted address")
	}

	q := redisurl.Query()

	db := 0
	if value := q.Get("db"); value != "" {
		db, err = strconv.Atoi(value)
		if err != nil {
			return nil, Error.New("invalid db %q: %v", value, err)
		}
	}

	password, _ := redisurl.User.Password()
	return NewQueue(redisurl.Host, password, db, q.Get("key"))
}

// Close closes a redis client
func (queue *Queue) Close() error {
	return queue.db.Close()
}

// Enqueue adds a key to the tail of the list.
func (queue *Queue) Enqueue(ctx context.Context, key string) error {
	err := queue.db.WithContext(ctx).LPush(queue.key, key).Err()
	if err != nil {
		return Error.New("enqueue error: %v", err)
	}
	return nil
}

// Peek returns the key at the head of the list without removing it.
func (queue *Queue) Peek(ctx context.Context) (string, error) {
	out, err := queue.db.WithContext(ctx).LIndex(queue.key, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return "", storage.ErrEmptyQueue.New("")
		}
		return "", Error.New("peek error: %v", err)
	}
	return out, nil
}

// Ack removes the oldest occurrence of key from the list.
func (queue *Queue) Ack(ctx context.Context, key string) error {
	// negative count scans from the tail, where the oldest entries are
	err := queue.db.WithContext(ctx).LRem(queue.key, -1, key).Err()
	if err != nil {
		return Error.New("ack error: %v", err)
	}
	return nil
}

// Len returns the number of queued keys.
func (queue *Queue) Len(ctx context.Context) (int64, error) {
	n, err := queue.db.WithContext(ctx).LLen(queue.key).Result()
	return n, Error.Wrap(err)
}
