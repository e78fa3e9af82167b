// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package s3store implements storage.ObjectStore on top of any S3 compatible service.
package s3store

import (
	"bytes"
	"context"
	"io/ioutil"
	"net/url"
	"strconv"
	"strings"

	minio "github.com/minio/minio-go"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"storj.io/stratusvault/storage"
)

var (
	mon = monkit.Package()

	// Error is the default s3store errs class
	Error = errs.Class("s3store")
)

// Config configures the connection to an S3 compatible service.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Secure    bool
}

// ParseURL parses addresses of the form
// s3://access:secret@host:port/bucket?secure=true&region=us-east-1
func ParseURL(address string) (Config, error) {
	u, err := url.Parse(address)
	if err != nil {
		return Config{}, Error.Wrap(err)
	}
	if u.Scheme != "s3" {
		return Config{}, Error.New("not an s3:// formatted address")
	}

	config := Config{
		Endpoint: u.Host,
		Bucket:   strings.Trim(u.Path, "/"),
		Region:   u.Query().Get("region"),
		Secure:   true,
	}
	if config.Endpoint == "" || config.Bucket == "" {
		return Config{}, Error.New("address must contain both host and bucket")
	}
	if u.User != nil {
		config.AccessKey = u.User.Username()
		config.SecretKey, _ = u.User.Password()
	}
	if secure := u.Query().Get("secure"); secure != "" {
		config.Secure, err = strconv.ParseBool(secure)
		if err != nil {
			return Config{}, Error.New("invalid secure flag %q", secure)
		}
	}
	return config, nil
}

// Store keeps every object in a single bucket.
type Store struct {
	log    *zap.Logger
	client *minio.Client
	bucket string
	region string
}

var _ storage.ObjectStore = (*Store)(nil)

// Open creates a client for config. It does not contact the service.
func Open(log *zap.Logger, config Config) (*Store, error) {
	client, err := minio.New(config.Endpoint, config.AccessKey, config.SecretKey, config.Secure)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &Store{
		log:    log,
		client: client,
		bucket: config.Bucket,
		region: config.Region,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (store *Store) EnsureBucket(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	exists, err := store.client.BucketExists(store.bucket)
	if err != nil {
		return classify(err)
	}
	if exists {
		return nil
	}
	store.log.Info("creating bucket", zap.String("bucket", store.bucket))
	return classify(store.client.MakeBucket(store.bucket, store.region))
}

// Put uploads data under key.
func (store *Store) Put(ctx context.Context, key string, data []byte, contentType string) (err error) {
	defer mon.Task()(&ctx)(&err)
	if err := storage.CheckKey(key); err != nil {
		return err
	}
	if contentType == "" {
		contentType = storage.DefaultContentType
	}

	_, err = store.client.PutObjectWithContext(ctx, store.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	return classify(err)
}

// Get downloads the object stored under key.
func (store *Store) Get(ctx context.Context, key string) (_ []byte, err error) {
	defer mon.Task()(&ctx)(&err)
	if err := storage.CheckKey(key); err != nil {
		return nil, err
	}

	object, err := store.client.GetObjectWithContext(ctx, store.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classify(err)
	}
	defer func() { err = errs.Combine(err, object.Close()) }()

	// the request is only sent on the first read
	data, err := ioutil.ReadAll(object)
	if err != nil {
		return nil, classify(err)
	}
	return data, nil
}

// Delete removes the object stored under key.
func (store *Store) Delete(ctx context.Context, key string) (err error) {
	defer mon.Task()(&ctx)(&err)
	if err := storage.CheckKey(key); err != nil {
		return err
	}

	err = classify(store.client.RemoveObject(store.bucket, key))
	if storage.ErrObjectNotFound.Has(err) {
		return nil
	}
	return err
}

// Close implements storage.ObjectStore.
func (store *Store) Close() error { return nil }

// classify maps S3 error responses onto storage error classes.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey":
		return storage.ErrObjectNotFound.Wrap(err)
	default:
		return storage.ErrUnavailable.Wrap(err)
	}
}
