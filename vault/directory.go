// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vault

import (
	"context"

	"github.com/google/uuid"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/stratusvault/pkg/codec"
	"storj.io/stratusvault/storage"
)

// Directory keeps document metadata consistent with the object store.
type Directory struct {
	log       *zap.Logger
	documents Documents
	registry  *Registry
	ledger    *Ledger
	objects   storage.ObjectStore
	orphans   storage.Queue
}

// NewDirectory creates a new directory.
func NewDirectory(log *zap.Logger, documents Documents, registry *Registry, ledger *Ledger, objects storage.ObjectStore, orphans storage.Queue) *Directory {
	return &Directory{
		log:       log,
		documents: documents,
		registry:  registry,
		ledger:    ledger,
		objects:   objects,
		orphans:   orphans,
	}
}

// NewStorageKey returns a fresh random key for an object written with c.
func (directory *Directory) NewStorageKey(c codec.Codec) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", ErrInternal.Wrap(err)
	}
	return id.String() + c.Extension(), nil
}

// Create inserts the metadata for an already stored object.
func (directory *Directory) Create(ctx context.Context, document NewDocument) (_ *Document, err error) {
	defer mon.Task()(&ctx)(&err)

	if document.Name == "" {
		return nil, ErrBadRequest.New("file name is required")
	}
	if document.StorageKey == "" {
		return nil, ErrInternal.New("storage key is required")
	}
	return directory.documents.Insert(ctx, document)
}

// FindByID returns the document with id or ErrNotFound.
func (directory *Directory) FindByID(ctx context.Context, id int64) (_ *Document, err error) {
	defer mon.Task()(&ctx)(&err)
	return directory.documents.Get(ctx, id)
}

// ListVisibleTo returns the documents subject owns or holds a grant on, ordered by id.
func (directory *Directory) ListVisibleTo(ctx context.Context, subject string) (_ []Document, err error) {
	defer mon.Task()(&ctx)(&err)

	user, err := directory.registry.ResolveBySubject(ctx, subject)
	if ErrNotFound.Has(err) {
		return []Document{}, nil
	}
	if err != nil {
		return nil, err
	}
	return directory.documents.ListVisibleTo(ctx, user.ID)
}

// DeleteOwned deletes the document and its grants, then its object.
// Only the owner may delete; grantees get ErrForbidden.
func (directory *Directory) DeleteOwned(ctx context.Context, id int64, subject string) (err error) {
	defer mon.Task()(&ctx)(&err)

	document, err := directory.documents.Get(ctx, id)
	if err != nil {
		return err
	}

	owner, err := directory.ledger.IsOwner(ctx, document, subject)
	if err != nil {
		return err
	}
	if !owner {
		return ErrForbidden.New("only the owner can delete a document")
	}

	if err := directory.documents.Delete(ctx, document.ID, document.OwnerID); err != nil {
		return err
	}

	return directory.RemoveObject(ctx, document.StorageKey)
}

// RemoveObject deletes the object stored under key. When the object store
// fails the key is queued for the reaper; ErrPartialDelete is returned
// only when queueing fails as well.
func (directory *Directory) RemoveObject(ctx context.Context, key string) (err error) {
	defer mon.Task()(&ctx)(&err)

	deleteErr := directory.objects.Delete(ctx, key)
	if deleteErr == nil {
		return nil
	}

	directory.log.Warn("object delete failed, queueing for retry",
		zap.String("key", key), zap.Error(deleteErr))

	if queueErr := directory.orphans.Enqueue(ctx, key); queueErr != nil {
		err = errs.Combine(deleteErr, queueErr)
		directory.log.Error("object orphaned", zap.String("key", key), zap.Error(err))
		mon.Meter("partial_deletes").Mark(1)
		return ErrPartialDelete.Wrap(err)
	}

	mon.Meter("orphans_queued").Mark(1)
	return nil
}
