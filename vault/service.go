// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vault

import (
	"context"
	"io"
	"io/ioutil"
	"strings"

	humanize "github.com/dustin/go-humanize"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"storj.io/stratusvault/pkg/codec"
	"storj.io/stratusvault/storage"
)

var (
	mon = monkit.Package()
)

// Service is handling document upload, sharing and retrieval on behalf of callers.
type Service struct {
	log    *zap.Logger
	config Config
	codec  codec.Codec

	registry  *Registry
	ledger    *Ledger
	directory *Directory
	objects   storage.ObjectStore
}

// NewService returns new instance of Service
func NewService(log *zap.Logger, db DB, objects storage.ObjectStore, orphans storage.Queue, config Config) (*Service, error) {
	if log == nil {
		return nil, errs.New("log can't be nil")
	}
	if db == nil {
		return nil, errs.New("db can't be nil")
	}
	if objects == nil {
		return nil, errs.New("object store can't be nil")
	}
	if orphans == nil {
		orphans = db.OrphanQueue()
	}

	if config.MaxUploadSize <= 0 {
		config.MaxUploadSize = DefaultMaxUploadSize
	}
	if config.Codec == "" {
		config.Codec = codec.Default
	}
	c, err := codec.ByName(config.Codec)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry(log.Named("registry"), db.Users())
	ledger := NewLedger(registry, db.Grants())
	directory := NewDirectory(log.Named("directory"), db.Documents(), registry, ledger, objects, orphans)

	return &Service{
		log:       log,
		config:    config,
		codec:     c,
		registry:  registry,
		ledger:    ledger,
		directory: directory,
		objects:   objects,
	}, nil
}

// documentNotFound is the single answer for absent and unauthorized documents.
func documentNotFound() error {
	return ErrNotFound.New("document not found")
}

// Upload stores a new document owned by caller.
func (s *Service) Upload(ctx context.Context, caller Caller, request UploadRequest) (_ *DocumentSummary, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := caller.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(request.Name)
	if name == "" {
		return nil, ErrBadRequest.New("file name is required")
	}
	if request.Data == nil {
		return nil, ErrBadRequest.New("file content is required")
	}

	owner, err := s.SignIn(ctx, caller)
	if err != nil {
		return nil, err
	}

	data, err := readBounded(request.Data, s.config.MaxUploadSize)
	if err != nil {
		if ErrBadRequest.Has(err) {
			return nil, err
		}
		s.log.Error("reading upload", zap.Error(err))
		return nil, ErrUploadFailed.Wrap(err)
	}

	compressed, err := s.codec.Compress(data)
	if err != nil {
		s.log.Error("compressing upload", zap.Error(err))
		return nil, ErrUploadFailed.Wrap(err)
	}

	key, err := s.directory.NewStorageKey(s.codec)
	if err != nil {
		return nil, ErrUploadFailed.Wrap(err)
	}

	if err := s.objects.Put(ctx, key, compressed, request.ContentType); err != nil {
		s.log.Error("storing object", zap.String("key", key), zap.Error(err))
		return nil, ErrUploadFailed.Wrap(err)
	}

	document, err := s.directory.Create(ctx, NewDocument{
		Name:         name,
		StorageKey:   key,
		Codec:        s.codec.Name(),
		OriginalSize: int64(len(data)),
		StoredSize:   int64(len(compressed)),
		ContentType:  request.ContentType,
		OwnerID:      owner.ID,
	})
	if err != nil {
		s.log.Error("inserting document metadata", zap.String("key", key), zap.Error(err))
		// no metadata may point at the object, so it has to go
		err = errs.Combine(err, s.directory.RemoveObject(ctx, key))
		return nil, ErrUploadFailed.Wrap(err)
	}

	mon.Meter("uploads").Mark(1)
	mon.IntVal("upload_original_size").Observe(document.OriginalSize)
	mon.IntVal("upload_stored_size").Observe(document.StoredSize)

	s.log.Debug("document uploaded",
		zap.Int64("document", document.ID),
		zap.String("size", humanize.Bytes(uint64(document.OriginalSize))),
		zap.String("stored", humanize.Bytes(uint64(document.StoredSize))))

	summary := summarize(document, true)
	return &summary, nil
}

// SignIn registers caller on first sight and returns the user it maps to.
// Only registered users can receive shares.
func (s *Service) SignIn(ctx context.Context, caller Caller) (_ *User, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := caller.Validate(); err != nil {
		return nil, err
	}

	user, err := s.registry.ResolveOrCreate(ctx, caller.Subject, caller.Email)
	if err != nil {
		if ErrBadRequest.Has(err) {
			return nil, err
		}
		return nil, s.internal("signing in", err)
	}
	return user, nil
}

// List returns every document caller owns or has been granted, ordered by id.
// A caller carrying an email is signed in first.
func (s *Service) List(ctx context.Context, caller Caller) (_ []DocumentSummary, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := caller.Validate(); err != nil {
		return nil, err
	}

	var user *User
	if caller.Email != "" {
		user, err = s.SignIn(ctx, caller)
		if err != nil {
			return nil, err
		}
	}

	documents, err := s.directory.ListVisibleTo(ctx, caller.Subject)
	if err != nil {
		return nil, s.internal("listing documents", err)
	}

	summaries := make([]DocumentSummary, 0, len(documents))
	if len(documents) == 0 {
		return summaries, nil
	}

	if user == nil {
		user, err = s.registry.ResolveBySubject(ctx, caller.Subject)
		if err != nil {
			return nil, s.internal("resolving caller", err)
		}
	}
	for i := range documents {
		summaries = append(summaries, summarize(&documents[i], documents[i].OwnerID == user.ID))
	}
	return summaries, nil
}

// Download returns the original content of a document caller may read.
//
// Absent documents and documents the caller may not read both fail with
// the same ErrNotFound.
func (s *Service) Download(ctx context.Context, caller Caller, id int64) (_ *File, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := caller.Validate(); err != nil {
		return nil, err
	}

	document, err := s.directory.FindByID(ctx, id)
	if ErrNotFound.Has(err) {
		return nil, documentNotFound()
	}
	if err != nil {
		return nil, s.internal("finding document", err)
	}

	authorized, err := s.ledger.IsAuthorized(ctx, document, caller.Subject)
	if err != nil {
		return nil, s.internal("checking authorization", err)
	}
	if !authorized {
		mon.Meter("downloads_denied").Mark(1)
		return nil, documentNotFound()
	}

	compressed, err := s.objects.Get(ctx, document.StorageKey)
	if err != nil {
		if storage.ErrObjectNotFound.Has(err) {
			s.log.Error("document metadata points at a missing object",
				zap.Int64("document", document.ID), zap.String("key", document.StorageKey))
		}
		return nil, s.internal("fetching object", err)
	}

	c, err := codec.ByName(document.Codec)
	if err != nil {
		return nil, s.internal("selecting codec", err)
	}

	data, err := c.Decompress(compressed)
	if err != nil {
		s.log.Error("stored object is corrupt",
			zap.Int64("document", document.ID), zap.String("key", document.StorageKey), zap.Error(err))
		return nil, ErrInternal.Wrap(err)
	}
	if int64(len(data)) != document.OriginalSize {
		s.log.Error("restored size does not match metadata",
			zap.Int64("document", document.ID),
			zap.Int64("expected", document.OriginalSize),
			zap.Int("actual", len(data)))
		return nil, ErrInternal.New("size mismatch")
	}

	mon.Meter("downloads").Mark(1)

	contentType := document.ContentType
	if contentType == "" {
		contentType = storage.DefaultContentType
	}
	return &File{
		Name:        document.Name,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// Share gives the user registered with recipientEmail read access to a document caller owns.
func (s *Service) Share(ctx context.Context, caller Caller, id int64, recipientEmail string) (err error) {
	defer mon.Task()(&ctx)(&err)

	if err := caller.Validate(); err != nil {
		return err
	}

	document, err := s.directory.FindByID(ctx, id)
	if ErrNotFound.Has(err) {
		return documentNotFound()
	}
	if err != nil {
		return s.internal("finding document", err)
	}

	// non-owners must not learn which emails are registered
	owner, err := s.ledger.IsOwner(ctx, document, caller.Subject)
	if err != nil {
		return s.internal("checking ownership", err)
	}
	if !owner {
		return ErrForbidden.New("only the owner can share a document")
	}

	recipient, err := s.registry.ResolveByEmail(ctx, recipientEmail)
	if err != nil {
		if ErrRecipientUnregistered.Has(err) || ErrBadRequest.Has(err) {
			return err
		}
		return s.internal("resolving recipient", err)
	}

	if recipient.ID == document.OwnerID {
		return ErrSelfShare.New("recipient owns the document")
	}

	if err := s.ledger.Grant(ctx, document, recipient); err != nil {
		// the document was deleted concurrently
		if ErrNotFound.Has(err) {
			return documentNotFound()
		}
		return s.internal("granting access", err)
	}

	mon.Meter("shares").Mark(1)
	return nil
}

// SharedWith returns the emails of the users a document caller owns is shared with.
// Callers who do not own the document get ErrNotFound.
func (s *Service) SharedWith(ctx context.Context, caller Caller, id int64) (_ []string, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := caller.Validate(); err != nil {
		return nil, err
	}

	document, err := s.directory.FindByID(ctx, id)
	if ErrNotFound.Has(err) {
		return nil, documentNotFound()
	}
	if err != nil {
		return nil, s.internal("finding document", err)
	}

	owner, err := s.ledger.IsOwner(ctx, document, caller.Subject)
	if err != nil {
		return nil, s.internal("checking ownership", err)
	}
	if !owner {
		return nil, documentNotFound()
	}

	grantees, err := s.ledger.Grantees(ctx, document)
	if err != nil {
		return nil, s.internal("listing grantees", err)
	}

	emails := make([]string, 0, len(grantees))
	for _, grantee := range grantees {
		emails = append(emails, grantee.Email)
	}
	return emails, nil
}

// Delete removes a document caller owns together with its grants and content.
func (s *Service) Delete(ctx context.Context, caller Caller, id int64) (err error) {
	defer mon.Task()(&ctx)(&err)

	if err := caller.Validate(); err != nil {
		return err
	}

	err = s.directory.DeleteOwned(ctx, id, caller.Subject)
	switch {
	case err == nil:
		mon.Meter("deletes").Mark(1)
		return nil
	case ErrNotFound.Has(err):
		return documentNotFound()
	case ErrForbidden.Has(err), ErrPartialDelete.Has(err):
		return err
	default:
		return s.internal("deleting document", err)
	}
}

// internal logs err with context and hides it behind ErrInternal.
func (s *Service) internal(action string, err error) error {
	s.log.Error(action, zap.Error(err))
	return ErrInternal.Wrap(err)
}

// readBounded reads r fully, failing with ErrBadRequest when it exceeds limit bytes.
func readBounded(r io.Reader, limit int64) ([]byte, error) {
	data, err := ioutil.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrBadRequest.New("file exceeds the %s limit", humanize.IBytes(uint64(limit)))
	}
	return data, nil
}
