// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vault

import (
	"io"
	"time"
)

// Document is the metadata of one stored file.
type Document struct {
	ID           int64
	Name         string
	StorageKey   string
	Codec        string
	OriginalSize int64
	StoredSize   int64
	// ContentType is empty when the uploader did not supply one.
	ContentType string
	OwnerID     int64

	CreatedAt time.Time
}

// NewDocument holds the fields needed to insert a document.
type NewDocument struct {
	Name         string
	StorageKey   string
	Codec        string
	OriginalSize int64
	StoredSize   int64
	ContentType  string
	OwnerID      int64
}

// UploadRequest describes a file handed to Upload.
type UploadRequest struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// DocumentSummary is the caller facing view of a document.
type DocumentSummary struct {
	ID           int64
	Name         string
	OriginalSize int64
	StoredSize   int64
	ContentType  string
	CreatedAt    time.Time
	// Owned is true when the caller owns the document rather than holding a grant.
	Owned bool
}

// File is a downloaded document.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func summarize(document *Document, owned bool) DocumentSummary {
	return DocumentSummary{
		ID:           document.ID,
		Name:         document.Name,
		OriginalSize: document.OriginalSize,
		StoredSize:   document.StoredSize,
		ContentType:  document.ContentType,
		CreatedAt:    document.CreatedAt,
		Owned:        owned,
	}
}
