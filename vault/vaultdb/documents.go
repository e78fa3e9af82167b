// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vaultdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/zeebo/errs"

	"storj.io/stratusvault/internal/dbutil"
	"storj.io/stratusvault/vault"
)

// ensures that documents implements vault.Documents.
var _ vault.Documents = (*documents)(nil)

// documents exposes methods to manage Document table in database.
type documents struct {
	db *vaultDB
}

const documentColumns = `d.id, d.name, d.storage_key, d.codec, d.original_size, d.stored_size,
	d.content_type, d.owner_id, d.created_at`

// Insert creates the document row and returns it with its assigned id.
func (documents *documents) Insert(ctx context.Context, document vault.NewDocument) (_ *vault.Document, err error) {
	defer mon.Task()(&ctx)(&err)

	createdAt := time.Now().UTC()
	contentType := sql.NullString{String: document.ContentType, Valid: document.ContentType != ""}

	var id int64
	err = documents.db.QueryRowContext(ctx, documents.db.Rebind(`
		INSERT INTO documents (
			name, storage_key, codec, original_size, stored_size,
			content_type, owner_id, created_at
		) VALUES ( ?, ?, ?, ?, ?, ?, ?, ? )
		RETURNING id`),
		document.Name, document.StorageKey, document.Codec, document.OriginalSize, document.StoredSize,
		contentType, document.OwnerID, createdAt,
	).Scan(&id)
	if dbutil.IsUniqueViolation(err) {
		return nil, vault.ErrConflict.New("storage key already in use")
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}

	return &vault.Document{
		ID:           id,
		Name:         document.Name,
		StorageKey:   document.StorageKey,
		Codec:        document.Codec,
		OriginalSize: document.OriginalSize,
		StoredSize:   document.StoredSize,
		ContentType:  document.ContentType,
		OwnerID:      document.OwnerID,
		CreatedAt:    createdAt,
	}, nil
}

// Get returns the document with the given id.
func (documents *documents) Get(ctx context.Context, id int64) (_ *vault.Document, err error) {
	defer mon.Task()(&ctx)(&err)

	row := documents.db.QueryRowContext(ctx, documents.db.Rebind(`
		SELECT `+documentColumns+` FROM documents d WHERE d.id = ?`), id)

	document, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, vault.ErrNotFound.New("document")
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return document, nil
}

// ListVisibleTo returns documents owned by or granted to userID ordered by id.
func (documents *documents) ListVisibleTo(ctx context.Context, userID int64) (_ []vault.Document, err error) {
	defer mon.Task()(&ctx)(&err)

	rows, err := documents.db.QueryContext(ctx, documents.db.Rebind(`
		SELECT `+documentColumns+`
		FROM documents d
		WHERE d.owner_id = ?
			OR EXISTS (
				SELECT 1 FROM grants g
				WHERE g.document_id = d.id AND g.grantee_id = ?
			)
		ORDER BY d.id`), userID, userID)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(rows.Close())) }()

	list := []vault.Document{}
	for rows.Next() {
		document, err := scanDocument(rows)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		list = append(list, *document)
	}
	return list, Error.Wrap(rows.Err())
}

// Delete removes the document owned by ownerID together with its grants.
func (documents *documents) Delete(ctx context.Context, id, ownerID int64) (err error) {
	defer mon.Task()(&ctx)(&err)

	return dbutil.WithTx(ctx, documents.db.DB, func(ctx context.Context, tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, documents.db.Rebind(`
			DELETE FROM documents WHERE id = ? AND owner_id = ?`), id, ownerID)
		if err != nil {
			return Error.Wrap(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return Error.Wrap(err)
		}
		if affected == 0 {
			return vault.ErrNotFound.New("document")
		}

		// the foreign key cascades as well, this keeps engines without it consistent
		_, err = tx.ExecContext(ctx, documents.db.Rebind(`
			DELETE FROM grants WHERE document_id = ?`), id)
		return Error.Wrap(err)
	})
}

func scanDocument(row scanner) (*vault.Document, error) {
	document := &vault.Document{}
	var contentType sql.NullString
	err := row.Scan(
		&document.ID, &document.Name, &document.StorageKey, &document.Codec,
		&document.OriginalSize, &document.StoredSize,
		&contentType, &document.OwnerID, &document.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	document.ContentType = contentType.String
	return document, nil
}
