// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vaultdb

import (
	"context"
	"time"

	"github.com/zeebo/errs"

	"storj.io/stratusvault/internal/dbutil"
	"storj.io/stratusvault/vault"
)

// ensures that grants implements vault.Grants.
var _ vault.Grants = (*grants)(nil)

// grants exposes methods to manage Grant table in database.
type grants struct {
	db *vaultDB
}

// Insert creates a grant unless one already exists for the pair.
func (grants *grants) Insert(ctx context.Context, documentID, granteeID int64, level vault.PermissionLevel) (_ bool, err error) {
	defer mon.Task()(&ctx)(&err)

	if !level.Valid() {
		return false, vault.ErrBadRequest.New("unknown permission level %q", level)
	}

	result, err := grants.db.ExecContext(ctx, grants.db.Rebind(`
		INSERT INTO grants ( document_id, grantee_id, level, created_at ) VALUES ( ?, ?, ?, ? )
		ON CONFLICT ( document_id, grantee_id ) DO NOTHING`),
		documentID, granteeID, string(level), time.Now().UTC())
	switch {
	case dbutil.IsUniqueViolation(err):
		return false, nil
	case dbutil.IsConstraintError(err):
		// the document or the grantee disappeared concurrently
		return false, vault.ErrNotFound.New("document")
	case err != nil:
		return false, Error.Wrap(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, Error.Wrap(err)
	}
	return affected > 0, nil
}

// Exists checks whether granteeID holds a grant on documentID.
func (grants *grants) Exists(ctx context.Context, documentID, granteeID int64) (_ bool, err error) {
	defer mon.Task()(&ctx)(&err)

	var count int64
	err = grants.db.QueryRowContext(ctx, grants.db.Rebind(`
		SELECT COUNT(*) FROM grants WHERE document_id = ? AND grantee_id = ?`),
		documentID, granteeID,
	).Scan(&count)
	if err != nil {
		return false, Error.Wrap(err)
	}
	return count > 0, nil
}

// Grantees returns the users holding a grant on documentID ordered by grant creation.
func (grants *grants) Grantees(ctx context.Context, documentID int64) (_ []vault.User, err error) {
	defer mon.Task()(&ctx)(&err)

	rows, err := grants.db.QueryContext(ctx, grants.db.Rebind(`
		SELECT u.id, u.subject, u.email, u.created_at
		FROM grants g
			INNER JOIN users u ON u.id = g.grantee_id
		WHERE g.document_id = ?
		ORDER BY g.id`), documentID)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(rows.Close())) }()

	list := []vault.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *user)
	}
	return list, Error.Wrap(rows.Err())
}
