// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vaultdb

import (
	"context"
	"database/sql"
	"time"

	"storj.io/stratusvault/internal/dbutil"
	"storj.io/stratusvault/vault"
)

// ensures that users implements vault.Users.
var _ vault.Users = (*users)(nil)

// maxUpsertAttempts bounds how often Upsert re-reads after losing an insert race.
const maxUpsertAttempts = 3

// users exposes methods to manage User table in database.
type users struct {
	db *vaultDB
}

const userColumns = `id, subject, email, created_at`

// Upsert inserts a user for subject unless one exists and returns the stored user.
func (users *users) Upsert(ctx context.Context, subject, email string) (_ *vault.User, err error) {
	defer mon.Task()(&ctx)(&err)

	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		_, err = users.db.ExecContext(ctx, users.db.Rebind(`
			INSERT INTO users ( subject, email, created_at ) VALUES ( ?, ?, ? )
			ON CONFLICT ( subject ) DO NOTHING`),
			subject, email, time.Now().UTC())
		if err != nil && !dbutil.IsUniqueViolation(err) {
			return nil, Error.Wrap(err)
		}

		user, err := users.GetBySubject(ctx, subject)
		if vault.ErrNotFound.Has(err) {
			// the conflicting insert was rolled back, try again
			continue
		}
		return user, err
	}
	return nil, vault.ErrConflict.New("could not register subject")
}

// GetBySubject is a method for querying user by subject from the database.
func (users *users) GetBySubject(ctx context.Context, subject string) (_ *vault.User, err error) {
	defer mon.Task()(&ctx)(&err)
	row := users.db.QueryRowContext(ctx, users.db.Rebind(`
		SELECT `+userColumns+` FROM users WHERE subject = ?`), subject)
	return scanUser(row)
}

// GetByEmail returns the oldest user registered with email.
func (users *users) GetByEmail(ctx context.Context, email string) (_ *vault.User, err error) {
	defer mon.Task()(&ctx)(&err)
	row := users.db.QueryRowContext(ctx, users.db.Rebind(`
		SELECT `+userColumns+` FROM users WHERE email = ?
		ORDER BY id LIMIT 1`), email)
	return scanUser(row)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scanner) (*vault.User, error) {
	user := &vault.User{}
	err := row.Scan(&user.ID, &user.Subject, &user.Email, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, vault.ErrNotFound.New("user")
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return user, nil
}
