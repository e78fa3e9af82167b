// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vault

import (
	"context"

	"storj.io/stratusvault/storage"
)

// DB contains access to different vault database tables
type DB interface {
	// Users is a getter for Users repository
	Users() Users
	// Documents is a getter for Documents repository
	Documents() Documents
	// Grants is a getter for Grants repository
	Grants() Grants
	// OrphanQueue returns the durable queue of storage keys awaiting deletion
	OrphanQueue() storage.Queue

	// CreateTables is a method for creating all tables for the database
	CreateTables(ctx context.Context) error
	// Close is used to close db connection
	Close() error
}

// Users exposes methods to manage User table in database.
type Users interface {
	// Upsert inserts a user for subject unless one exists and returns the stored user.
	// An existing user keeps its email.
	Upsert(ctx context.Context, subject, email string) (*User, error)
	// GetBySubject is a method for querying user by subject from the database.
	GetBySubject(ctx context.Context, subject string) (*User, error)
	// GetByEmail returns the oldest user with the given normalized email.
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// Documents exposes methods to manage Document table in database.
type Documents interface {
	// Insert creates the document row and returns it with its assigned id.
	Insert(ctx context.Context, document NewDocument) (*Document, error)
	// Get returns the document with the given id.
	Get(ctx context.Context, id int64) (*Document, error)
	// ListVisibleTo returns documents owned by or granted to userID ordered by id.
	ListVisibleTo(ctx context.Context, userID int64) ([]Document, error)
	// Delete removes the document owned by ownerID together with its grants.
	Delete(ctx context.Context, id, ownerID int64) error
}

// Grants exposes methods to manage Grant table in database.
type Grants interface {
	// Insert creates a grant unless one already exists for the pair.
	Insert(ctx context.Context, documentID, granteeID int64, level PermissionLevel) (created bool, err error)
	// Exists checks whether granteeID holds a grant on documentID.
	Exists(ctx context.Context, documentID, granteeID int64) (bool, error)
	// Grantees returns the users holding a grant on documentID ordered by grant creation.
	Grantees(ctx context.Context, documentID int64) ([]User, error)
}
