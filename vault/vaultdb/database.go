// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vaultdb

import (
	"context"
	"database/sql"

	// load our cgo sqlite driver
	_ "github.com/mattn/go-sqlite3"
	// load our postgres driver
	_ "github.com/lib/pq"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"storj.io/stratusvault/internal/dbutil"
	"storj.io/stratusvault/storage"
	"storj.io/stratusvault/vault"
)

var (
	mon = monkit.Package()

	// Error is the default vaultdb errs class
	Error = errs.Class("vaultdb")
)

// vaultDB combines access to different database tables with a record
// of the db implementation and db source.
type vaultDB struct {
	*sql.DB

	log            *zap.Logger
	implementation dbutil.Implementation
	source         string
}

var _ vault.DB = (*vaultDB)(nil)

// Open creates instance of database, postgres:// and sqlite3:// URLs are supported.
func Open(ctx context.Context, log *zap.Logger, databaseURL string) (vault.DB, error) {
	implementation, source, err := dbutil.SplitConnStr(databaseURL)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if implementation == dbutil.SQLite {
		source = dbutil.SQLiteSource(source)
	}

	db, err := sql.Open(implementation.String(), source)
	if err != nil {
		return nil, Error.New("failed opening database %q: %v", implementation, err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, Error.New("failed connecting to database %q: %v", implementation, errs.Combine(err, db.Close()))
	}

	dbutil.Configure(db, mon, dbutil.DefaultOptions(implementation))
	log.Debug("connected", zap.Stringer("implementation", implementation))

	return &vaultDB{
		DB:             db,
		log:            log,
		implementation: implementation,
		source:         source,
	}, nil
}

// Rebind translates ? placeholders for the current implementation.
func (db *vaultDB) Rebind(query string) string {
	return dbutil.Rebind(db.implementation, query)
}

// Users is a getter for Users repository
func (db *vaultDB) Users() vault.Users {
	return &users{db: db}
}

// Documents is a getter for Documents repository
func (db *vaultDB) Documents() vault.Documents {
	return &documents{db: db}
}

// Grants is a getter for Grants repository
func (db *vaultDB) Grants() vault.Grants {
	return &grants{db: db}
}

// OrphanQueue returns the durable queue of storage keys awaiting deletion
func (db *vaultDB) OrphanQueue() storage.Queue {
	return &orphanQueue{db: db}
}

// CreateTables is a method for creating all tables for the database
func (db *vaultDB) CreateTables(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	statements := sqliteSchema
	if db.implementation == dbutil.Postgres {
		statements = postgresSchema
	}

	return Error.Wrap(dbutil.WithTx(ctx, db.DB, func(ctx context.Context, tx *sql.Tx) error {
		for _, statement := range statements {
			if _, err := tx.ExecContext(ctx, statement); err != nil {
				return err
			}
		}
		return nil
	}))
}

// Close is used to close db connection
func (db *vaultDB) Close() error {
	return Error.Wrap(db.DB.Close())
}
