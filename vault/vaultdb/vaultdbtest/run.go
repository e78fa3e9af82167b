// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vaultdbtest

// This package should be referenced only in test files!

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"storj.io/stratusvault/internal/testcontext"
	"storj.io/stratusvault/vault"
	"storj.io/stratusvault/vault/vaultdb"
)

// EnvPostgres names the environment variable holding the postgres test database URL.
const EnvPostgres = "STRATUS_POSTGRES_TEST"

// Database describes a test database
type Database struct {
	Name    string
	URL     string
	Message string
}

// Databases returns default databases.
func Databases() []Database {
	return []Database{
		{Name: "Sqlite", URL: "sqlite3://"},
		{Name: "Postgres", URL: os.Getenv(EnvPostgres), Message: "Postgres test database missing, set " + EnvPostgres + "=postgres://postgres@localhost/teststratus?sslmode=disable"},
	}
}

// Run method will iterate over all supported databases. Will establish
// connection and will create tables for each DB.
func Run(t *testing.T, test func(ctx *testcontext.Context, t *testing.T, db vault.DB)) {
	for _, database := range Databases() {
		database := database
		t.Run(database.Name, func(t *testing.T) {
			if database.URL == "" {
				t.Skip(database.Message)
			}

			ctx := testcontext.New(t)
			defer ctx.Cleanup()

			db, err := Open(ctx, zaptest.NewLogger(t), database)
			if err != nil {
				t.Fatal(err)
			}
			defer ctx.Check(db.Close)

			if err := db.CreateTables(ctx); err != nil {
				t.Fatal(err)
			}

			test(ctx, t, db)
		})
	}
}

// Open opens a fresh database for database. Sqlite databases live in the
// test temp directory, postgres ones in a unique schema dropped on Close.
func Open(ctx *testcontext.Context, log *zap.Logger, database Database) (vault.DB, error) {
	if strings.HasPrefix(database.URL, "sqlite") {
		return vaultdb.Open(ctx, log, "sqlite3://"+ctx.File("vault.db"))
	}

	schema := "vaulttest_" + strings.Replace(uuid.New().String(), "-", "", -1)[:12]

	admin, err := sql.Open("postgres", database.URL)
	if err != nil {
		return nil, err
	}
	if _, err := admin.ExecContext(ctx, "CREATE SCHEMA "+pq.QuoteIdentifier(schema)); err != nil {
		return nil, errs.Combine(err, admin.Close())
	}

	db, err := vaultdb.Open(ctx, log, withSearchPath(database.URL, schema))
	if err != nil {
		return nil, errs.Combine(err, dropSchema(admin, schema))
	}
	return &tempDB{DB: db, admin: admin, schema: schema}, nil
}

func withSearchPath(url, schema string) string {
	separator := "?"
	if strings.Contains(url, "?") {
		separator = "&"
	}
	return url + separator + "search_path=" + schema
}

func dropSchema(admin *sql.DB, schema string) error {
	_, err := admin.ExecContext(context.Background(), "DROP SCHEMA "+pq.QuoteIdentifier(schema)+" CASCADE")
	return errs.Combine(err, admin.Close())
}

// tempDB is a vault.DB that drops its schema when closed.
type tempDB struct {
	vault.DB
	admin  *sql.DB
	schema string
}

// Close closes the database and drops its schema.
func (db *tempDB) Close() error {
	return errs.Combine(db.DB.Close(), dropSchema(db.admin, db.schema))
}
