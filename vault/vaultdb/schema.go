// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vaultdb

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS users_email_index ON users ( email )`,
	`CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		storage_key TEXT NOT NULL UNIQUE,
		codec TEXT NOT NULL,
		original_size INTEGER NOT NULL,
		stored_size INTEGER NOT NULL,
		content_type TEXT,
		owner_id INTEGER NOT NULL REFERENCES users( id ),
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS documents_owner_index ON documents ( owner_id )`,
	`CREATE TABLE IF NOT EXISTS grants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id INTEGER NOT NULL REFERENCES documents( id ) ON DELETE CASCADE,
		grantee_id INTEGER NOT NULL REFERENCES users( id ),
		level TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE ( document_id, grantee_id )
	)`,
	`CREATE INDEX IF NOT EXISTS grants_grantee_index ON grants ( grantee_id )`,
	`CREATE TABLE IF NOT EXISTS orphaned_objects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		storage_key TEXT NOT NULL UNIQUE,
		queued_at TIMESTAMP NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		subject TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS users_email_index ON users ( email )`,
	`CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		storage_key TEXT NOT NULL UNIQUE,
		codec TEXT NOT NULL,
		original_size BIGINT NOT NULL,
		stored_size BIGINT NOT NULL,
		content_type TEXT,
		owner_id BIGINT NOT NULL REFERENCES users( id ),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS documents_owner_index ON documents ( owner_id )`,
	`CREATE TABLE IF NOT EXISTS grants (
		id BIGSERIAL PRIMARY KEY,
		document_id BIGINT NOT NULL REFERENCES documents( id ) ON DELETE CASCADE,
		grantee_id BIGINT NOT NULL REFERENCES users( id ),
		level TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		UNIQUE ( document_id, grantee_id )
	)`,
	`CREATE INDEX IF NOT EXISTS grants_grantee_index ON grants ( grantee_id )`,
	`CREATE TABLE IF NOT EXISTS orphaned_objects (
		id BIGSERIAL PRIMARY KEY,
		storage_key TEXT NOT NULL UNIQUE,
		queued_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,
}
