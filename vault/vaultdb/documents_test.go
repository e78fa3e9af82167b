// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vaultdb_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/stratusvault/internal/testcontext"
	"storj.io/stratusvault/vault"
	"storj.io/stratusvault/vault/vaultdb/vaultdbtest"
)

func documentIDs(documents []vault.Document) []int64 {
	ids := []int64{}
	for _, document := range documents {
		ids = append(ids, document.ID)
	}
	return ids
}

func TestDocuments(t *testing.T) {
	vaultdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db vault.DB) {
		owner, err := db.Users().Upsert(ctx, "owner", "owner@example.com")
		require.NoError(t, err)
		reader, err := db.Users().Upsert(ctx, "reader", "reader@example.com")
		require.NoError(t, err)

		report, err := db.Documents().Insert(ctx, vault.NewDocument{
			Name:         "report.pdf",
			StorageKey:   "7f9d3c1e-report.gz",
			Codec:        "gzip",
			OriginalSize: 10,
			StoredSize:   30,
			ContentType:  "application/pdf",
			OwnerID:      owner.ID,
		})
		require.NoError(t, err)
		assert.NotZero(t, report.ID)

		notes, err := db.Documents().Insert(ctx, vault.NewDocument{
			Name:       "notes",
			StorageKey: "0b4a8e2d-notes.gz",
			Codec:      "gzip",
			OwnerID:    owner.ID,
		})
		require.NoError(t, err)

		t.Run("Get", func(t *testing.T) {
			stored, err := db.Documents().Get(ctx, report.ID)
			require.NoError(t, err)
			diff := cmp.Diff(report, stored, cmp.Comparer(func(a, b vault.Document) bool {
				return a.ID == b.ID && a.Name == b.Name && a.StorageKey == b.StorageKey &&
					a.Codec == b.Codec && a.OriginalSize == b.OriginalSize && a.StoredSize == b.StoredSize &&
					a.ContentType == b.ContentType && a.OwnerID == b.OwnerID
			}))
			assert.Empty(t, diff)

			// empty content type is stored as NULL and read back empty
			stored, err = db.Documents().Get(ctx, notes.ID)
			require.NoError(t, err)
			assert.Equal(t, "", stored.ContentType)

			_, err = db.Documents().Get(ctx, notes.ID+1000)
			assert.True(t, vault.ErrNotFound.Has(err))
		})

		t.Run("Duplicate storage key", func(t *testing.T) {
			_, err := db.Documents().Insert(ctx, vault.NewDocument{
				Name:       "copy",
				StorageKey: report.StorageKey,
				Codec:      "gzip",
				OwnerID:    reader.ID,
			})
			assert.True(t, vault.ErrConflict.Has(err))
		})

		t.Run("ListVisibleTo", func(t *testing.T) {
			list, err := db.Documents().ListVisibleTo(ctx, owner.ID)
			require.NoError(t, err)
			assert.Equal(t, []int64{report.ID, notes.ID}, documentIDs(list))

			list, err = db.Documents().ListVisibleTo(ctx, reader.ID)
			require.NoError(t, err)
			assert.Empty(t, list)

			_, err = db.Grants().Insert(ctx, notes.ID, reader.ID, vault.Reader)
			require.NoError(t, err)

			list, err = db.Documents().ListVisibleTo(ctx, reader.ID)
			require.NoError(t, err)
			assert.Equal(t, []int64{notes.ID}, documentIDs(list))
		})

		t.Run("Delete", func(t *testing.T) {
			err := db.Documents().Delete(ctx, notes.ID, reader.ID)
			assert.True(t, vault.ErrNotFound.Has(err))

			require.NoError(t, db.Documents().Delete(ctx, notes.ID, owner.ID))

			_, err = db.Documents().Get(ctx, notes.ID)
			assert.True(t, vault.ErrNotFound.Has(err))

			grantees, err := db.Grants().Grantees(ctx, notes.ID)
			require.NoError(t, err)
			assert.Empty(t, grantees)

			err = db.Documents().Delete(ctx, notes.ID, owner.ID)
			assert.True(t, vault.ErrNotFound.Has(err))
		})
	})
}
