// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vault_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/errs"
	"go.uber.org/zap/zaptest"

	"storj.io/stratusvault/internal/testcontext"
	"storj.io/stratusvault/internal/testrand"
	"storj.io/stratusvault/storage/testqueue"
	"storj.io/stratusvault/storage/teststore"
	"storj.io/stratusvault/vault"
	"storj.io/stratusvault/vault/vaultdb/vaultdbtest"
)

var (
	alice   = vault.Caller{Subject: "firebase|alice", Email: "alice@example.com"}
	bob     = vault.Caller{Subject: "firebase|bob", Email: "Bob@Example.com"}
	charlie = vault.Caller{Subject: "firebase|charlie", Email: "charlie@example.com"}
)

type testVault struct {
	service *vault.Service
	objects *teststore.Store
	orphans *testqueue.Queue
	db      vault.DB
}

func newTestVault(t *testing.T, db vault.DB, config vault.Config) *testVault {
	objects := teststore.New()
	orphans := testqueue.New()

	service, err := vault.NewService(zaptest.NewLogger(t), db, objects, orphans, config)
	require.NoError(t, err)

	return &testVault{
		service: service,
		objects: objects,
		orphans: orphans,
		db:      db,
	}
}

func (tv *testVault) upload(ctx context.Context, t *testing.T, caller vault.Caller, name, content string) *vault.DocumentSummary {
	summary, err := tv.service.Upload(ctx, caller, vault.UploadRequest{
		Name:        name,
		ContentType: "text/plain",
		Data:        strings.NewReader(content),
	})
	require.NoError(t, err)
	return summary
}

func (tv *testVault) signIn(ctx context.Context, t *testing.T, caller vault.Caller) {
	_, err := tv.service.SignIn(ctx, caller)
	require.NoError(t, err)
}

func summaryIDs(summaries []vault.DocumentSummary) []int64 {
	ids := []int64{}
	for _, summary := range summaries {
		ids = append(ids, summary.ID)
	}
	return ids
}

func TestScenario(t *testing.T) {
	vaultdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db vault.DB) {
		tv := newTestVault(t, db, vault.DefaultConfig())
		service := tv.service

		doc := tv.upload(ctx, t, alice, "hello-doc", "0123456789")
		assert.Equal(t, int64(10), doc.OriginalSize)
		assert.True(t, doc.Owned)

		list, err := service.List(ctx, alice)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, doc.ID, list[0].ID)
		assert.Equal(t, "hello-doc", list[0].Name)
		assert.Equal(t, int64(10), list[0].OriginalSize)

		tv.signIn(ctx, t, bob)
		require.NoError(t, service.Share(ctx, alice, doc.ID, "bob@example.com"))

		list, err = service.List(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, []int64{doc.ID}, summaryIDs(list))
		assert.False(t, list[0].Owned)

		file, err := service.Download(ctx, bob, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, []byte("0123456789"), file.Data)
		assert.Equal(t, "hello-doc", file.Name)
		assert.Equal(t, "text/plain", file.ContentType)

		err = service.Delete(ctx, charlie, doc.ID)
		require.Error(t, err)
		assert.True(t, vault.ErrForbidden.Has(err))
		assert.Equal(t, vault.StatusForbidden, vault.StatusOf(err))
	})
}

func TestAuthorization(t *testing.T) {
	vaultdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db vault.DB) {
		tv := newTestVault(t, db, vault.DefaultConfig())
		service := tv.service

		doc := tv.upload(ctx, t, alice, "contract.txt", "signed")
		tv.signIn(ctx, t, bob)
		tv.signIn(ctx, t, charlie)
		require.NoError(t, service.Share(ctx, alice, doc.ID, bob.Email))

		t.Run("owner", func(t *testing.T) {
			file, err := service.Download(ctx, alice, doc.ID)
			require.NoError(t, err)
			assert.Equal(t, []byte("signed"), file.Data)
		})

		t.Run("grantee", func(t *testing.T) {
			file, err := service.Download(ctx, bob, doc.ID)
			require.NoError(t, err)
			assert.Equal(t, []byte("signed"), file.Data)
		})

		t.Run("existence hiding", func(t *testing.T) {
			_, unauthorized := service.Download(ctx, charlie, doc.ID)
			_, missing := service.Download(ctx, charlie, doc.ID+1000)
			_, neverSeen := service.Download(ctx, vault.Caller{Subject: "stranger"}, doc.ID)

			for _, err := range []error{unauthorized, missing, neverSeen} {
				require.Error(t, err)
				assert.True(t, vault.ErrNotFound.Has(err))
				assert.Equal(t, vault.StatusNotFound, vault.StatusOf(err))
			}
			assert.Equal(t, missing.Error(), unauthorized.Error())
			assert.Equal(t, missing.Error(), neverSeen.Error())
			assert.Equal(t, vault.PublicMessage(missing), vault.PublicMessage(unauthorized))
		})

		t.Run("list excludes unauthorized", func(t *testing.T) {
			list, err := service.List(ctx, charlie)
			require.NoError(t, err)
			assert.Empty(t, list)

			list, err = service.List(ctx, vault.Caller{Subject: "stranger"})
			require.NoError(t, err)
			assert.Empty(t, list)
		})

		t.Run("grantee cannot delete", func(t *testing.T) {
			err := service.Delete(ctx, bob, doc.ID)
			assert.True(t, vault.ErrForbidden.Has(err))

			file, err := service.Download(ctx, alice, doc.ID)
			require.NoError(t, err)
			assert.Equal(t, []byte("signed"), file.Data)
		})

		t.Run("grantee cannot reshare", func(t *testing.T) {
			err := service.Share(ctx, bob, doc.ID, charlie.Email)
			assert.True(t, vault.ErrForbidden.Has(err))

			// the recipient is not resolved before the owner check
			err = service.Share(ctx, bob, doc.ID, "never-signed-in@x.com")
			assert.True(t, vault.ErrForbidden.Has(err))
		})
	})
}

func TestShare(t *testing.T) {
	vaultdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db vault.DB) {
		tv := newTestVault(t, db, vault.DefaultConfig())
		service := tv.service

		doc := tv.upload(ctx, t, alice, "budget.xlsx", "numbers")
		tv.signIn(ctx, t, bob)

		t.Run("idempotent", func(t *testing.T) {
			require.NoError(t, service.Share(ctx, alice, doc.ID, "bob@example.com"))
			require.NoError(t, service.Share(ctx, alice, doc.ID, "  BOB@example.COM "))

			grants, err := db.Grants().Grantees(ctx, doc.ID)
			require.NoError(t, err)
			assert.Len(t, grants, 1)

			emails, err := service.SharedWith(ctx, alice, doc.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{"bob@example.com"}, emails)
		})

		t.Run("self share", func(t *testing.T) {
			err := service.Share(ctx, alice, doc.ID, alice.Email)
			require.Error(t, err)
			assert.True(t, vault.ErrSelfShare.Has(err))
			assert.Equal(t, vault.StatusBadRequest, vault.StatusOf(err))
		})

		t.Run("unregistered recipient", func(t *testing.T) {
			err := service.Share(ctx, alice, doc.ID, "never-signed-in@x.com")
			require.Error(t, err)
			assert.True(t, vault.ErrRecipientUnregistered.Has(err))
			assert.Equal(t, "recipient has not signed in yet", vault.PublicMessage(err))
		})

		t.Run("invalid recipient", func(t *testing.T) {
			err := service.Share(ctx, alice, doc.ID, "not an email")
			assert.True(t, vault.ErrBadRequest.Has(err))
		})

		t.Run("missing document", func(t *testing.T) {
			err := service.Share(ctx, alice, doc.ID+1000, bob.Email)
			assert.True(t, vault.ErrNotFound.Has(err))
		})

		t.Run("shared with is owner only", func(t *testing.T) {
			_, err := service.SharedWith(ctx, bob, doc.ID)
			assert.True(t, vault.ErrNotFound.Has(err))

			_, err = service.SharedWith(ctx, alice, doc.ID+1000)
			assert.True(t, vault.ErrNotFound.Has(err))
		})
	})
}

func TestConcurrentFirstSight(t *testing.T) {
	vaultdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db vault.DB) {
		tv := newTestVault(t, db, vault.DefaultConfig())

		const n = 8
		for i := 0; i < n; i++ {
			i := i
			ctx.Go(func() error {
				_, err := tv.service.Upload(ctx, alice, vault.UploadRequest{
					Name: fmt.Sprintf("file-%d", i),
					Data: strings.NewReader("content"),
				})
				return err
			})
		}
		ctx.Wait()

		user, err := db.Users().GetBySubject(ctx, alice.Subject)
		require.NoError(t, err)

		list, err := tv.service.List(ctx, alice)
		require.NoError(t, err)
		require.Len(t, list, n)

		for _, summary := range list {
			assert.True(t, summary.Owned)
			document, err := db.Documents().Get(ctx, summary.ID)
			require.NoError(t, err)
			assert.Equal(t, user.ID, document.OwnerID)
		}
	})
}

func TestConcurrentShare(t *testing.T) {
	vaultdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db vault.DB) {
		tv := newTestVault(t, db, vault.DefaultConfig())

		doc := tv.upload(ctx, t, alice, "minutes.txt", "minutes")
		tv.signIn(ctx, t, bob)

		for i := 0; i < 8; i++ {
			ctx.Go(func() error {
				return tv.service.Share(ctx, alice, doc.ID, bob.Email)
			})
		}
		ctx.Wait()

		grants, err := db.Grants().Grantees(ctx, doc.ID)
		require.NoError(t, err)
		assert.Len(t, grants, 1)
	})
}

func TestUpload(t *testing.T) {
	vaultdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db vault.DB) {
		tv := newTestVault(t, db, vault.Config{MaxUploadSize: 1024, Codec: "zstd"})
		service := tv.service

		t.Run("stored compressed", func(t *testing.T) {
			content := bytes.Repeat([]byte("a"), 1024)
			summary, err := service.Upload(ctx, alice, vault.UploadRequest{
				Name: "  padded name.txt ",
				Data: bytes.NewReader(content),
			})
			require.NoError(t, err)
			assert.Equal(t, "padded name.txt", summary.Name)
			assert.Equal(t, int64(1024), summary.OriginalSize)
			assert.True(t, summary.StoredSize < summary.OriginalSize)

			document, err := db.Documents().Get(ctx, summary.ID)
			require.NoError(t, err)
			assert.Equal(t, "zstd", document.Codec)
			assert.True(t, strings.HasSuffix(document.StorageKey, ".zst"))
			assert.Equal(t, []string{document.StorageKey}, tv.objects.Keys())

			// no content type was given
			file, err := service.Download(ctx, alice, summary.ID)
			require.NoError(t, err)
			assert.Equal(t, "application/octet-stream", file.ContentType)
			assert.Equal(t, content, file.Data)

			require.NoError(t, service.Delete(ctx, alice, summary.ID))
		})

		t.Run("incompressible", func(t *testing.T) {
			owner := testrand.Caller()
			content := testrand.BytesN(1024)
			summary, err := service.Upload(ctx, owner, vault.UploadRequest{
				Name: "random.bin",
				Data: bytes.NewReader(content),
			})
			require.NoError(t, err)
			assert.Equal(t, int64(1024), summary.OriginalSize)

			file, err := service.Download(ctx, owner, summary.ID)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(content, file.Data))

			require.NoError(t, service.Delete(ctx, owner, summary.ID))
		})

		t.Run("empty file", func(t *testing.T) {
			summary, err := service.Upload(ctx, alice, vault.UploadRequest{
				Name: "empty",
				Data: bytes.NewReader(nil),
			})
			require.NoError(t, err)

			file, err := service.Download(ctx, alice, summary.ID)
			require.NoError(t, err)
			assert.Len(t, file.Data, 0)

			require.NoError(t, service.Delete(ctx, alice, summary.ID))
		})

		t.Run("too large", func(t *testing.T) {
			_, err := service.Upload(ctx, alice, vault.UploadRequest{
				Name: "big",
				Data: bytes.NewReader(make([]byte, 1025)),
			})
			require.Error(t, err)
			assert.True(t, vault.ErrBadRequest.Has(err))
			assert.Empty(t, tv.objects.Keys())
		})

		t.Run("invalid requests", func(t *testing.T) {
			_, err := service.Upload(ctx, alice, vault.UploadRequest{Name: " ", Data: strings.NewReader("x")})
			assert.True(t, vault.ErrBadRequest.Has(err))

			_, err = service.Upload(ctx, alice, vault.UploadRequest{Name: "x"})
			assert.True(t, vault.ErrBadRequest.Has(err))

			_, err = service.Upload(ctx, vault.Caller{}, vault.UploadRequest{Name: "x", Data: strings.NewReader("x")})
			assert.True(t, vault.ErrBadRequest.Has(err))

			_, err = service.Upload(ctx, vault.Caller{Subject: "nomail"}, vault.UploadRequest{Name: "x", Data: strings.NewReader("x")})
			assert.True(t, vault.ErrBadRequest.Has(err))
		})

		t.Run("object store failure", func(t *testing.T) {
			tv.objects.FailNext(teststore.OpPut, 1)

			_, err := service.Upload(ctx, alice, vault.UploadRequest{Name: "lost", Data: strings.NewReader("x")})
			require.Error(t, err)
			assert.True(t, vault.ErrUploadFailed.Has(err))
			assert.Equal(t, vault.StatusInternal, vault.StatusOf(err))
			assert.Equal(t, "upload failed", vault.PublicMessage(err))

			list, err := service.List(ctx, alice)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	})
}

type failingDocuments struct {
	vault.Documents
}

func (failingDocuments) Insert(ctx context.Context, document vault.NewDocument) (*vault.Document, error) {
	return nil, errs.New("metadata store unavailable")
}

type failingDB struct {
	vault.DB
}

func (db failingDB) Documents() vault.Documents {
	return failingDocuments{db.DB.Documents()}
}

func TestUpload_MetadataFailureRemovesObject(t *testing.T) {
	vaultdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db vault.DB) {
		tv := newTestVault(t, failingDB{db}, vault.DefaultConfig())

		_, err := tv.service.Upload(ctx, alice, vault.UploadRequest{Name: "doc", Data: strings.NewReader("x")})
		require.Error(t, err)
		assert.True(t, vault.ErrUploadFailed.Has(err))

		assert.Equal(t, 1, tv.objects.CallCount.Put)
		assert.Empty(t, tv.objects.Keys())
		assert.Empty(t, tv.orphans.Keys())
	})
}

func TestDownload_BrokenObject(t *testing.T) {
	vaultdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db vault.DB) {
		tv := newTestVault(t, db, vault.DefaultConfig())

		missing := tv.upload(ctx, t, alice, "missing", "content")
		corrupt := tv.upload(ctx, t, alice, "corrupt", "content")

		for _, summary := range []*vault.DocumentSummary{missing, corrupt} {
			document, err := db.Documents().Get(ctx, summary.ID)
			require.NoError(t, err)
			if summary == missing {
				tv.objects.Remove(document.StorageKey)
			} else {
				tv.objects.Overwrite(document.StorageKey, []byte("garbage"))
			}

			_, err = tv.service.Download(ctx, alice, summary.ID)
			require.Error(t, err)
			assert.True(t, vault.ErrInternal.Has(err))
			assert.Equal(t, vault.StatusInternal, vault.StatusOf(err))
			assert.Equal(t, "internal error", vault.PublicMessage(err))
			assert.NotContains(t, vault.PublicMessage(err), document.StorageKey)
		}
	})
}

func TestDelete(t *testing.T) {
	vaultdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db vault.DB) {
		tv := newTestVault(t, db, vault.DefaultConfig())
		service := tv.service
		tv.signIn(ctx, t, bob)

		t.Run("removes metadata grants and object", func(t *testing.T) {
			doc := tv.upload(ctx, t, alice, "a", "a")
			require.NoError(t, service.Share(ctx, alice, doc.ID, bob.Email))

			require.NoError(t, service.Delete(ctx, alice, doc.ID))
			assert.Empty(t, tv.objects.Keys())

			grants, err := db.Grants().Grantees(ctx, doc.ID)
			require.NoError(t, err)
			assert.Empty(t, grants)

			list, err := service.List(ctx, bob)
			require.NoError(t, err)
			assert.Empty(t, list)

			err = service.Delete(ctx, alice, doc.ID)
			assert.True(t, vault.ErrNotFound.Has(err))
		})

		t.Run("object failure is queued", func(t *testing.T) {
			doc := tv.upload(ctx, t, alice, "b", "b")
			document, err := db.Documents().Get(ctx, doc.ID)
			require.NoError(t, err)

			tv.objects.FailNext(teststore.OpDelete, 1)
			require.NoError(t, service.Delete(ctx, alice, doc.ID))

			_, err = service.Download(ctx, alice, doc.ID)
			assert.True(t, vault.ErrNotFound.Has(err))
			assert.Equal(t, []string{document.StorageKey}, tv.objects.Keys())
			assert.Equal(t, []string{document.StorageKey}, tv.orphans.Keys())

			reaper := vault.NewReaper(zaptest.NewLogger(t), tv.objects, tv.orphans, vault.DefaultReaperConfig())
			require.NoError(t, reaper.RunOnce(ctx))
			assert.Empty(t, tv.objects.Keys())
			assert.Empty(t, tv.orphans.Keys())
		})

		t.Run("partial delete", func(t *testing.T) {
			doc := tv.upload(ctx, t, alice, "c", "c")

			tv.objects.FailNext(teststore.OpDelete, 1)
			tv.orphans.FailNextEnqueue(1)

			err := service.Delete(ctx, alice, doc.ID)
			require.Error(t, err)
			assert.True(t, vault.ErrPartialDelete.Has(err))
			assert.Equal(t, vault.StatusInternal, vault.StatusOf(err))

			// the metadata is gone regardless
			_, err = db.Documents().Get(ctx, doc.ID)
			assert.True(t, vault.ErrNotFound.Has(err))
			assert.Len(t, tv.objects.Keys(), 1)
		})
	})
}

func TestSignIn(t *testing.T) {
	vaultdbtest.Run(t, func(ctx *testcontext.Context, t *testing.T, db vault.DB) {
		tv := newTestVault(t, db, vault.DefaultConfig())
		service := tv.service

		doc := tv.upload(ctx, t, alice, "plans.txt", "draft")

		err := service.Share(ctx, alice, doc.ID, "bob@example.com")
		assert.True(t, vault.ErrRecipientUnregistered.Has(err))

		user, err := service.SignIn(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", user.Email)

		again, err := service.SignIn(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, user.ID, again.ID)

		require.NoError(t, service.Share(ctx, alice, doc.ID, "bob@example.com"))

		// listing without an email only looks the caller up
		_, err = service.List(ctx, vault.Caller{Subject: charlie.Subject})
		require.NoError(t, err)
		err = service.Share(ctx, alice, doc.ID, charlie.Email)
		assert.True(t, vault.ErrRecipientUnregistered.Has(err))

		// listing with an email signs the caller in
		list, err := service.List(ctx, charlie)
		require.NoError(t, err)
		assert.Empty(t, list)
		require.NoError(t, service.Share(ctx, alice, doc.ID, charlie.Email))

		_, err = service.SignIn(ctx, vault.Caller{Subject: "firebase|dave", Email: "not an email"})
		assert.True(t, vault.ErrBadRequest.Has(err))
		_, err = service.SignIn(ctx, vault.Caller{Email: "dave@example.com"})
		assert.True(t, vault.ErrBadRequest.Has(err))
	})
}
