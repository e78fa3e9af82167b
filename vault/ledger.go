// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vault

import (
	"context"
)

// Ledger answers who may read which document.
//
// Ownership lives on the document itself and is never stored as a grant.
type Ledger struct {
	registry *Registry
	grants   Grants
}

// NewLedger creates a new ledger.
func NewLedger(registry *Registry, grants Grants) *Ledger {
	return &Ledger{registry: registry, grants: grants}
}

// Grant gives grantee read access to document. Granting twice is not an error.
func (ledger *Ledger) Grant(ctx context.Context, document *Document, grantee *User) (err error) {
	defer mon.Task()(&ctx)(&err)

	created, err := ledger.grants.Insert(ctx, document.ID, grantee.ID, Reader)
	if err != nil {
		return err
	}
	if created {
		mon.Meter("grants_created").Mark(1)
	}
	return nil
}

// IsOwner reports whether subject owns document. Unknown subjects own nothing.
func (ledger *Ledger) IsOwner(ctx context.Context, document *Document, subject string) (_ bool, err error) {
	defer mon.Task()(&ctx)(&err)

	user, err := ledger.registry.ResolveBySubject(ctx, subject)
	if ErrNotFound.Has(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return document.OwnerID == user.ID, nil
}

// IsAuthorized reports whether subject may read document, either as owner or grantee.
func (ledger *Ledger) IsAuthorized(ctx context.Context, document *Document, subject string) (_ bool, err error) {
	defer mon.Task()(&ctx)(&err)

	user, err := ledger.registry.ResolveBySubject(ctx, subject)
	if ErrNotFound.Has(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if document.OwnerID == user.ID {
		return true, nil
	}
	return ledger.grants.Exists(ctx, document.ID, user.ID)
}

// Grantees returns the users document is shared with.
func (ledger *Ledger) Grantees(ctx context.Context, document *Document) (_ []User, err error) {
	defer mon.Task()(&ctx)(&err)
	return ledger.grants.Grantees(ctx, document.ID)
}
