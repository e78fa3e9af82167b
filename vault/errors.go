// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vault

import (
	"github.com/zeebo/errs"
)

var (
	// ErrNotFound is returned when a document does not exist or the caller may not see it.
	ErrNotFound = errs.Class("not found")
	// ErrForbidden is returned when the caller may see a document but not change it.
	ErrForbidden = errs.Class("forbidden")
	// ErrBadRequest is returned for invalid input.
	ErrBadRequest = errs.Class("bad request")
	// ErrSelfShare is returned when an owner shares a document with themselves.
	ErrSelfShare = errs.Class("self share rejected")
	// ErrRecipientUnregistered is returned when nobody with the recipient email has signed in.
	ErrRecipientUnregistered = errs.Class("recipient unregistered")
	// ErrConflict is returned when a uniqueness guarantee could not be met.
	ErrConflict = errs.Class("conflict")
	// ErrInternal is returned for failures that are not the caller's fault.
	ErrInternal = errs.Class("internal error")
	// ErrUploadFailed is returned when an upload could not be stored.
	ErrUploadFailed = errs.Class("upload failed")
	// ErrPartialDelete is returned when metadata was deleted but the object could be neither
	// deleted nor queued for deletion.
	ErrPartialDelete = errs.Class("partial delete")
)

// Status is the category of an error as presented to callers.
type Status int

// Statuses
const (
	StatusOK Status = iota
	StatusNotFound
	StatusForbidden
	StatusBadRequest
	StatusConflict
	StatusInternal
)

// String returns the name of the status.
func (status Status) String() string {
	switch status {
	case StatusOK:
		return "OK"
	case StatusNotFound:
		return "NotFound"
	case StatusForbidden:
		return "Forbidden"
	case StatusBadRequest:
		return "BadRequest"
	case StatusConflict:
		return "Conflict"
	default:
		return "Internal"
	}
}

// StatusOf maps err onto a caller facing status.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case ErrInternal.Has(err), ErrUploadFailed.Has(err), ErrPartialDelete.Has(err):
		return StatusInternal
	case ErrNotFound.Has(err), ErrRecipientUnregistered.Has(err):
		return StatusNotFound
	case ErrForbidden.Has(err):
		return StatusForbidden
	case ErrSelfShare.Has(err), ErrBadRequest.Has(err):
		return StatusBadRequest
	case ErrConflict.Has(err):
		return StatusConflict
	default:
		return StatusInternal
	}
}

// PublicMessage returns a message for err that is safe to show to the caller.
// It never contains storage keys, internal ids or wrapped causes.
func PublicMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case ErrUploadFailed.Has(err):
		return "upload failed"
	case ErrPartialDelete.Has(err):
		return "document deleted, content removal pending"
	case StatusOf(err) == StatusInternal:
		return "internal error"
	case ErrRecipientUnregistered.Has(err):
		return "recipient has not signed in yet"
	case ErrNotFound.Has(err):
		return "document not found"
	case ErrForbidden.Has(err):
		return "only the document owner can do that"
	case ErrSelfShare.Has(err):
		return "you cannot share a document with yourself"
	case ErrBadRequest.Has(err):
		return err.Error()
	default:
		return "conflicting request, try again"
	}
}
