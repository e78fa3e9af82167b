// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vault

import (
	"net/mail"
	"strings"
	"time"
)

// User is a database object that describes a caller who has signed in at least once.
type User struct {
	ID      int64
	Subject string
	Email   string

	CreatedAt time.Time
}

// Caller is the authenticated identity on whose behalf an operation runs.
type Caller struct {
	Subject string
	Email   string
}

// Validate checks that the caller carries a subject.
func (caller Caller) Validate() error {
	if strings.TrimSpace(caller.Subject) == "" {
		return ErrBadRequest.New("caller subject is required")
	}
	return nil
}

// NormalizeEmail trims and lower-cases email and checks it is a bare address.
func NormalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrBadRequest.New("email is required")
	}

	address, err := mail.ParseAddress(normalized)
	if err != nil || address.Address != normalized {
		return "", ErrBadRequest.New("invalid email address")
	}
	return normalized, nil
}
