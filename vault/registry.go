// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vault

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Registry maps external subject identifiers onto users.
type Registry struct {
	log   *zap.Logger
	users Users
}

// NewRegistry creates a new registry backed by users.
func NewRegistry(log *zap.Logger, users Users) *Registry {
	return &Registry{log: log, users: users}
}

// ResolveOrCreate returns the user for subject, creating it on first sight.
// Concurrent first-sight calls for the same subject observe a single user.
func (registry *Registry) ResolveOrCreate(ctx context.Context, subject, email string) (_ *User, err error) {
	defer mon.Task()(&ctx)(&err)

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrBadRequest.New("subject is required")
	}
	email, err = NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := registry.users.Upsert(ctx, subject, email)
	if err != nil {
		return nil, err
	}
	if user.Email != email {
		registry.log.Debug("signed in with a different email than registered",
			zap.Int64("user", user.ID))
	}
	return user, nil
}

// ResolveBySubject returns the user for subject or ErrNotFound when it has never signed in.
func (registry *Registry) ResolveBySubject(ctx context.Context, subject string) (_ *User, err error) {
	defer mon.Task()(&ctx)(&err)
	return registry.users.GetBySubject(ctx, strings.TrimSpace(subject))
}

// ResolveByEmail returns the user registered with email.
// When several users share the email the oldest one wins.
func (registry *Registry) ResolveByEmail(ctx context.Context, email string) (_ *User, err error) {
	defer mon.Task()(&ctx)(&err)

	email, err = NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := registry.users.GetByEmail(ctx, email)
	if ErrNotFound.Has(err) {
		return nil, ErrRecipientUnregistered.New("no user with that email")
	}
	return user, err
}
