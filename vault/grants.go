// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package vault

// PermissionLevel is the kind of access a grant gives.
type PermissionLevel string

// Reader allows downloading a document.
const Reader PermissionLevel = "READER"

// Valid reports whether level is a known permission level.
func (level PermissionLevel) Valid() bool {
	return level == Reader
}
