// Package store persists case versions and the amendment log.
package store

import (
	_ "embed"

	"kycdsl/pkg/platform/sentinel"
)

// Schema creates the case tables. It is idempotent.
//
//go:embed schema.sql
var Schema string

var (
	ErrNotFound = sentinel.ErrNotFound
	ErrConflict = sentinel.ErrConflict
)
