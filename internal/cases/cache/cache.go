// Package cache memoizes compiled plans keyed by a digest of their source.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key returns the cache key for DSL source.
func Key(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
