// Package cache stores evaluation outcomes keyed by the scenario that produced them.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// KeyPrefix namespaces every key written by this package.
const KeyPrefix = "credit-simulator"

// Store is a byte-oriented key/value store with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key builds the cache key for an outcome produced in mode from the
// canonical form of a scenario.
func Key(mode, canonical string) string {
	return fmt.Sprintf("%s:%s:%016x", KeyPrefix, mode, xxhash.Sum64String(canonical))
}
