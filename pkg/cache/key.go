package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// RenderKey derives the cache key for a rendered artifact. The key is a pure
// function of the DOT text and the output format, so any change to the chart
// or the styling invalidates the entry automatically.
func RenderKey(dot, format string) string {
	return fmt.Sprintf("render:%s:%s", format, Hash([]byte(dot)))
}

// Scoped wraps a cache so all keys share a prefix. Hosts that serve several
// charts from one backing cache use it to keep namespaces apart.
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped creates a cache whose keys are prefixed with scope.
func NewScoped(inner Cache, scope string) *Scoped {
	return &Scoped{inner: inner, prefix: scope + ":"}
}

// Get retrieves a value under the scope prefix.
func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Set stores a value under the scope prefix.
func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

// Delete removes a value under the scope prefix.
func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the underlying cache.
func (s *Scoped) Close() error { return s.inner.Close() }

var _ Cache = (*Scoped)(nil)
