package resultcache

import (
	"context"
	"time"

	"github.com/yellowbooks/bizsearch/internal/domain"
)

// Noop is the null-object cache used when no store is configured:
// every read misses, every write is a no-op.
type Noop struct{}

// NewNoop creates an always-miss cache.
func NewNoop() Noop { return Noop{} }

// Get always misses.
func (Noop) Get(context.Context, string, string) (domain.SearchResult, bool) {
	return domain.SearchResult{}, false
}

// Set discards the value.
func (Noop) Set(context.Context, string, string, domain.SearchResult, time.Duration) bool {
	return false
}

// Delete is a no-op.
func (Noop) Delete(context.Context, string, string) bool { return false }

// DeleteAll is a no-op.
func (Noop) DeleteAll(context.Context) int { return 0 }
