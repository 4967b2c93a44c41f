package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NoOpCache is a cache implementation that does nothing. Used as a fallback
// when Redis is not configured - all operations succeed but nothing is
// tracked, so observers simply never see intermediate progress.
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache instance
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) SetProgress(ctx context.Context, docID uuid.UUID, p Progress, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) GetProgress(ctx context.Context, docID uuid.UUID) (*Progress, error) {
	return nil, nil
}

func (c *NoOpCache) ClearProgress(ctx context.Context, docID uuid.UUID) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
