package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Progress is the externally observable state of a running analysis.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Fraction is the completed share of the run, in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total)
}

// Cache tracks per-document analysis progress for polling observers.
type Cache interface {
	// SetProgress records the clause counts for a running analysis.
	SetProgress(ctx context.Context, docID uuid.UUID, p Progress, ttl time.Duration) error

	// GetProgress retrieves the latest progress for a document.
	// Returns nil if none is recorded.
	GetProgress(ctx context.Context, docID uuid.UUID) (*Progress, error)

	// ClearProgress removes tracking once a run finishes.
	ClearProgress(ctx context.Context, docID uuid.UUID) error

	// Close closes the cache connection.
	Close() error
}
