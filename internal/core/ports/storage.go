package ports

import (
	"context"

	"github.com/lcalzada-xor/netpath/internal/core/domain"
)

// AnalysisRepository persists graded analyses.
type AnalysisRepository interface {
	// Save inserts or replaces a record.
	Save(ctx context.Context, record domain.AnalysisRecord) error

	// Get returns a record by id, domain.ErrNotFound when absent.
	Get(ctx context.Context, id string) (domain.AnalysisRecord, error)

	// List returns the newest records first.
	List(ctx context.Context, limit int) ([]domain.AnalysisRecord, error)

	// ListByTarget returns the newest records for one target first.
	ListByTarget(ctx context.Context, target string, limit int) ([]domain.AnalysisRecord, error)

	// Close closes the storage connection.
	Close() error
}
