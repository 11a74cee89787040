package repositories

import (
	"context"

	"github.com/clinio/carematch-backend/internal/domain/entities"
)

// RecommendationRepository persists matching runs. At most one run per
// request is current at any time; Create supersedes the previous current
// run in the same transaction.
type RecommendationRepository interface {
	// Create marks any previous current run for the request as superseded
	// and inserts the new run with its detail rows as current.
	Create(ctx context.Context, result *entities.RecommendationResult) error

	// GetCurrent returns the current run for a request, or (nil, nil) when
	// the request has no run yet.
	GetCurrent(ctx context.Context, requestID string) (*entities.RecommendationResult, error)

	// GetByID returns a run by its id, or (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*entities.RecommendationResult, error)
}
