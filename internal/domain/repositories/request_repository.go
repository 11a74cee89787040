package repositories

import (
	"context"

	"github.com/clinio/carematch-backend/internal/domain/entities"
)

// RequestRepository loads service requests with their participants and
// stated motifs.
type RequestRepository interface {
	GetByID(ctx context.Context, id string) (*entities.ServiceRequest, error)
}
