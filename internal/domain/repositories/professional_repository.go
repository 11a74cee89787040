package repositories

import (
	"context"

	"github.com/clinio/carematch-backend/internal/domain/entities"
)

// ProfessionalRepository loads candidate professionals with their nested
// professions, specialties and handled motifs.
type ProfessionalRepository interface {
	ListActive(ctx context.Context) ([]*entities.Professional, error)
}
