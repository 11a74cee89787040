package database

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/clinio/carematch-backend/internal/domain/entities"
	"github.com/clinio/carematch-backend/internal/domain/repositories"
	"github.com/clinio/carematch-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/clinio/carematch-backend/pkg/errors"
)

// ProfessionalAdapter implements the ProfessionalRepository interface
type ProfessionalAdapter struct {
	client *postgres.Client
}

// NewProfessionalAdapter creates a new professional adapter
func NewProfessionalAdapter(client *postgres.Client) repositories.ProfessionalRepository {
	return &ProfessionalAdapter{
		client: client,
	}
}

// ListActive retrieves all active professionals with their professions,
// specialties and handled motifs.
func (a *ProfessionalAdapter) ListActive(ctx context.Context) ([]*entities.Professional, error) {
	query := `
		SELECT id, display_name, active, years_experience
		FROM professionals
		WHERE active = true
		ORDER BY id
	`

	rows, err := a.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list active professionals", err)
	}
	defer rows.Close()

	var pool []*entities.Professional
	byID := make(map[string]*entities.Professional)

	for rows.Next() {
		p := &entities.Professional{}
		var years sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Active, &years); err != nil {
			return nil, apperrors.NewInternalError("failed to scan professional", err)
		}
		if years.Valid {
			v := years.Float64
			p.YearsExperience = &v
		}
		pool = append(pool, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate professionals", err)
	}

	if len(pool) == 0 {
		return pool, nil
	}

	ids := make([]string, 0, len(pool))
	for _, p := range pool {
		ids = append(ids, p.ID)
	}

	if err := a.loadProfessions(ctx, ids, byID); err != nil {
		return nil, err
	}
	if err := a.loadSpecialties(ctx, ids, byID); err != nil {
		return nil, err
	}
	if err := a.loadMotifs(ctx, ids, byID); err != nil {
		return nil, err
	}

	return pool, nil
}

func (a *ProfessionalAdapter) loadProfessions(ctx context.Context, ids []string, byID map[string]*entities.Professional) error {
	query := `
		SELECT professional_id, title_key, category_key, is_primary
		FROM professional_professions
		WHERE professional_id = ANY($1)
		ORDER BY professional_id, title_key
	`

	rows, err := a.client.DB().QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return apperrors.NewInternalError("failed to get professions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var professionalID string
		var prof entities.Profession
		if err := rows.Scan(&professionalID, &prof.TitleKey, &prof.CategoryKey, &prof.IsPrimary); err != nil {
			return apperrors.NewInternalError("failed to scan profession", err)
		}
		if p, ok := byID[professionalID]; ok {
			p.Professions = append(p.Professions, prof)
		}
	}

	if err := rows.Err(); err != nil {
		return apperrors.NewInternalError("failed to iterate professions", err)
	}

	return nil
}

func (a *ProfessionalAdapter) loadSpecialties(ctx context.Context, ids []string, byID map[string]*entities.Professional) error {
	query := `
		SELECT professional_id, code, category, proficiency
		FROM professional_specialties
		WHERE professional_id = ANY($1)
		ORDER BY professional_id, code
	`

	rows, err := a.client.DB().QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return apperrors.NewInternalError("failed to get specialties", err)
	}
	defer rows.Close()

	for rows.Next() {
		var professionalID string
		var spec entities.Specialty
		if err := rows.Scan(&professionalID, &spec.Code, &spec.Category, &spec.Proficiency); err != nil {
			return apperrors.NewInternalError("failed to scan specialty", err)
		}
		if p, ok := byID[professionalID]; ok {
			p.Specialties = append(p.Specialties, spec)
		}
	}

	if err := rows.Err(); err != nil {
		return apperrors.NewInternalError("failed to iterate specialties", err)
	}

	return nil
}

func (a *ProfessionalAdapter) loadMotifs(ctx context.Context, ids []string, byID map[string]*entities.Professional) error {
	query := `
		SELECT professional_id, motif_key
		FROM professional_motifs
		WHERE professional_id = ANY($1)
		ORDER BY professional_id, motif_key
	`

	rows, err := a.client.DB().QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return apperrors.NewInternalError("failed to get professional motifs", err)
	}
	defer rows.Close()

	for rows.Next() {
		var professionalID, key string
		if err := rows.Scan(&professionalID, &key); err != nil {
			return apperrors.NewInternalError("failed to scan professional motif", err)
		}
		if p, ok := byID[professionalID]; ok {
			p.MotifKeys = append(p.MotifKeys, key)
		}
	}

	if err := rows.Err(); err != nil {
		return apperrors.NewInternalError("failed to iterate professional motifs", err)
	}

	return nil
}
