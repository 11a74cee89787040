package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clinio/carematch-backend/internal/domain/entities"
	"github.com/clinio/carematch-backend/internal/domain/repositories"
	"github.com/clinio/carematch-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/clinio/carematch-backend/pkg/errors"
)

// RequestAdapter implements the RequestRepository interface
type RequestAdapter struct {
	client *postgres.Client
}

// NewRequestAdapter creates a new request adapter
func NewRequestAdapter(client *postgres.Client) repositories.RequestRepository {
	return &RequestAdapter{
		client: client,
	}
}

// GetByID retrieves a service request with its motifs and participants
func (a *RequestAdapter) GetByID(ctx context.Context, id string) (*entities.ServiceRequest, error) {
	query := `
		SELECT
			id, demand_type, urgency, reason, description, other_text,
			notes, legal_context, created_at, updated_at
		FROM requests
		WHERE id = $1
	`

	request := &entities.ServiceRequest{}
	var reason, description, otherText, notes sql.NullString

	err := a.client.DB().QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.DemandType,
		&request.Urgency,
		&reason,
		&description,
		&otherText,
		&notes,
		&request.LegalContext,
		&request.CreatedAt,
		&request.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("request with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get request", err)
	}

	request.Reason = reason.String
	request.Description = description.String
	request.OtherText = otherText.String
	request.Notes = notes.String

	if request.MotifKeys, err = a.loadMotifs(ctx, id); err != nil {
		return nil, err
	}
	if request.Participants, err = a.loadParticipants(ctx, id); err != nil {
		return nil, err
	}

	return request, nil
}

func (a *RequestAdapter) loadMotifs(ctx context.Context, requestID string) ([]string, error) {
	query := `
		SELECT motif_key
		FROM request_motifs
		WHERE request_id = $1
		ORDER BY motif_key
	`

	rows, err := a.client.DB().QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get request motifs", err)
	}
	defer rows.Close()

	var motifs []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, apperrors.NewInternalError("failed to scan request motif", err)
		}
		motifs = append(motifs, key)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate request motifs", err)
	}

	return motifs, nil
}

func (a *RequestAdapter) loadParticipants(ctx context.Context, requestID string) ([]entities.Participant, error) {
	query := `
		SELECT id, birth_date
		FROM request_participants
		WHERE request_id = $1
		ORDER BY id
	`

	rows, err := a.client.DB().QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get request participants", err)
	}
	defer rows.Close()

	var participants []entities.Participant
	for rows.Next() {
		var p entities.Participant
		var birthDate sql.NullTime
		if err := rows.Scan(&p.ID, &birthDate); err != nil {
			return nil, apperrors.NewInternalError("failed to scan request participant", err)
		}
		if birthDate.Valid {
			bd := birthDate.Time
			p.BirthDate = &bd
		}
		participants = append(participants, p)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate request participants", err)
	}

	return participants, nil
}
