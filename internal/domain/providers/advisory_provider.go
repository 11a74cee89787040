package providers

import (
	"context"

	"github.com/clinio/carematch-backend/internal/domain/entities"
)

// AdvisoryCandidate is the anonymized per-candidate summary sent to the
// advisory service. It must never carry names or other identifying fields;
// candidates are referenced by opaque ids only.
type AdvisoryCandidate struct {
	ID                 string
	ProfessionCategory string
	DeterministicScore float64
	MatchedMotifCount  int
	SlotsInWindow      int
	YearsExperience    *float64
}

// AdvisoryInput is the sanitized, PII-free summary of one matching run.
type AdvisoryInput struct {
	DemandType          entities.DemandType
	Urgency             string
	MotifKeys           []string
	ClienteleCategories []entities.ClienteleCategory
	LegalContext        bool
	Holistic            entities.HolisticSignal
	Candidates          []AdvisoryCandidate
}

// CandidateAdvice is the per-candidate adjustment returned by the advisory
// service. Adjustment is expected in [-5, 5]; callers clamp regardless.
type CandidateAdvice struct {
	CandidateID string   `json:"candidate_id"`
	Adjustment  float64  `json:"adjustment"`
	Bullets     []string `json:"justifications"`
}

// AdvisoryOutput is the structured response of one advisory call.
type AdvisoryOutput struct {
	Preferences entities.SoftPreferences `json:"preferences"`
	Advice      []CandidateAdvice        `json:"candidates"`
	Summary     string                   `json:"summary"`
}

// AdvisoryProvider is the narrow boundary to the external text-generation
// service. Implementations may fail; the refiner converts every failure
// into a neutral no-op so the pipeline never depends on this call.
type AdvisoryProvider interface {
	Advise(ctx context.Context, input *AdvisoryInput, cfg *entities.ScoringConfiguration) (*AdvisoryOutput, error)
}
