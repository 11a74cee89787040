package services

import (
	"context"
	"time"

	"github.com/clinio/carematch-backend/internal/domain/entities"
	"github.com/clinio/carematch-backend/internal/domain/providers"
	"github.com/clinio/carematch-backend/internal/infrastructure/observability"
)

const (
	// Advisory adjustments are clamped to this range whatever the service
	// returns.
	advisoryAdjustmentMin = -5.0
	advisoryAdjustmentMax = 5.0

	// DefaultAdvisoryTimeout bounds the single outbound advisory call.
	DefaultAdvisoryTimeout = 15 * time.Second

	fallbackBullet  = "Advisory analysis unavailable for this candidate."
	fallbackSummary = "Ranking is deterministic only; advisory analysis was unavailable."
)

// AdvisoryRefiner wraps the advisory provider with the fail-open contract:
// whatever happens on the provider side, Refine returns a usable output and
// never an error. The refiner can nudge the ranking, never block it.
type AdvisoryRefiner struct {
	provider providers.AdvisoryProvider
	timeout  time.Duration
}

// NewAdvisoryRefiner creates a refiner. A nil provider is valid and yields
// the neutral output on every call.
func NewAdvisoryRefiner(provider providers.AdvisoryProvider, timeout time.Duration) *AdvisoryRefiner {
	if timeout <= 0 {
		timeout = DefaultAdvisoryTimeout
	}
	return &AdvisoryRefiner{provider: provider, timeout: timeout}
}

// Refine performs the single advisory call for a run and validates its
// response. Failures of any kind (no provider, zero candidates, network,
// malformed or out-of-schema response) degrade to the neutral output.
func (r *AdvisoryRefiner) Refine(ctx context.Context, input *providers.AdvisoryInput, cfg *entities.ScoringConfiguration) *providers.AdvisoryOutput {
	if r.provider == nil || input == nil || len(input.Candidates) == 0 {
		return neutralAdvisoryOutput(input)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	output, err := r.provider.Advise(callCtx, input, cfg)
	if err != nil || output == nil {
		logger := observability.LoggerFromContext(ctx)
		logger.Warn().Err(err).Msg("advisory call failed, falling back to deterministic ranking")
		return neutralAdvisoryOutput(input)
	}

	return sanitizeAdvisoryOutput(input, output)
}

// sanitizeAdvisoryOutput enforces the response contract: adjustments are
// clamped to [-5, 5], candidates missing from the response are re-added
// with a neutral adjustment, and candidates the service invented are
// dropped. Duplicate entries keep the first occurrence.
func sanitizeAdvisoryOutput(input *providers.AdvisoryInput, output *providers.AdvisoryOutput) *providers.AdvisoryOutput {
	known := make(map[string]bool, len(input.Candidates))
	for _, c := range input.Candidates {
		known[c.ID] = true
	}

	byID := make(map[string]providers.CandidateAdvice, len(output.Advice))
	for _, advice := range output.Advice {
		if !known[advice.CandidateID] {
			continue
		}
		if _, dup := byID[advice.CandidateID]; dup {
			continue
		}
		advice.Adjustment = clampAdjustment(advice.Adjustment)
		if len(advice.Bullets) == 0 {
			advice.Bullets = []string{fallbackBullet}
		}
		byID[advice.CandidateID] = advice
	}

	sanitized := &providers.AdvisoryOutput{
		Preferences: output.Preferences,
		Summary:     output.Summary,
		Advice:      make([]providers.CandidateAdvice, 0, len(input.Candidates)),
	}
	if sanitized.Summary == "" {
		sanitized.Summary = fallbackSummary
	}
	for _, c := range input.Candidates {
		advice, ok := byID[c.ID]
		if !ok {
			advice = providers.CandidateAdvice{
				CandidateID: c.ID,
				Adjustment:  0,
				Bullets:     []string{fallbackBullet},
			}
		}
		sanitized.Advice = append(sanitized.Advice, advice)
	}
	return sanitized
}

// neutralAdvisoryOutput is the no-op refinement: every candidate gets a
// zero adjustment and the summary states the ranking is deterministic only.
func neutralAdvisoryOutput(input *providers.AdvisoryInput) *providers.AdvisoryOutput {
	output := &providers.AdvisoryOutput{Summary: fallbackSummary}
	if input == nil {
		return output
	}
	for _, c := range input.Candidates {
		output.Advice = append(output.Advice, providers.CandidateAdvice{
			CandidateID: c.ID,
			Adjustment:  0,
			Bullets:     []string{fallbackBullet},
		})
	}
	return output
}

func clampAdjustment(v float64) float64 {
	if v < advisoryAdjustmentMin {
		return advisoryAdjustmentMin
	}
	if v > advisoryAdjustmentMax {
		return advisoryAdjustmentMax
	}
	return v
}
