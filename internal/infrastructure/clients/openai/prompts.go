package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clinio/carematch-backend/internal/domain/entities"
	"github.com/clinio/carematch-backend/internal/domain/providers"
)

// buildAdvisoryUserPrompt substitutes the named placeholders of the
// configured template with the sanitized run summary. An empty template
// falls back to the built-in one.
func buildAdvisoryUserPrompt(input *providers.AdvisoryInput, template string) string {
	if template == "" {
		template = entities.DefaultAdvisoryUserTemplate
	}

	clientele := make([]string, 0, len(input.ClienteleCategories))
	for _, c := range input.ClienteleCategories {
		clientele = append(clientele, string(c))
	}

	replacer := strings.NewReplacer(
		"{demand_type}", string(input.DemandType),
		"{urgency}", input.Urgency,
		"{motifs}", joinOrNone(input.MotifKeys),
		"{clientele}", joinOrNone(clientele),
		"{legal_context}", fmt.Sprintf("%t", input.LegalContext),
		"{holistic_score}", fmt.Sprintf("%.2f", input.Holistic.Score),
		"{holistic_category}", string(input.Holistic.PrimaryCategory),
		"{clinical_override}", fmt.Sprintf("%t", input.Holistic.ClinicalOverride),
		"{candidate_count}", fmt.Sprintf("%d", len(input.Candidates)),
		"{candidates}", formatCandidateTable(input.Candidates),
	)
	return replacer.Replace(template)
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}

// formatCandidateTable renders one line per anonymized candidate.
func formatCandidateTable(candidates []providers.AdvisoryCandidate) string {
	lines := make([]string, 0, len(candidates))
	for _, c := range candidates {
		years := "unknown"
		if c.YearsExperience != nil {
			years = fmt.Sprintf("%.0f", *c.YearsExperience)
		}
		lines = append(lines, fmt.Sprintf(
			"- candidate_id=%s profession=%s deterministic_score=%.3f matched_motifs=%d slots_in_window=%d years_experience=%s",
			c.ID, c.ProfessionCategory, c.DeterministicScore, c.MatchedMotifCount, c.SlotsInWindow, years,
		))
	}
	return strings.Join(lines, "\n")
}

// parseAdvisoryPayload decodes the strict JSON schema the advisory model
// is instructed to return.
func parseAdvisoryPayload(data []byte) (*providers.AdvisoryOutput, error) {
	var payload providers.AdvisoryOutput
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse advisory payload: %w", err)
	}
	return &payload, nil
}
