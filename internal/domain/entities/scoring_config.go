package entities

import "time"

// ScoringWeights holds the five component weights of the deterministic
// scorer. A normalized configuration sums to 1.0.
type ScoringWeights struct {
	MotifMatch     float64 `json:"motif_match"`
	SpecialtyMatch float64 `json:"specialty_match"`
	Availability   float64 `json:"availability"`
	ProfessionFit  float64 `json:"profession_fit"`
	Experience     float64 `json:"experience"`
}

// Total returns the sum of all component weights.
func (w ScoringWeights) Total() float64 {
	return w.MotifMatch + w.SpecialtyMatch + w.Availability + w.ProfessionFit + w.Experience
}

// ScoringConfiguration is a named, versioned parameter set for one matching
// run. Configurations are looked up by key; DefaultScoringConfiguration is
// used when no stored configuration matches.
type ScoringConfiguration struct {
	Key     string
	Name    string
	Version int

	Weights ScoringWeights

	RequireMotifOverlap   bool
	RequireClienteleMatch bool

	// Normalization ceilings. Hours and years at or above the ceiling score
	// the full component weight.
	MaxAvailabilityHours float64
	MaxExperienceYears   float64

	AvailabilityWindowDays int

	AdvisorySystemPrompt string
	AdvisoryUserTemplate string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultConfigKey identifies the built-in configuration.
const DefaultConfigKey = "default"

// DefaultScoringConfiguration returns the built-in configuration used when
// no stored configuration exists for the requested key.
func DefaultScoringConfiguration() *ScoringConfiguration {
	return &ScoringConfiguration{
		Key:     DefaultConfigKey,
		Name:    "Built-in default",
		Version: 1,
		Weights: ScoringWeights{
			MotifMatch:     0.30,
			SpecialtyMatch: 0.25,
			Availability:   0.20,
			ProfessionFit:  0.15,
			Experience:     0.10,
		},
		RequireMotifOverlap:    true,
		RequireClienteleMatch:  true,
		MaxAvailabilityHours:   20,
		MaxExperienceYears:     15,
		AvailabilityWindowDays: 14,
		AdvisorySystemPrompt:   DefaultAdvisorySystemPrompt,
		AdvisoryUserTemplate:   DefaultAdvisoryUserTemplate,
	}
}

// DefaultAdvisorySystemPrompt instructs the advisory model to return the
// strict JSON shape the refiner expects. The model never sees personal
// identifiers; candidates are referenced by opaque ids.
const DefaultAdvisorySystemPrompt = `You are an assistant helping rank qualified care professionals for a service request. You receive only aggregated, anonymized data. Return ONLY valid JSON with this schema:
{
  "preferences": {"timing": string, "modality": string, "other": string},
  "candidates": [{"candidate_id": string, "adjustment": number (-5 to 5), "justifications": string[] (1-3 short items)}],
  "summary": string (1-2 sentences)
}
Adjustments are small nudges over an already computed deterministic ranking; never attempt a diagnosis or a clinical judgment. Every candidate in the input must appear exactly once in the output.`

// DefaultAdvisoryUserTemplate is the user prompt with named placeholders
// substituted per run.
const DefaultAdvisoryUserTemplate = `Service request:
- demand type: {demand_type}
- urgency: {urgency}
- stated concerns: {motifs}
- clientele categories: {clientele}
- legal context: {legal_context}
- holistic signal: score {holistic_score}, category {holistic_category}, clinical override {clinical_override}

Candidates ({candidate_count}):
{candidates}

Suggest a bounded adjustment per candidate with short justifications.`
