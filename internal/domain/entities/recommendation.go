package entities

import "time"

// ExclusionReason codes why a candidate was removed from the pool.
type ExclusionReason string

const (
	ExclusionNoAvailability        ExclusionReason = "no_availability"
	ExclusionNoMotifOverlap        ExclusionReason = "no_motif_overlap"
	ExclusionNoClienteleMatch      ExclusionReason = "no_clientele_match"
	ExclusionNoDemandTypeSpecialty ExclusionReason = "no_demand_type_specialty"
	ExclusionInactiveStatus        ExclusionReason = "inactive_status"
)

// Exclusion records why one candidate was not eligible, with structured
// details for the audit trail (e.g. which motifs were missing).
type Exclusion struct {
	ProfessionalID string                 `json:"professional_id"`
	DisplayName    string                 `json:"display_name"`
	Reason         ExclusionReason        `json:"reason"`
	Message        string                 `json:"message"`
	Details        map[string]interface{} `json:"details,omitempty"`
}

// ScoreBreakdown is the five-factor deterministic score of a candidate.
// Each component lies in [0, its configured weight].
type ScoreBreakdown struct {
	MotifMatch     float64 `json:"motif_match"`
	SpecialtyMatch float64 `json:"specialty_match"`
	Availability   float64 `json:"availability"`
	ProfessionFit  float64 `json:"profession_fit"`
	Experience     float64 `json:"experience"`
	Total          float64 `json:"total"`
}

// NearEligible is a candidate that failed exactly one hard constraint.
// Tracked separately so callers can present fallback options when the
// strict pool is too small.
type NearEligible struct {
	ProfessionalID   string          `json:"professional_id"`
	DisplayName      string          `json:"display_name"`
	FailedConstraint ExclusionReason `json:"failed_constraint"`
	Message          string          `json:"message"`
	WouldBeScore     ScoreBreakdown  `json:"would_be_score"`
	NextAvailable    *time.Time      `json:"next_available,omitempty"`
}

// SoftPreferences are non-binding preferences extracted from free text by
// the advisory step.
type SoftPreferences struct {
	Timing   string `json:"timing,omitempty"`
	Modality string `json:"modality,omitempty"`
	Other    string `json:"other,omitempty"`
}

// RecommendationDetail is the final per-candidate output of a run.
type RecommendationDetail struct {
	ID                 string              `json:"id"`
	ProfessionalID     string              `json:"professional_id"`
	DisplayName        string              `json:"display_name"`
	Rank               int                 `json:"rank"`
	Score              ScoreBreakdown      `json:"score"`
	AdjustedTotal      float64             `json:"adjusted_total"`
	AdvisoryAdjustment *float64            `json:"advisory_adjustment,omitempty"`
	AdvisoryBullets    []string            `json:"advisory_bullets,omitempty"`
	MatchedMotifs      []string            `json:"matched_motifs"`
	MissingMotifs      []string            `json:"missing_motifs"`
	MatchedSpecialties []string            `json:"matched_specialties"`
	Availability       AvailabilitySummary `json:"availability"`
}

// RecommendationResult is the full output of one matching run. A new run
// supersedes the previous current run for the same request.
type RecommendationResult struct {
	ID              string                 `json:"id"`
	RequestID       string                 `json:"request_id"`
	Details         []RecommendationDetail `json:"details"`
	Exclusions      []Exclusion            `json:"exclusions"`
	NearEligible    []NearEligible         `json:"near_eligible"`
	AdvisorySummary string                 `json:"advisory_summary"`
	SoftPreferences SoftPreferences        `json:"soft_preferences"`
	HolisticSignal  HolisticSignal         `json:"holistic_signal"`
	ConfigKey       string                 `json:"config_key"`
	ConfigVersion   int                    `json:"config_version"`
	GeneratedAt     time.Time              `json:"generated_at"`
	ProcessingMs    int64                  `json:"processing_ms"`
	IsCurrent       bool                   `json:"is_current"`
}
