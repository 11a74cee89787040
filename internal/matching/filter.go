package matching

import (
	"fmt"

	"github.com/clinio/carematch-backend/internal/domain/entities"
)

// constraintFailure is one failed hard constraint for a candidate.
type constraintFailure struct {
	reason  entities.ExclusionReason
	message string
	details map[string]interface{}
}

// FilterResult partitions the candidate pool. Every candidate lands in
// exactly one of Eligible / Excluded; near-eligible candidates (exactly one
// failed constraint) additionally appear in NearEligible with a would-be
// score, so callers can present fallback options when the strict pool is
// too small.
type FilterResult struct {
	Eligible     []Candidate
	Excluded     []entities.Exclusion
	NearEligible []entities.NearEligible
}

// Partition applies the four hard constraints to every candidate. All
// constraints are evaluated without short-circuiting so exclusion details
// list every failure, not just the first.
func Partition(req *entities.ServiceRequest, candidates []Candidate, cfg *entities.ScoringConfiguration, signal entities.HolisticSignal) FilterResult {
	var result FilterResult

	for _, c := range candidates {
		if !c.Professional.Active {
			result.Excluded = append(result.Excluded, entities.Exclusion{
				ProfessionalID: c.Professional.ID,
				DisplayName:    c.Professional.DisplayName,
				Reason:         entities.ExclusionInactiveStatus,
				Message:        "professional is not active",
			})
			continue
		}

		failures := evaluateConstraints(req, c, cfg)

		switch len(failures) {
		case 0:
			result.Eligible = append(result.Eligible, c)
		case 1:
			f := failures[0]
			near := entities.NearEligible{
				ProfessionalID:   c.Professional.ID,
				DisplayName:      c.Professional.DisplayName,
				FailedConstraint: f.reason,
				Message:          f.message,
				WouldBeScore:     Score(req, c, cfg, signal),
			}
			if f.reason == entities.ExclusionNoAvailability {
				near.NextAvailable = c.Availability.NextSlot
			}
			result.NearEligible = append(result.NearEligible, near)
			result.Excluded = append(result.Excluded, entities.Exclusion{
				ProfessionalID: c.Professional.ID,
				DisplayName:    c.Professional.DisplayName,
				Reason:         f.reason,
				Message:        f.message,
				Details:        f.details,
			})
		default:
			primary := failures[0]
			details := primary.details
			if details == nil {
				details = map[string]interface{}{}
			}
			var additional []string
			for _, f := range failures[1:] {
				additional = append(additional, string(f.reason))
			}
			details["additional_failures"] = additional

			result.Excluded = append(result.Excluded, entities.Exclusion{
				ProfessionalID: c.Professional.ID,
				DisplayName:    c.Professional.DisplayName,
				Reason:         primary.reason,
				Message:        primary.message,
				Details:        details,
			})
		}
	}

	return result
}

// evaluateConstraints checks the four hard constraints in a fixed order so
// the primary reason of a multi-failure exclusion is deterministic.
func evaluateConstraints(req *entities.ServiceRequest, c Candidate, cfg *entities.ScoringConfiguration) []constraintFailure {
	var failures []constraintFailure
	p := c.Professional

	// 1. Availability: at least one slot in the window, unless the window
	// is disabled.
	if cfg.AvailabilityWindowDays > 0 && c.Availability.SlotsInWindow < 1 {
		failures = append(failures, constraintFailure{
			reason:  entities.ExclusionNoAvailability,
			message: fmt.Sprintf("no available slot in the next %d days", cfg.AvailabilityWindowDays),
			details: map[string]interface{}{
				"window_days":     cfg.AvailabilityWindowDays,
				"hours_in_window": c.Availability.HoursInWindow,
			},
		})
	}

	// 2. Motif overlap: candidate shares at least one stated concern.
	if cfg.RequireMotifOverlap && len(req.MotifKeys) > 0 {
		matched, missing := MatchedMotifs(req, p)
		if len(matched) == 0 {
			failures = append(failures, constraintFailure{
				reason:  entities.ExclusionNoMotifOverlap,
				message: "handles none of the request's stated concerns",
				details: map[string]interface{}{
					"requested_motifs": req.MotifKeys,
					"missing_motifs":   missing,
				},
			})
		}
	}

	// 3. Clientele match: candidate holds a specialty for at least one
	// derived clientele category.
	if cfg.RequireClienteleMatch && len(req.ClienteleCategories) > 0 {
		matched := false
		for _, cat := range req.ClienteleCategories {
			if p.HasSpecialtyCode(string(cat)) {
				matched = true
				break
			}
		}
		if !matched {
			failures = append(failures, constraintFailure{
				reason:  entities.ExclusionNoClienteleMatch,
				message: "holds no specialty for the request's clientele categories",
				details: map[string]interface{}{
					"requested_categories": req.ClienteleCategories,
				},
			})
		}
	}

	// 4. Demand-type specialty: couple/family/group demands require the
	// corresponding specialty. Not toggleable.
	if code := req.DemandType.RequiredSpecialtyCode(); code != "" && !p.HasSpecialtyCode(code) {
		failures = append(failures, constraintFailure{
			reason:  entities.ExclusionNoDemandTypeSpecialty,
			message: fmt.Sprintf("lacks the %q specialty required for %s demands", code, req.DemandType),
			details: map[string]interface{}{
				"required_specialty": code,
			},
		})
	}

	return failures
}
