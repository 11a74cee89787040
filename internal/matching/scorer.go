package matching

import (
	"github.com/clinio/carematch-backend/internal/domain/entities"
)

// Candidate pairs a professional with its per-run availability summary.
type Candidate struct {
	Professional *entities.Professional
	Availability entities.AvailabilitySummary
}

// Score computes the five-factor deterministic score of a candidate.
// Pure and reproducible: identical inputs and configuration always yield
// identical scores. Each component lies in [0, its configured weight].
func Score(req *entities.ServiceRequest, c Candidate, cfg *entities.ScoringConfiguration, signal entities.HolisticSignal) entities.ScoreBreakdown {
	breakdown := entities.ScoreBreakdown{
		MotifMatch:     motifMatchScore(req, c.Professional, cfg.Weights.MotifMatch),
		SpecialtyMatch: specialtyMatchScore(req, c.Professional, cfg.Weights.SpecialtyMatch),
		Availability:   availabilityScore(c.Availability, cfg),
		ProfessionFit:  professionFitScore(req, c.Professional, cfg.Weights.ProfessionFit, signal),
		Experience:     experienceScore(c.Professional, cfg),
	}
	breakdown.Total = breakdown.MotifMatch + breakdown.SpecialtyMatch +
		breakdown.Availability + breakdown.ProfessionFit + breakdown.Experience
	return breakdown
}

// motifMatchScore is the share of requested motifs the candidate handles.
// A request with no motifs is a vacuous perfect match.
func motifMatchScore(req *entities.ServiceRequest, p *entities.Professional, weight float64) float64 {
	if len(req.MotifKeys) == 0 {
		return weight
	}
	matched := 0
	for _, key := range req.MotifKeys {
		if p.HasMotif(key) {
			matched++
		}
	}
	return float64(matched) / float64(len(req.MotifKeys)) * weight
}

// legalSpecialtyCodes are added to the relevant set when the request flags
// a legal context.
var legalSpecialtyCodes = []string{"legal", "mediation"}

// RelevantSpecialtyCodes builds the set of specialty codes the request
// cares about: derived clientele categories, the demand-type specialty and
// the legal/mediation codes when the request flags a legal context.
func RelevantSpecialtyCodes(req *entities.ServiceRequest) []string {
	seen := make(map[string]bool)
	var codes []string
	add := func(code string) {
		if code != "" && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}

	for _, c := range req.ClienteleCategories {
		add(string(c))
	}
	add(req.DemandType.RequiredSpecialtyCode())
	if req.LegalContext {
		for _, code := range legalSpecialtyCodes {
			add(code)
		}
	}
	return codes
}

// specialtyMatchScore is the proficiency-weighted overlap between the
// candidate's specialties and the request's relevant set, normalized by the
// set size and capped at 1.0 before weighting. An empty relevant set yields
// half the weight as a neutral baseline.
func specialtyMatchScore(req *entities.ServiceRequest, p *entities.Professional, weight float64) float64 {
	relevant := RelevantSpecialtyCodes(req)
	if len(relevant) == 0 {
		return 0.5 * weight
	}

	sum := 0.0
	for _, code := range relevant {
		best := 0.0
		for _, s := range p.Specialties {
			if s.Code == code && s.Proficiency.Weight() > best {
				best = s.Proficiency.Weight()
			}
		}
		sum += best
	}

	ratio := sum / float64(len(relevant))
	if ratio > 1.0 {
		ratio = 1.0
	}
	return ratio * weight
}

func availabilityScore(avail entities.AvailabilitySummary, cfg *entities.ScoringConfiguration) float64 {
	ceiling := cfg.MaxAvailabilityHours
	if ceiling <= 0 {
		return 0
	}
	hours := avail.HoursInWindow
	if hours > ceiling {
		hours = ceiling
	}
	return hours / ceiling * cfg.Weights.Availability
}

func professionFitScore(req *entities.ServiceRequest, p *entities.Professional, weight float64, signal entities.HolisticSignal) float64 {
	profession := p.PrimaryProfession()
	category := ""
	if profession != nil {
		category = profession.CategoryKey
	}
	return professionFitMultiplier(category, req.LegalContext, signal) * weight
}

func experienceScore(p *entities.Professional, cfg *entities.ScoringConfiguration) float64 {
	weight := cfg.Weights.Experience
	if p.YearsExperience == nil {
		return 0.5 * weight
	}
	ceiling := cfg.MaxExperienceYears
	if ceiling <= 0 {
		return 0
	}
	years := *p.YearsExperience
	if years > ceiling {
		years = ceiling
	}
	if years < 0 {
		years = 0
	}
	return years / ceiling * weight
}

// MatchedMotifs splits the request's motifs into those the candidate
// handles and those it does not. Used for recommendation display fields.
func MatchedMotifs(req *entities.ServiceRequest, p *entities.Professional) (matched, missing []string) {
	for _, key := range req.MotifKeys {
		if p.HasMotif(key) {
			matched = append(matched, key)
		} else {
			missing = append(missing, key)
		}
	}
	return matched, missing
}

// MatchedSpecialties returns the candidate specialty codes present in the
// request's relevant set.
func MatchedSpecialties(req *entities.ServiceRequest, p *entities.Professional) []string {
	var matched []string
	for _, code := range RelevantSpecialtyCodes(req) {
		if p.HasSpecialtyCode(code) {
			matched = append(matched, code)
		}
	}
	return matched
}
