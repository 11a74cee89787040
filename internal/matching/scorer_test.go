package matching_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/clinio/carematch-backend/internal/domain/entities"
	"github.com/clinio/carematch-backend/internal/matching"
)

func floatPtr(v float64) *float64 { return &v }

func testConfig() *entities.ScoringConfiguration {
	return entities.DefaultScoringConfiguration()
}

func adultRequest(motifs ...string) *entities.ServiceRequest {
	return &entities.ServiceRequest{
		ID:                  "req-1",
		DemandType:          entities.DemandTypeIndividual,
		MotifKeys:           motifs,
		ClienteleCategories: []entities.ClienteleCategory{entities.ClienteleAdults},
	}
}

func TestScore_MotifMatchProportional(t *testing.T) {
	cfg := testConfig()
	req := adultRequest("anxiety", "grief", "couple_conflict", "burnout")

	c := matching.Candidate{
		Professional: &entities.Professional{
			ID:        "pro-1",
			Active:    true,
			MotifKeys: []string{"anxiety", "grief"},
		},
	}

	breakdown := matching.Score(req, c, cfg, entities.HolisticSignal{})

	// 2 of 4 requested motifs matched.
	assert.InDelta(t, 0.5*cfg.Weights.MotifMatch, breakdown.MotifMatch, 1e-9)
}

func TestScore_NoMotifsIsVacuousMatch(t *testing.T) {
	cfg := testConfig()
	req := adultRequest()

	c := matching.Candidate{Professional: &entities.Professional{ID: "pro-1", Active: true}}
	breakdown := matching.Score(req, c, cfg, entities.HolisticSignal{})

	assert.InDelta(t, cfg.Weights.MotifMatch, breakdown.MotifMatch, 1e-9)
}

func TestScore_SpecialtyProficiencyWeighted(t *testing.T) {
	cfg := testConfig()
	req := adultRequest()

	primary := matching.Candidate{
		Professional: &entities.Professional{
			ID:     "pro-1",
			Active: true,
			Specialties: []entities.Specialty{
				{Code: "adults", Proficiency: entities.ProficiencyPrimary},
			},
		},
	}
	secondary := matching.Candidate{
		Professional: &entities.Professional{
			ID:     "pro-2",
			Active: true,
			Specialties: []entities.Specialty{
				{Code: "adults", Proficiency: entities.ProficiencySecondary},
			},
		},
	}

	primaryScore := matching.Score(req, primary, cfg, entities.HolisticSignal{})
	secondaryScore := matching.Score(req, secondary, cfg, entities.HolisticSignal{})

	assert.InDelta(t, cfg.Weights.SpecialtyMatch, primaryScore.SpecialtyMatch, 1e-9)
	assert.InDelta(t, 0.7*cfg.Weights.SpecialtyMatch, secondaryScore.SpecialtyMatch, 1e-9)
}

func TestScore_LegalContextExtendsRelevantSpecialties(t *testing.T) {
	req := adultRequest()
	req.LegalContext = true

	codes := matching.RelevantSpecialtyCodes(req)
	assert.ElementsMatch(t, []string{"adults", "legal", "mediation"}, codes)
}

func TestScore_AvailabilityNormalizedByCeiling(t *testing.T) {
	cfg := testConfig()
	req := adultRequest()

	half := matching.Candidate{
		Professional: &entities.Professional{ID: "pro-1", Active: true},
		Availability: entities.AvailabilitySummary{HoursInWindow: cfg.MaxAvailabilityHours / 2},
	}
	over := matching.Candidate{
		Professional: &entities.Professional{ID: "pro-2", Active: true},
		Availability: entities.AvailabilitySummary{HoursInWindow: cfg.MaxAvailabilityHours * 3},
	}

	halfScore := matching.Score(req, half, cfg, entities.HolisticSignal{})
	overScore := matching.Score(req, over, cfg, entities.HolisticSignal{})

	assert.InDelta(t, 0.5*cfg.Weights.Availability, halfScore.Availability, 1e-9)
	// Hours above the ceiling score the full weight, no more.
	assert.InDelta(t, cfg.Weights.Availability, overScore.Availability, 1e-9)
}

func TestScore_MissingExperienceIsNeutral(t *testing.T) {
	cfg := testConfig()
	req := adultRequest()

	unknown := matching.Candidate{Professional: &entities.Professional{ID: "pro-1", Active: true}}
	veteran := matching.Candidate{
		Professional: &entities.Professional{
			ID:              "pro-2",
			Active:          true,
			YearsExperience: floatPtr(cfg.MaxExperienceYears),
		},
	}

	unknownScore := matching.Score(req, unknown, cfg, entities.HolisticSignal{})
	veteranScore := matching.Score(req, veteran, cfg, entities.HolisticSignal{})

	assert.InDelta(t, 0.5*cfg.Weights.Experience, unknownScore.Experience, 1e-9)
	assert.InDelta(t, cfg.Weights.Experience, veteranScore.Experience, 1e-9)
}

func TestScore_TotalBoundedAndReproducible(t *testing.T) {
	cfg := testConfig()
	req := adultRequest("anxiety")
	req.LegalContext = true

	c := matching.Candidate{
		Professional: &entities.Professional{
			ID:              "pro-1",
			Active:          true,
			YearsExperience: floatPtr(8),
			MotifKeys:       []string{"anxiety", "grief"},
			Professions: []entities.Profession{
				{TitleKey: "social_worker", CategoryKey: matching.ProfessionCategorySocialWork, IsPrimary: true},
			},
			Specialties: []entities.Specialty{
				{Code: "adults", Proficiency: entities.ProficiencyPrimary},
				{Code: "legal", Proficiency: entities.ProficiencySecondary},
			},
		},
		Availability: entities.AvailabilitySummary{
			SlotsInWindow: 4,
			HoursInWindow: 10,
			WindowStart:   time.Now(),
		},
	}
	signal := entities.HolisticSignal{}

	first := matching.Score(req, c, cfg, signal)
	second := matching.Score(req, c, cfg, signal)

	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first.Total, 0.0)
	assert.LessOrEqual(t, first.Total, 1.0)
	assert.InDelta(t,
		first.MotifMatch+first.SpecialtyMatch+first.Availability+first.ProfessionFit+first.Experience,
		first.Total, 1e-9)
}

func TestMatchedMotifs(t *testing.T) {
	req := adultRequest("anxiety", "grief", "burnout")
	p := &entities.Professional{MotifKeys: []string{"grief", "anxiety"}}

	matched, missing := matching.MatchedMotifs(req, p)

	assert.Equal(t, []string{"anxiety", "grief"}, matched)
	assert.Equal(t, []string{"burnout"}, missing)
}
