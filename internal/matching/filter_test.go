package matching_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinio/carematch-backend/internal/domain/entities"
	"github.com/clinio/carematch-backend/internal/matching"
)

func availableCandidate(id string, motifs []string, specialties ...string) matching.Candidate {
	specs := make([]entities.Specialty, 0, len(specialties))
	for _, code := range specialties {
		specs = append(specs, entities.Specialty{Code: code, Proficiency: entities.ProficiencyPrimary})
	}
	return matching.Candidate{
		Professional: &entities.Professional{
			ID:          id,
			DisplayName: "Pro " + id,
			Active:      true,
			MotifKeys:   motifs,
			Specialties: specs,
		},
		Availability: entities.AvailabilitySummary{SlotsInWindow: 3, HoursInWindow: 5},
	}
}

func TestPartition_EveryCandidateLandsExactlyOnce(t *testing.T) {
	cfg := testConfig()
	req := adultRequest("anxiety")

	candidates := []matching.Candidate{
		availableCandidate("a", []string{"anxiety"}, "adults"),
		availableCandidate("b", nil, "adults"),
		availableCandidate("c", []string{"anxiety"}),
	}

	result := matching.Partition(req, candidates, cfg, entities.HolisticSignal{})

	assert.Equal(t, len(candidates), len(result.Eligible)+len(result.Excluded))

	// Near-eligible entries are a subset of the exclusions.
	excluded := make(map[string]bool)
	for _, e := range result.Excluded {
		excluded[e.ProfessionalID] = true
	}
	for _, n := range result.NearEligible {
		assert.True(t, excluded[n.ProfessionalID])
	}
}

func TestPartition_InactiveExcludedBeforeConstraints(t *testing.T) {
	cfg := testConfig()
	req := adultRequest("anxiety")

	inactive := availableCandidate("a", []string{"anxiety"}, "adults")
	inactive.Professional.Active = false

	result := matching.Partition(req, []matching.Candidate{inactive}, cfg, entities.HolisticSignal{})

	require.Len(t, result.Excluded, 1)
	assert.Equal(t, entities.ExclusionInactiveStatus, result.Excluded[0].Reason)
	assert.Empty(t, result.Eligible)
	assert.Empty(t, result.NearEligible)
}

func TestPartition_SingleFailureIsNearEligible(t *testing.T) {
	cfg := testConfig()
	req := adultRequest("anxiety")

	nextSlot := time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC)
	c := availableCandidate("a", []string{"anxiety"}, "adults")
	c.Availability = entities.AvailabilitySummary{SlotsInWindow: 0, NextSlot: &nextSlot}

	result := matching.Partition(req, []matching.Candidate{c}, cfg, entities.HolisticSignal{})

	assert.Empty(t, result.Eligible)
	require.Len(t, result.NearEligible, 1)
	near := result.NearEligible[0]
	assert.Equal(t, entities.ExclusionNoAvailability, near.FailedConstraint)
	require.NotNil(t, near.NextAvailable)
	assert.Equal(t, nextSlot, *near.NextAvailable)
	assert.Greater(t, near.WouldBeScore.Total, 0.0)
}

func TestPartition_CoupleDemandRequiresCouplesSpecialty(t *testing.T) {
	cfg := testConfig()
	req := &entities.ServiceRequest{
		ID:                  "req-1",
		DemandType:          entities.DemandTypeCouple,
		MotifKeys:           []string{"couple_conflict"},
		ClienteleCategories: []entities.ClienteleCategory{entities.ClienteleAdults, entities.ClienteleCouples},
	}

	with := availableCandidate("a", []string{"couple_conflict"}, "adults", "couples")
	without := availableCandidate("b", []string{"couple_conflict"}, "adults")

	result := matching.Partition(req, []matching.Candidate{with, without}, cfg, entities.HolisticSignal{})

	require.Len(t, result.Eligible, 1)
	assert.Equal(t, "a", result.Eligible[0].Professional.ID)
	require.Len(t, result.NearEligible, 1)
	assert.Equal(t, entities.ExclusionNoDemandTypeSpecialty, result.NearEligible[0].FailedConstraint)
}

func TestPartition_MultipleFailuresListedInDetails(t *testing.T) {
	cfg := testConfig()
	req := adultRequest("anxiety")

	c := availableCandidate("a", []string{"grief"})
	c.Availability = entities.AvailabilitySummary{}

	result := matching.Partition(req, []matching.Candidate{c}, cfg, entities.HolisticSignal{})

	assert.Empty(t, result.NearEligible, "multi-failure candidates are not near-eligible")
	require.Len(t, result.Excluded, 1)

	exclusion := result.Excluded[0]
	// Constraint order is fixed, so availability is the primary reason.
	assert.Equal(t, entities.ExclusionNoAvailability, exclusion.Reason)

	additional, ok := exclusion.Details["additional_failures"].([]string)
	require.True(t, ok)
	assert.Contains(t, additional, string(entities.ExclusionNoMotifOverlap))
	assert.Contains(t, additional, string(entities.ExclusionNoClienteleMatch))
}

func TestPartition_TogglesDisableConstraints(t *testing.T) {
	cfg := testConfig()
	cfg.RequireMotifOverlap = false
	cfg.RequireClienteleMatch = false

	req := adultRequest("anxiety")
	c := availableCandidate("a", []string{"grief"})

	result := matching.Partition(req, []matching.Candidate{c}, cfg, entities.HolisticSignal{})

	assert.Len(t, result.Eligible, 1)
	assert.Empty(t, result.Excluded)
}

func TestPartition_DisabledWindowSkipsAvailabilityConstraint(t *testing.T) {
	cfg := testConfig()
	cfg.AvailabilityWindowDays = 0

	req := adultRequest("anxiety")
	c := availableCandidate("a", []string{"anxiety"}, "adults")
	c.Availability = entities.AvailabilitySummary{}

	result := matching.Partition(req, []matching.Candidate{c}, cfg, entities.HolisticSignal{})

	assert.Len(t, result.Eligible, 1)
}
