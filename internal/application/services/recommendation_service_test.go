package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinio/carematch-backend/internal/application/services"
	"github.com/clinio/carematch-backend/internal/domain/entities"
	"github.com/clinio/carematch-backend/internal/domain/providers"
)

type fakeRecommendationRepo struct {
	mu      sync.Mutex
	runs    []*entities.RecommendationResult
	creates int
}

func (f *fakeRecommendationRepo) Create(ctx context.Context, result *entities.RecommendationResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, run := range f.runs {
		if run.RequestID == result.RequestID {
			run.IsCurrent = false
		}
	}
	f.runs = append(f.runs, result)
	f.creates++
	return nil
}

func (f *fakeRecommendationRepo) GetCurrent(ctx context.Context, requestID string) (*entities.RecommendationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, run := range f.runs {
		if run.RequestID == requestID && run.IsCurrent {
			return run, nil
		}
	}
	return nil, nil
}

func (f *fakeRecommendationRepo) GetByID(ctx context.Context, id string) (*entities.RecommendationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, run := range f.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, nil
}

type fakeAuditRepo struct {
	mu     sync.Mutex
	events []*entities.AuditEvent
}

func (f *fakeAuditRepo) LogEvent(ctx context.Context, event *entities.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeAuditRepo) eventTypes() []entities.AuditEventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	var types []entities.AuditEventType
	for _, e := range f.events {
		types = append(types, e.EventType)
	}
	return types
}

type serviceFixture struct {
	service  *services.RecommendationService
	requests *fakeRequestRepo
	runs     *fakeRecommendationRepo
	audits   *fakeAuditRepo
}

func newServiceFixture(t *testing.T, provider providers.AdvisoryProvider, pool []*entities.Professional, schedules *fakeScheduleRepo) *serviceFixture {
	t.Helper()

	request := &entities.ServiceRequest{
		ID:         "req-1",
		DemandType: entities.DemandTypeIndividual,
		MotifKeys:  []string{"anxiety"},
	}
	requests := &fakeRequestRepo{requests: map[string]*entities.ServiceRequest{request.ID: request}}
	collector := services.NewCollectorService(
		requests,
		&fakeProfessionalRepo{pool: pool},
		schedules,
		&fakeConfigurationRepo{configs: map[string]*entities.ScoringConfiguration{}},
		50,
		4,
	)
	runs := &fakeRecommendationRepo{}
	audits := &fakeAuditRepo{}
	service := services.NewRecommendationService(
		collector,
		services.NewAdvisoryRefiner(provider, time.Second),
		runs,
		audits,
		nil,
		nil,
		3,
	)
	return &serviceFixture{service: service, requests: requests, runs: runs, audits: audits}
}

func eligiblePool(ids ...string) []*entities.Professional {
	var pool []*entities.Professional
	for i, id := range ids {
		years := float64(2 + 3*i)
		pool = append(pool, &entities.Professional{
			ID:              id,
			DisplayName:     "Pro " + id,
			Active:          true,
			YearsExperience: &years,
			MotifKeys:       []string{"anxiety"},
		})
	}
	return pool
}

func openSchedule(professionalIDs ...string) *fakeScheduleRepo {
	start := time.Now().AddDate(0, 0, 1).Truncate(time.Hour)
	schedules := &fakeScheduleRepo{}
	for _, id := range professionalIDs {
		schedules.blocks = append(schedules.blocks, entities.ScheduleBlock{
			ProfessionalID: id,
			Kind:           entities.ScheduleBlockAvailable,
			StartsAt:       start,
			EndsAt:         start.Add(5 * time.Hour),
		})
	}
	return schedules
}

func TestGenerate_PersistsRankedRun(t *testing.T) {
	fixture := newServiceFixture(t, nil, eligiblePool("pro-1", "pro-2"), openSchedule("pro-1", "pro-2"))

	result, err := fixture.service.Generate(context.Background(), "req-1", services.GenerateOptions{Actor: "tester"})

	require.NoError(t, err)
	require.Len(t, result.Details, 2)
	assert.Equal(t, 1, result.Details[0].Rank)
	assert.Equal(t, 2, result.Details[1].Rank)
	assert.GreaterOrEqual(t, result.Details[0].AdjustedTotal, result.Details[1].AdjustedTotal)
	assert.True(t, result.IsCurrent)
	assert.Equal(t, entities.DefaultConfigKey, result.ConfigKey)

	// More experience scores higher; everything else is identical.
	assert.Equal(t, "pro-2", result.Details[0].ProfessionalID)

	assert.Equal(t, 1, fixture.runs.creates)
	assert.Contains(t, fixture.audits.eventTypes(), entities.AuditEventGenerated)
}

func TestGenerate_ExistingCurrentRunReturnedWithoutRecompute(t *testing.T) {
	fixture := newServiceFixture(t, nil, eligiblePool("pro-1"), openSchedule("pro-1"))

	first, err := fixture.service.Generate(context.Background(), "req-1", services.GenerateOptions{})
	require.NoError(t, err)

	collectsAfterFirst := fixture.requests.calls
	second, err := fixture.service.Generate(context.Background(), "req-1", services.GenerateOptions{})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, collectsAfterFirst, fixture.requests.calls, "no recompute without force")
	assert.Equal(t, 1, fixture.runs.creates)
}

func TestGenerate_ForceSupersedesCurrentRun(t *testing.T) {
	fixture := newServiceFixture(t, nil, eligiblePool("pro-1"), openSchedule("pro-1"))

	first, err := fixture.service.Generate(context.Background(), "req-1", services.GenerateOptions{})
	require.NoError(t, err)

	second, err := fixture.service.Generate(context.Background(), "req-1", services.GenerateOptions{ForceRegenerate: true})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, fixture.runs.creates)

	current, err := fixture.runs.GetCurrent(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)
}

func TestGenerate_AdvisoryAdjustmentCanReorder(t *testing.T) {
	// Boost the lower-scored candidate to the maximum adjustment.
	provider := &stubAdvisoryProvider{
		output: &providers.AdvisoryOutput{
			Summary: "boost pro-1",
			Advice: []providers.CandidateAdvice{
				{CandidateID: "pro-1", Adjustment: 5, Bullets: []string{"better stated-preference fit"}},
				{CandidateID: "pro-2", Adjustment: 0, Bullets: []string{"solid"}},
			},
		},
	}
	fixture := newServiceFixture(t, provider, eligiblePool("pro-1", "pro-2"), openSchedule("pro-1", "pro-2"))

	result, err := fixture.service.Generate(context.Background(), "req-1", services.GenerateOptions{})

	require.NoError(t, err)
	require.Len(t, result.Details, 2)
	assert.Equal(t, "pro-1", result.Details[0].ProfessionalID)
	require.NotNil(t, result.Details[0].AdvisoryAdjustment)
	assert.Equal(t, 5.0, *result.Details[0].AdvisoryAdjustment)
	assert.Equal(t, "boost pro-1", result.AdvisorySummary)
}

func TestGenerate_AdvisoryFailureKeepsDeterministicRanking(t *testing.T) {
	provider := &stubAdvisoryProvider{err: errors.New("service unavailable")}
	fixture := newServiceFixture(t, provider, eligiblePool("pro-1", "pro-2"), openSchedule("pro-1", "pro-2"))

	result, err := fixture.service.Generate(context.Background(), "req-1", services.GenerateOptions{})

	require.NoError(t, err, "advisory failure must not fail the run")
	require.Len(t, result.Details, 2)
	for _, d := range result.Details {
		if d.AdvisoryAdjustment != nil {
			assert.Equal(t, 0.0, *d.AdvisoryAdjustment)
		}
		assert.InDelta(t, d.Score.Total, d.AdjustedTotal, 1e-9)
	}
}

func TestGenerate_TopNLimitsDetails(t *testing.T) {
	ids := []string{"pro-1", "pro-2", "pro-3", "pro-4", "pro-5"}
	fixture := newServiceFixture(t, nil, eligiblePool(ids...), openSchedule(ids...))

	result, err := fixture.service.Generate(context.Background(), "req-1", services.GenerateOptions{})

	require.NoError(t, err)
	assert.Len(t, result.Details, 3)
}

func TestGenerate_ZeroEligiblePersistsEmptyRun(t *testing.T) {
	// Active pool, but nobody handles the requested motif.
	pool := eligiblePool("pro-1")
	pool[0].MotifKeys = []string{"grief"}
	fixture := newServiceFixture(t, nil, pool, openSchedule("pro-1"))

	result, err := fixture.service.Generate(context.Background(), "req-1", services.GenerateOptions{})

	require.NoError(t, err)
	assert.Empty(t, result.Details)
	assert.Len(t, result.Exclusions, 1)
	assert.Len(t, result.NearEligible, 1)
	assert.Equal(t, 1, fixture.runs.creates)
}

func TestFetchCurrent_NoRunReturnsNil(t *testing.T) {
	fixture := newServiceFixture(t, nil, nil, &fakeScheduleRepo{})

	result, err := fixture.service.FetchCurrent(context.Background(), "req-1")

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestLogView_RecordsAuditEvent(t *testing.T) {
	fixture := newServiceFixture(t, nil, eligiblePool("pro-1"), openSchedule("pro-1"))

	run, err := fixture.service.Generate(context.Background(), "req-1", services.GenerateOptions{})
	require.NoError(t, err)

	fixture.service.LogView(context.Background(), run.ID, "viewer")

	types := fixture.audits.eventTypes()
	assert.Contains(t, types, entities.AuditEventViewed)

	last := fixture.audits.events[len(fixture.audits.events)-1]
	assert.Equal(t, "req-1", last.RequestID)
	assert.Equal(t, "viewer", last.Actor)
}
