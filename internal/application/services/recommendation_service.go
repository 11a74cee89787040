package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinio/carematch-backend/internal/domain/entities"
	"github.com/clinio/carematch-backend/internal/domain/providers"
	"github.com/clinio/carematch-backend/internal/domain/repositories"
	"github.com/clinio/carematch-backend/internal/infrastructure/observability"
	"github.com/clinio/carematch-backend/internal/matching"
)

const (
	// DefaultTopN is how many ranked recommendations a run produces.
	DefaultTopN = 3

	// advisoryScale converts the [-5, 5] advisory adjustment into score
	// units before it is added to the deterministic total.
	advisoryScale = 0.1

	currentResultCacheSeconds = 300
)

// GenerateOptions controls one Generate call.
type GenerateOptions struct {
	ConfigKey       string
	ForceRegenerate bool
	Actor           string
}

// RecommendationService orchestrates the matching pipeline: collect,
// classify, filter, score, refine, rank, persist.
type RecommendationService struct {
	collector       *CollectorService
	refiner         *AdvisoryRefiner
	recommendations repositories.RecommendationRepository
	audits          repositories.AuditRepository
	cache           providers.CacheProvider
	metrics         *observability.Metrics
	topN            int

	// One mutex per request id so concurrent regenerations of the same
	// request cannot both end up marked current.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewRecommendationService creates the orchestrator. Cache, audits and
// metrics may be nil; the service degrades gracefully without them.
func NewRecommendationService(
	collector *CollectorService,
	refiner *AdvisoryRefiner,
	recommendations repositories.RecommendationRepository,
	audits repositories.AuditRepository,
	cache providers.CacheProvider,
	metrics *observability.Metrics,
	topN int,
) *RecommendationService {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &RecommendationService{
		collector:       collector,
		refiner:         refiner,
		recommendations: recommendations,
		audits:          audits,
		cache:           cache,
		metrics:         metrics,
		topN:            topN,
		locks:           make(map[string]*sync.Mutex),
	}
}

// Generate runs the full matching pipeline for a request and persists the
// result as the new current run. With ForceRegenerate false an existing
// current run is returned unchanged, with no recomputation.
func (s *RecommendationService) Generate(ctx context.Context, requestID string, opts GenerateOptions) (*entities.RecommendationResult, error) {
	lock := s.lockFor(requestID)
	lock.Lock()
	defer lock.Unlock()

	logger := observability.LoggerFromContext(ctx)

	if !opts.ForceRegenerate {
		existing, err := s.recommendations.GetCurrent(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			logger.Debug().Str("request_id", requestID).Msg("returning existing current recommendation run")
			return existing, nil
		}
	}

	start := time.Now()

	snapshot, err := s.collector.Collect(ctx, requestID, opts.ConfigKey)
	if err != nil {
		return nil, err
	}
	req := snapshot.Request
	cfg := snapshot.Config

	signal := matching.ClassifyHolisticIntent(req.FreeText())
	partition := matching.Partition(req, snapshot.Candidates, cfg, signal)

	scoredCandidates := make([]scoredCandidate, 0, len(partition.Eligible))
	for _, c := range partition.Eligible {
		scoredCandidates = append(scoredCandidates, scoredCandidate{
			candidate: c,
			breakdown: matching.Score(req, c, cfg, signal),
		})
	}

	advisory := s.refiner.Refine(ctx, buildAdvisoryInput(req, signal, scoredCandidates), cfg)
	adviceByID := make(map[string]providers.CandidateAdvice, len(advisory.Advice))
	for _, a := range advisory.Advice {
		adviceByID[a.CandidateID] = a
	}

	for i := range scoredCandidates {
		sc := &scoredCandidates[i]
		if advice, ok := adviceByID[sc.candidate.Professional.ID]; ok {
			adj := advice.Adjustment
			sc.adjustment = &adj
			sc.bullets = advice.Bullets
		}
		sc.adjustedTotal = sc.breakdown.Total
		if sc.adjustment != nil {
			sc.adjustedTotal += *sc.adjustment * advisoryScale
		}
	}

	sort.SliceStable(scoredCandidates, func(i, j int) bool {
		if scoredCandidates[i].adjustedTotal != scoredCandidates[j].adjustedTotal {
			return scoredCandidates[i].adjustedTotal > scoredCandidates[j].adjustedTotal
		}
		return scoredCandidates[i].candidate.Professional.ID < scoredCandidates[j].candidate.Professional.ID
	})

	top := scoredCandidates
	if len(top) > s.topN {
		top = top[:s.topN]
	}

	details := make([]entities.RecommendationDetail, 0, len(top))
	for i, sc := range top {
		matched, missing := matching.MatchedMotifs(req, sc.candidate.Professional)
		details = append(details, entities.RecommendationDetail{
			ID:                 uuid.New().String(),
			ProfessionalID:     sc.candidate.Professional.ID,
			DisplayName:        sc.candidate.Professional.DisplayName,
			Rank:               i + 1,
			Score:              sc.breakdown,
			AdjustedTotal:      sc.adjustedTotal,
			AdvisoryAdjustment: sc.adjustment,
			AdvisoryBullets:    sc.bullets,
			MatchedMotifs:      matched,
			MissingMotifs:      missing,
			MatchedSpecialties: matching.MatchedSpecialties(req, sc.candidate.Professional),
			Availability:       sc.candidate.Availability,
		})
	}

	result := &entities.RecommendationResult{
		ID:              uuid.New().String(),
		RequestID:       requestID,
		Details:         details,
		Exclusions:      partition.Excluded,
		NearEligible:    partition.NearEligible,
		AdvisorySummary: advisory.Summary,
		SoftPreferences: advisory.Preferences,
		HolisticSignal:  signal,
		ConfigKey:       cfg.Key,
		ConfigVersion:   cfg.Version,
		GeneratedAt:     snapshot.Now,
		ProcessingMs:    time.Since(start).Milliseconds(),
		IsCurrent:       true,
	}

	// An abandoned run must not supersede the previous current one.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.recommendations.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("persist recommendation run: %w", err)
	}

	s.invalidateCurrentCache(ctx, requestID)
	s.logAudit(ctx, &entities.AuditEvent{
		RecommendationID: result.ID,
		RequestID:        requestID,
		EventType:        entities.AuditEventGenerated,
		Actor:            opts.Actor,
		Context: map[string]string{
			"config_key":    cfg.Key,
			"force":         fmt.Sprintf("%t", opts.ForceRegenerate),
			"eligible":      fmt.Sprintf("%d", len(partition.Eligible)),
			"excluded":      fmt.Sprintf("%d", len(partition.Excluded)),
			"near_eligible": fmt.Sprintf("%d", len(partition.NearEligible)),
		},
	})

	if s.metrics != nil {
		observability.RecordMatchingRun(ctx, s.metrics, len(details), time.Since(start))
	}
	logger.Info().
		Str("request_id", requestID).
		Int("recommendations", len(details)).
		Int("exclusions", len(partition.Excluded)).
		Int("near_eligible", len(partition.NearEligible)).
		Int64("processing_ms", result.ProcessingMs).
		Msg("recommendation run generated")

	return result, nil
}

// FetchCurrent returns the current run for a request, or nil when none
// exists. Reads go through the cache when one is configured.
func (s *RecommendationService) FetchCurrent(ctx context.Context, requestID string) (*entities.RecommendationResult, error) {
	key := currentCacheKey(requestID)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var cached entities.RecommendationResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				if s.metrics != nil {
					observability.RecordCacheHit(ctx, s.metrics, key)
				}
				return &cached, nil
			}
		} else if s.metrics != nil {
			observability.RecordCacheMiss(ctx, s.metrics, key)
		}
	}

	result, err := s.recommendations.GetCurrent(ctx, requestID)
	if err != nil || result == nil {
		return result, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, raw, currentResultCacheSeconds); err != nil {
				observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to cache current recommendation")
			}
		}
	}
	return result, nil
}

// LogView records a "viewed" audit event for a run. Fire and forget:
// failures are logged, never returned.
func (s *RecommendationService) LogView(ctx context.Context, recommendationID, actor string) {
	requestID := ""
	if run, err := s.recommendations.GetByID(ctx, recommendationID); err == nil && run != nil {
		requestID = run.RequestID
	}
	s.logAudit(ctx, &entities.AuditEvent{
		RecommendationID: recommendationID,
		RequestID:        requestID,
		EventType:        entities.AuditEventViewed,
		Actor:            actor,
	})
}

func (s *RecommendationService) logAudit(ctx context.Context, event *entities.AuditEvent) {
	if s.audits == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if err := s.audits.LogEvent(context.WithoutCancel(ctx), event); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("event_type", string(event.EventType)).
			Str("recommendation_id", event.RecommendationID).
			Msg("audit write failed")
	}
}

func (s *RecommendationService) invalidateCurrentCache(ctx context.Context, requestID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, currentCacheKey(requestID)); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to invalidate recommendation cache")
	}
}

func (s *RecommendationService) lockFor(requestID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.locks[requestID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[requestID] = lock
	}
	return lock
}

func currentCacheKey(requestID string) string {
	return "recommendation:current:" + requestID
}

type scoredCandidate struct {
	candidate     matching.Candidate
	breakdown     entities.ScoreBreakdown
	adjustment    *float64
	bullets       []string
	adjustedTotal float64
}

// buildAdvisoryInput assembles the sanitized advisory payload. Only
// aggregated, non-identifying candidate fields cross this boundary.
func buildAdvisoryInput(req *entities.ServiceRequest, signal entities.HolisticSignal, scored []scoredCandidate) *providers.AdvisoryInput {
	input := &providers.AdvisoryInput{
		DemandType:          req.DemandType,
		Urgency:             req.Urgency,
		MotifKeys:           req.MotifKeys,
		ClienteleCategories: req.ClienteleCategories,
		LegalContext:        req.LegalContext,
		Holistic:            signal,
	}
	for _, sc := range scored {
		category := ""
		if prof := sc.candidate.Professional.PrimaryProfession(); prof != nil {
			category = prof.CategoryKey
		}
		matched, _ := matching.MatchedMotifs(req, sc.candidate.Professional)
		input.Candidates = append(input.Candidates, providers.AdvisoryCandidate{
			ID:                 sc.candidate.Professional.ID,
			ProfessionCategory: category,
			DeterministicScore: sc.breakdown.Total,
			MatchedMotifCount:  len(matched),
			SlotsInWindow:      sc.candidate.Availability.SlotsInWindow,
			YearsExperience:    sc.candidate.Professional.YearsExperience,
		})
	}
	return input
}
