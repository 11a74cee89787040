package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clinio/carematch-backend/internal/domain/entities"
	"github.com/clinio/carematch-backend/internal/domain/repositories"
	"github.com/clinio/carematch-backend/internal/matching"
)

const (
	// DefaultSlotMinutes is the nominal session length used to convert
	// available minutes into an approximate slot count.
	DefaultSlotMinutes = 50

	// DefaultFanOutLimit caps concurrent in-flight availability fetches so
	// latency stays bounded as the candidate pool grows.
	DefaultFanOutLimit = 8

	// nextAvailableLookaheadDays is how far past the window the collector
	// looks for a near-eligible candidate's next available date.
	nextAvailableLookaheadDays = 60
)

// consumingStatuses are the booking states that occupy calendar time.
var consumingStatuses = []entities.BookingStatus{
	entities.BookingStatusConfirmed,
	entities.BookingStatusPending,
}

// MatchingSnapshot is one consistent input bundle for a single matching
// run: the request, the candidate pool with computed availability, and the
// active configuration.
type MatchingSnapshot struct {
	Request    *entities.ServiceRequest
	Candidates []matching.Candidate
	Config     *entities.ScoringConfiguration
	Now        time.Time
}

// CollectorService assembles matching snapshots from the data store.
type CollectorService struct {
	requests       repositories.RequestRepository
	professionals  repositories.ProfessionalRepository
	schedules      repositories.ScheduleRepository
	configurations repositories.ConfigurationRepository

	slotMinutes int
	fanOutLimit int
	now         func() time.Time
}

// NewCollectorService creates a collector. Zero slotMinutes or fanOutLimit
// fall back to the defaults.
func NewCollectorService(
	requests repositories.RequestRepository,
	professionals repositories.ProfessionalRepository,
	schedules repositories.ScheduleRepository,
	configurations repositories.ConfigurationRepository,
	slotMinutes int,
	fanOutLimit int,
) *CollectorService {
	if slotMinutes <= 0 {
		slotMinutes = DefaultSlotMinutes
	}
	if fanOutLimit <= 0 {
		fanOutLimit = DefaultFanOutLimit
	}
	return &CollectorService{
		requests:       requests,
		professionals:  professionals,
		schedules:      schedules,
		configurations: configurations,
		slotMinutes:    slotMinutes,
		fanOutLimit:    fanOutLimit,
		now:            time.Now,
	}
}

// Collect fetches the request, the active candidate pool and the scoring
// configuration concurrently, then fans out one availability computation
// per candidate with bounded parallelism.
func (s *CollectorService) Collect(ctx context.Context, requestID, configKey string) (*MatchingSnapshot, error) {
	now := s.now()

	var (
		request *entities.ServiceRequest
		pool    []*entities.Professional
		cfg     *entities.ScoringConfiguration
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		request, err = s.requests.GetByID(gctx, requestID)
		if err != nil {
			return fmt.Errorf("fetch request %s: %w", requestID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		pool, err = s.professionals.ListActive(gctx)
		if err != nil {
			return fmt.Errorf("fetch active professionals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		key := configKey
		if key == "" {
			key = entities.DefaultConfigKey
		}
		stored, err := s.configurations.GetByKey(gctx, key)
		if err != nil {
			return fmt.Errorf("fetch configuration %q: %w", key, err)
		}
		if stored != nil {
			cfg = stored
		} else {
			cfg = entities.DefaultScoringConfiguration()
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	request.DeriveClientele(now)

	candidates, err := s.collectAvailability(ctx, pool, cfg, now)
	if err != nil {
		return nil, err
	}

	return &MatchingSnapshot{
		Request:    request,
		Candidates: candidates,
		Config:     cfg,
		Now:        now,
	}, nil
}

// collectAvailability computes per-candidate availability over the
// configured window with at most fanOutLimit fetches in flight.
func (s *CollectorService) collectAvailability(ctx context.Context, pool []*entities.Professional, cfg *entities.ScoringConfiguration, now time.Time) ([]matching.Candidate, error) {
	candidates := make([]matching.Candidate, len(pool))

	if cfg.AvailabilityWindowDays <= 0 {
		for i, p := range pool {
			candidates[i] = matching.Candidate{Professional: p}
		}
		return candidates, nil
	}

	from := now
	to := now.AddDate(0, 0, cfg.AvailabilityWindowDays)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanOutLimit)
	for i, p := range pool {
		g.Go(func() error {
			summary, err := s.availabilityFor(gctx, p.ID, now, from, to)
			if err != nil {
				return err
			}
			candidates[i] = matching.Candidate{Professional: p, Availability: summary}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (s *CollectorService) availabilityFor(ctx context.Context, professionalID string, now, from, to time.Time) (entities.AvailabilitySummary, error) {
	ids := []string{professionalID}

	blocks, err := s.schedules.ListAvailableBlocks(ctx, ids, from, to)
	if err != nil {
		return entities.AvailabilitySummary{}, fmt.Errorf("fetch schedule blocks for %s: %w", professionalID, err)
	}
	bookings, err := s.schedules.ListBookings(ctx, ids, from, to, consumingStatuses)
	if err != nil {
		return entities.AvailabilitySummary{}, fmt.Errorf("fetch bookings for %s: %w", professionalID, err)
	}

	summary := ComputeAvailability(blocks, bookings, now, from, to, s.slotMinutes)
	if summary.SlotsInWindow > 0 {
		return summary, nil
	}

	// No slot inside the window: look further ahead for the next date the
	// candidate would become available, for near-eligible display.
	lookaheadEnd := to.AddDate(0, 0, nextAvailableLookaheadDays)
	laterBlocks, err := s.schedules.ListAvailableBlocks(ctx, ids, to, lookaheadEnd)
	if err != nil {
		return entities.AvailabilitySummary{}, fmt.Errorf("fetch lookahead blocks for %s: %w", professionalID, err)
	}
	laterBookings, err := s.schedules.ListBookings(ctx, ids, to, lookaheadEnd, consumingStatuses)
	if err != nil {
		return entities.AvailabilitySummary{}, fmt.Errorf("fetch lookahead bookings for %s: %w", professionalID, err)
	}
	later := ComputeAvailability(laterBlocks, laterBookings, now, to, lookaheadEnd, s.slotMinutes)
	summary.NextSlot = later.NextSlot
	return summary, nil
}
