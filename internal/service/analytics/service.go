package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/clinicore/clinic-api/internal/repository"
)

// Dashboard aggregates per-clinic counters for the overview page.
type Dashboard struct {
	ClinicID           uuid.UUID      `json:"clinic_id"`
	Appointments       map[string]int `json:"appointments"`
	Consultations      map[string]int `json:"consultations"`
	Referrals          map[string]int `json:"referrals"`
	FollowUps          map[string]int `json:"follow_ups"`
	AppointmentsPerDay map[string]int `json:"appointments_per_day"`
	GeneratedAt        time.Time      `json:"generated_at"`
}

type Service interface {
	Dashboard(ctx context.Context, clinicID uuid.UUID) (*Dashboard, error)
}

type service struct {
	repo  repository.AnalyticsRepository
	cache *gocache.Cache
	now   func() time.Time
}

// NewService caches dashboards per clinic; aggregation queries are too heavy
// to run on every page load.
func NewService(repo repository.AnalyticsRepository, ttl time.Duration) Service {
	return &service{
		repo:  repo,
		cache: gocache.New(ttl, 2*ttl),
		now:   time.Now,
	}
}

func (s *service) Dashboard(ctx context.Context, clinicID uuid.UUID) (*Dashboard, error) {
	key := clinicID.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*Dashboard), nil
	}

	d := &Dashboard{ClinicID: clinicID, GeneratedAt: s.now()}

	var err error
	if d.Appointments, err = s.repo.CountsByStatus(ctx, clinicID, "appointments"); err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}
	if d.Consultations, err = s.repo.CountsByStatus(ctx, clinicID, "consultations"); err != nil {
		return nil, fmt.Errorf("failed to count consultations: %w", err)
	}
	if d.Referrals, err = s.repo.CountsByStatus(ctx, clinicID, "referrals"); err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", err)
	}
	if d.FollowUps, err = s.repo.CountsByStatus(ctx, clinicID, "follow_up_tasks"); err != nil {
		return nil, fmt.Errorf("failed to count follow-up tasks: %w", err)
	}

	to := s.now()
	from := to.AddDate(0, 0, -30)
	if d.AppointmentsPerDay, err = s.repo.AppointmentsPerDay(ctx, clinicID, from, to); err != nil {
		return nil, fmt.Errorf("failed to count appointments per day: %w", err)
	}

	s.cache.Set(key, d, gocache.DefaultExpiration)
	return d, nil
}
