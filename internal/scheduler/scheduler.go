package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/config"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/metrics"
)

// Clock abstracts time for the scan loops so tests can drive them with a
// fixed instant.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Scheduler runs three independent scan loops:
//   - a daily morning scan notifying doctors of follow-ups due today
//   - a daily evening scan notifying doctors of overdue follow-ups
//   - an hourly scan notifying doctors of appointments starting soon
//
// Each loop runs in its own goroutine; a failing scan never stops the loop,
// and one item failing never stops the rest of the batch.
type Scheduler struct {
	followUps     repository.FollowUpRepository
	appointments  repository.AppointmentRepository
	notifications repository.NotificationRepository

	cfg     config.SchedulerConfig
	loc     *time.Location
	clock   Clock
	metrics *metrics.Metrics
	logger  zerolog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func New(
	followUps repository.FollowUpRepository,
	appointments repository.AppointmentRepository,
	notifications repository.NotificationRepository,
	cfg config.SchedulerConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduler timezone %q: %w", cfg.Timezone, err)
	}
	return &Scheduler{
		followUps:     followUps,
		appointments:  appointments,
		notifications: notifications,
		cfg:           cfg,
		loc:           loc,
		clock:         realClock{},
		metrics:       m,
		logger:        logger.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Start launches the scan loops. It returns immediately; Stop blocks until
// all loops have exited.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(3)
	go s.dailyLoop(ctx, "due", s.cfg.DueScanTime, s.ScanDue)
	go s.dailyLoop(ctx, "overdue", s.cfg.OverdueScanTime, s.ScanOverdue)
	go s.intervalLoop(ctx, "upcoming", s.cfg.UpcomingScanInterval, s.ScanUpcoming)

	s.logger.Info().
		Str("timezone", s.cfg.Timezone).
		Str("due_scan", s.cfg.DueScanTime).
		Str("overdue_scan", s.cfg.OverdueScanTime).
		Dur("upcoming_interval", s.cfg.UpcomingScanInterval).
		Msg("scheduler started")
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info().Msg("scheduler stopped")
}

// dailyLoop fires the scan at the configured wall-clock time in the
// scheduler's timezone, once per day.
func (s *Scheduler) dailyLoop(ctx context.Context, name, at string, scan func(context.Context) error) {
	defer s.wg.Done()

	for {
		next, err := s.nextRun(at)
		if err != nil {
			s.logger.Error().Err(err).Str("scan", name).Msg("invalid scan time, loop disabled")
			return
		}

		timer := time.NewTimer(next.Sub(s.clock.Now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.run(ctx, name, scan)
		}
	}
}

func (s *Scheduler) intervalLoop(ctx context.Context, name string, every time.Duration, scan func(context.Context) error) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx, name, scan)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, name string, scan func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.ScanFailures.WithLabelValues(name).Inc()
			s.logger.Error().Str("scan", name).Interface("panic", r).Msg("scan panicked")
		}
	}()

	start := s.clock.Now()
	s.metrics.ScanRuns.WithLabelValues(name).Inc()

	err := scan(ctx)
	s.metrics.ScanDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.ScanFailures.WithLabelValues(name).Inc()
		s.logger.Error().Err(err).Str("scan", name).Msg("scan failed")
		return
	}
	s.logger.Debug().Str("scan", name).Msg("scan completed")
}

// nextRun returns the next occurrence of the "HH:MM" wall-clock time in the
// scheduler's timezone, strictly after now.
func (s *Scheduler) nextRun(at string) (time.Time, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse scan time %q: %w", at, err)
	}

	now := s.clock.Now().In(s.loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, s.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}

// ScanDue notifies each assigned doctor about follow-ups due today.
func (s *Scheduler) ScanDue(ctx context.Context) error {
	today := s.today()
	tasks, err := s.followUps.ListDueOn(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to list due follow-ups: %w", err)
	}

	for _, task := range tasks {
		n := &model.Notification{
			UserID:      task.DoctorID,
			Type:        model.NotificationTypeFollowUp,
			Title:       "Follow-up due today",
			Message:     fmt.Sprintf("Follow-up %q is due today", task.Title),
			RelatedID:   &task.ID,
			RelatedType: relatedFollowUp(),
		}
		s.notify(ctx, "due", task.ID.String(), n)
	}
	return nil
}

// ScanOverdue notifies each assigned doctor about follow-ups past their due
// date, including how many days overdue each one is.
func (s *Scheduler) ScanOverdue(ctx context.Context) error {
	today := s.today()
	tasks, err := s.followUps.ListOverdue(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to list overdue follow-ups: %w", err)
	}

	for _, task := range tasks {
		days := task.DaysOverdue(s.clock.Now())
		n := &model.Notification{
			UserID:      task.DoctorID,
			Type:        model.NotificationTypeAlert,
			Title:       "Follow-up overdue",
			Message:     fmt.Sprintf("Follow-up %q is %d day(s) overdue", task.Title, days),
			RelatedID:   &task.ID,
			RelatedType: relatedFollowUp(),
		}
		s.notify(ctx, "overdue", task.ID.String(), n)
	}
	return nil
}

// ScanUpcoming notifies doctors about scheduled appointments starting within
// the configured window.
func (s *Scheduler) ScanUpcoming(ctx context.Context) error {
	now := s.clock.Now().In(s.loc)
	window := time.Duration(s.cfg.UpcomingWindowHours) * time.Hour

	appointments, err := s.appointments.ListStartingBetween(ctx, now, now.Add(window))
	if err != nil {
		return fmt.Errorf("failed to list upcoming appointments: %w", err)
	}

	relatedType := "appointment"
	for _, appt := range appointments {
		n := &model.Notification{
			UserID:      appt.DoctorID,
			Type:        model.NotificationTypeAppointment,
			Title:       "Upcoming appointment",
			Message:     fmt.Sprintf("You have an appointment at %s", appt.Time),
			RelatedID:   &appt.ID,
			RelatedType: &relatedType,
		}
		s.notify(ctx, "upcoming", appt.ID.String(), n)
	}
	return nil
}

// notify creates one notification; a failure is logged and counted but never
// aborts the scan.
func (s *Scheduler) notify(ctx context.Context, scan, itemID string, n *model.Notification) {
	if err := s.notifications.Create(ctx, n); err != nil {
		s.metrics.ScanFailures.WithLabelValues(scan).Inc()
		s.logger.Error().Err(err).
			Str("scan", scan).
			Str("item_id", itemID).
			Msg("failed to create notification")
		return
	}
	s.metrics.ScanItemsNotified.WithLabelValues(scan).Inc()
}

func (s *Scheduler) today() time.Time {
	now := s.clock.Now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func relatedFollowUp() *string {
	t := "follow_up_task"
	return &t
}
