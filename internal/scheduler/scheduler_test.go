package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/internal/config"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/pkg/metrics"
)

// Registered once; promauto panics on duplicate registration.
var testMetrics = metrics.New("scheduler_test")

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeFollowUpRepo struct {
	tasks []*model.FollowUpTask
}

func (f *fakeFollowUpRepo) Create(_ context.Context, t *model.FollowUpTask) error {
	f.tasks = append(f.tasks, t)
	return nil
}

func (f *fakeFollowUpRepo) Get(_ context.Context, _ uuid.UUID) (*model.FollowUpTask, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeFollowUpRepo) Update(_ context.Context, _ *model.FollowUpTask) error { return nil }

func (f *fakeFollowUpRepo) List(_ context.Context, _ *model.FollowUpFilters) ([]*model.FollowUpTask, error) {
	return f.tasks, nil
}

func (f *fakeFollowUpRepo) ListDueOn(_ context.Context, day time.Time) ([]*model.FollowUpTask, error) {
	var out []*model.FollowUpTask
	for _, t := range f.tasks {
		if !t.IsCompleted && t.DueDate.Equal(day) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeFollowUpRepo) ListOverdue(_ context.Context, before time.Time) ([]*model.FollowUpTask, error) {
	var out []*model.FollowUpTask
	for _, t := range f.tasks {
		if !t.IsCompleted && t.DueDate.Before(before) {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	appointments []*model.Appointment
}

func (f *fakeAppointmentRepo) Create(_ context.Context, _ *model.Appointment) error { return nil }

func (f *fakeAppointmentRepo) Get(_ context.Context, _ uuid.UUID) (*model.Appointment, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeAppointmentRepo) Update(_ context.Context, _ *model.Appointment) error { return nil }
func (f *fakeAppointmentRepo) Delete(_ context.Context, _ uuid.UUID) error          { return nil }

func (f *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) SlotTaken(_ context.Context, _ uuid.UUID, _ time.Time, _ string, _ *uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeAppointmentRepo) ListStartingBetween(_ context.Context, from, to time.Time) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range f.appointments {
		starts := a.StartsAt(time.UTC)
		if a.Status == model.AppointmentStatusScheduled && !starts.Before(from) && starts.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	created []*model.Notification
	failOn  int // 1-based call index that fails; 0 disables
	calls   int
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	f.calls++
	if f.failOn != 0 && f.calls == f.failOn {
		return errors.New("insert failed")
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationRepo) Get(_ context.Context, _ uuid.UUID) (*model.Notification, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeNotificationRepo) List(_ context.Context, _ *model.NotificationFilters) ([]*model.Notification, error) {
	return f.created, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, _ uuid.UUID) error { return nil }

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func newTestScheduler(t *testing.T, followUps *fakeFollowUpRepo, appointments *fakeAppointmentRepo, notifications *fakeNotificationRepo, now time.Time) *Scheduler {
	t.Helper()
	s, err := New(followUps, appointments, notifications, config.SchedulerConfig{
		Timezone:             "UTC",
		DueScanTime:          "08:00",
		OverdueScanTime:      "18:00",
		UpcomingScanInterval: time.Hour,
		UpcomingWindowHours:  2,
	}, testMetrics, zerolog.Nop())
	require.NoError(t, err)
	s.clock = fixedClock{t: now}
	return s
}

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScanDue(t *testing.T) {
	now := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	doctorID := uuid.New()

	followUps := &fakeFollowUpRepo{tasks: []*model.FollowUpTask{
		{Base: model.Base{ID: uuid.New()}, DoctorID: doctorID, Title: "check wound", DueDate: utcDay(2026, 3, 15)},
		{Base: model.Base{ID: uuid.New()}, DoctorID: doctorID, Title: "tomorrow", DueDate: utcDay(2026, 3, 16)},
		{Base: model.Base{ID: uuid.New()}, DoctorID: doctorID, Title: "done", DueDate: utcDay(2026, 3, 15), IsCompleted: true},
	}}
	notifications := &fakeNotificationRepo{}
	s := newTestScheduler(t, followUps, &fakeAppointmentRepo{}, notifications, now)

	require.NoError(t, s.ScanDue(context.Background()))

	require.Len(t, notifications.created, 1)
	n := notifications.created[0]
	assert.Equal(t, doctorID, n.UserID)
	assert.Equal(t, model.NotificationTypeFollowUp, n.Type)
	require.NotNil(t, n.RelatedType)
	assert.Equal(t, "follow_up_task", *n.RelatedType)
	assert.Contains(t, n.Message, "check wound")
}

func TestScanOverdueIncludesDaysOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	doctorID := uuid.New()

	followUps := &fakeFollowUpRepo{tasks: []*model.FollowUpTask{
		{Base: model.Base{ID: uuid.New()}, DoctorID: doctorID, Title: "lab results", DueDate: utcDay(2026, 3, 12)},
	}}
	notifications := &fakeNotificationRepo{}
	s := newTestScheduler(t, followUps, &fakeAppointmentRepo{}, notifications, now)

	require.NoError(t, s.ScanOverdue(context.Background()))

	require.Len(t, notifications.created, 1)
	assert.Equal(t, model.NotificationTypeAlert, notifications.created[0].Type)
	assert.Contains(t, notifications.created[0].Message, "3 day(s) overdue")
}

func TestScanOverdueSkipsDueTodayAndCompleted(t *testing.T) {
	now := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)

	followUps := &fakeFollowUpRepo{tasks: []*model.FollowUpTask{
		{Base: model.Base{ID: uuid.New()}, DoctorID: uuid.New(), DueDate: utcDay(2026, 3, 15)},
		{Base: model.Base{ID: uuid.New()}, DoctorID: uuid.New(), DueDate: utcDay(2026, 3, 1), IsCompleted: true},
	}}
	notifications := &fakeNotificationRepo{}
	s := newTestScheduler(t, followUps, &fakeAppointmentRepo{}, notifications, now)

	require.NoError(t, s.ScanOverdue(context.Background()))
	assert.Empty(t, notifications.created)
}

func TestScanUpcoming(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	doctorID := uuid.New()

	appointments := &fakeAppointmentRepo{appointments: []*model.Appointment{
		{Base: model.Base{ID: uuid.New()}, DoctorID: doctorID, Date: utcDay(2026, 3, 15), Time: "10:00", Status: model.AppointmentStatusScheduled},
		{Base: model.Base{ID: uuid.New()}, DoctorID: doctorID, Date: utcDay(2026, 3, 15), Time: "14:00", Status: model.AppointmentStatusScheduled},
		{Base: model.Base{ID: uuid.New()}, DoctorID: doctorID, Date: utcDay(2026, 3, 15), Time: "10:30", Status: model.AppointmentStatusCancelled},
	}}
	notifications := &fakeNotificationRepo{}
	s := newTestScheduler(t, &fakeFollowUpRepo{}, appointments, notifications, now)

	require.NoError(t, s.ScanUpcoming(context.Background()))

	require.Len(t, notifications.created, 1)
	assert.Equal(t, model.NotificationTypeAppointment, notifications.created[0].Type)
	assert.Contains(t, notifications.created[0].Message, "10:00")
}

// One bad item must not stop the rest of the batch.
func TestScanDuePerItemErrorBoundary(t *testing.T) {
	now := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)

	followUps := &fakeFollowUpRepo{tasks: []*model.FollowUpTask{
		{Base: model.Base{ID: uuid.New()}, DoctorID: uuid.New(), Title: "a", DueDate: utcDay(2026, 3, 15)},
		{Base: model.Base{ID: uuid.New()}, DoctorID: uuid.New(), Title: "b", DueDate: utcDay(2026, 3, 15)},
		{Base: model.Base{ID: uuid.New()}, DoctorID: uuid.New(), Title: "c", DueDate: utcDay(2026, 3, 15)},
	}}
	notifications := &fakeNotificationRepo{failOn: 2}
	s := newTestScheduler(t, followUps, &fakeAppointmentRepo{}, notifications, now)

	require.NoError(t, s.ScanDue(context.Background()))
	assert.Len(t, notifications.created, 2)
}

func TestNextRun(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	s := newTestScheduler(t, &fakeFollowUpRepo{}, &fakeAppointmentRepo{}, &fakeNotificationRepo{}, now)

	// Later today.
	next, err := s.nextRun("18:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC), next)

	// Already passed today, so tomorrow.
	next, err = s.nextRun("08:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC), next)

	_, err = s.nextRun("26:00")
	assert.Error(t, err)
}
