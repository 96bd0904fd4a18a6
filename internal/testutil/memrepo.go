// Package testutil provides in-memory repository implementations for
// service-level tests.
package testutil

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/model"
)

type MemClinicRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.Clinic
}

func NewMemClinicRepo() *MemClinicRepo {
	return &MemClinicRepo{byID: make(map[uuid.UUID]*model.Clinic)}
}

func (r *MemClinicRepo) Create(_ context.Context, c *model.Clinic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	r.byID[c.ID] = c
	return nil
}

func (r *MemClinicRepo) Get(_ context.Context, id uuid.UUID) (*model.Clinic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (r *MemClinicRepo) Update(_ context.Context, c *model.Clinic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[c.ID]; !ok {
		return sql.ErrNoRows
	}
	r.byID[c.ID] = c
	return nil
}

func (r *MemClinicRepo) List(_ context.Context, filters *model.ClinicFilters) ([]*model.Clinic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Clinic
	for _, c := range r.byID {
		if filters != nil && filters.Status != "" && string(c.Status) != filters.Status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *MemClinicRepo) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if strings.EqualFold(c.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemClinicRepo) PhoneExists(_ context.Context, phone string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

type MemUserRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.User
}

func NewMemUserRepo() *MemUserRepo {
	return &MemUserRepo{byID: make(map[uuid.UUID]*model.User)}
}

func (r *MemUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.byID[u.ID] = u
	return nil
}

func (r *MemUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r *MemUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *MemUserRepo) Update(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return sql.ErrNoRows
	}
	r.byID[u.ID] = u
	return nil
}

func (r *MemUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *MemUserRepo) List(_ context.Context, _ *model.UserFilters) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	return out, nil
}

type MemPatientRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.Patient
}

func NewMemPatientRepo() *MemPatientRepo {
	return &MemPatientRepo{byID: make(map[uuid.UUID]*model.Patient)}
}

func (r *MemPatientRepo) Create(_ context.Context, p *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.byID[p.ID] = p
	return nil
}

func (r *MemPatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (r *MemPatientRepo) Update(_ context.Context, p *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return sql.ErrNoRows
	}
	r.byID[p.ID] = p
	return nil
}

func (r *MemPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *MemPatientRepo) List(_ context.Context, _ *model.PatientFilters) ([]*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Patient, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

type MemAppointmentRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.Appointment
}

func NewMemAppointmentRepo() *MemAppointmentRepo {
	return &MemAppointmentRepo{byID: make(map[uuid.UUID]*model.Appointment)}
}

func (r *MemAppointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.byID[a.ID] = a
	return nil
}

func (r *MemAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (r *MemAppointmentRepo) Update(_ context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[a.ID]; !ok {
		return sql.ErrNoRows
	}
	r.byID[a.ID] = a
	return nil
}

func (r *MemAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *MemAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Appointment, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}

func (r *MemAppointmentRepo) SlotTaken(_ context.Context, doctorID uuid.UUID, date time.Time, slot string, excludeID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.DoctorID == doctorID && a.Date.Equal(date) && a.Time == slot && a.Status != model.AppointmentStatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemAppointmentRepo) ListStartingBetween(_ context.Context, from, to time.Time) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, a := range r.byID {
		starts := a.StartsAt(time.UTC)
		if a.Status == model.AppointmentStatusScheduled && !starts.Before(from) && starts.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

type MemConsultationRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.Consultation
}

func NewMemConsultationRepo() *MemConsultationRepo {
	return &MemConsultationRepo{byID: make(map[uuid.UUID]*model.Consultation)}
}

func (r *MemConsultationRepo) Create(_ context.Context, c *model.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.byID[c.ID] = c
	return nil
}

func (r *MemConsultationRepo) Get(_ context.Context, id uuid.UUID) (*model.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (r *MemConsultationRepo) Update(_ context.Context, c *model.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[c.ID]; !ok {
		return sql.ErrNoRows
	}
	r.byID[c.ID] = c
	return nil
}

func (r *MemConsultationRepo) List(_ context.Context, _ *model.ConsultationFilters) ([]*model.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Consultation, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	return out, nil
}

type MemFollowUpRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.FollowUpTask
}

func NewMemFollowUpRepo() *MemFollowUpRepo {
	return &MemFollowUpRepo{byID: make(map[uuid.UUID]*model.FollowUpTask)}
}

func (r *MemFollowUpRepo) Create(_ context.Context, t *model.FollowUpTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.byID[t.ID] = t
	return nil
}

func (r *MemFollowUpRepo) Get(_ context.Context, id uuid.UUID) (*model.FollowUpTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (r *MemFollowUpRepo) Update(_ context.Context, t *model.FollowUpTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; !ok {
		return sql.ErrNoRows
	}
	r.byID[t.ID] = t
	return nil
}

func (r *MemFollowUpRepo) List(_ context.Context, _ *model.FollowUpFilters) ([]*model.FollowUpTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.FollowUpTask, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	return out, nil
}

func (r *MemFollowUpRepo) ListDueOn(_ context.Context, day time.Time) ([]*model.FollowUpTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.FollowUpTask
	for _, t := range r.byID {
		if !t.IsCompleted && t.DueDate.Equal(day) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *MemFollowUpRepo) ListOverdue(_ context.Context, before time.Time) ([]*model.FollowUpTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.FollowUpTask
	for _, t := range r.byID {
		if !t.IsCompleted && t.DueDate.Before(before) {
			out = append(out, t)
		}
	}
	return out, nil
}

type MemNotificationRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*model.Notification
	Created []*model.Notification
}

func NewMemNotificationRepo() *MemNotificationRepo {
	return &MemNotificationRepo{byID: make(map[uuid.UUID]*model.Notification)}
}

func (r *MemNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	r.byID[n.ID] = n
	r.Created = append(r.Created, n)
	return nil
}

func (r *MemNotificationRepo) Get(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *n
	return &cp, nil
}

func (r *MemNotificationRepo) List(_ context.Context, filters *model.NotificationFilters) ([]*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Notification
	for _, n := range r.byID {
		if filters != nil && n.UserID != filters.UserID {
			continue
		}
		if filters != nil && filters.IsRead != nil && n.IsRead != *filters.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *MemNotificationRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	n.IsRead = true
	return nil
}

func (r *MemNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.byID {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

type MemOutboxRepo struct {
	mu     sync.Mutex
	Events []*model.OutboxEvent
}

func NewMemOutboxRepo() *MemOutboxRepo {
	return &MemOutboxRepo{}
}

func (r *MemOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Status = model.OutboxStatusPending
	r.Events = append(r.Events, e)
	return nil
}

func (r *MemOutboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.OutboxEvent
	for _, e := range r.Events {
		if e.Status == model.OutboxStatusPending {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *MemOutboxRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.Events {
		if e.ID == id {
			e.Status = status
			e.ErrorMessage = errorMessage
			e.RetryCount++
			return nil
		}
	}
	return sql.ErrNoRows
}
