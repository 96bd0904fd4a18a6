package model

import (
	"time"

	"github.com/google/uuid"
)

// FollowUpTask classification values. The classification is computed at read
// time from due_date and is_completed, never stored.
const (
	FollowUpPending   = "pending"
	FollowUpOverdue   = "overdue"
	FollowUpCompleted = "completed"
)

// FollowUpTask is derived from a completed consultation or created manually.
type FollowUpTask struct {
	Base
	ClinicID       uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	DoctorID       uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	ConsultationID *uuid.UUID `db:"consultation_id" json:"consultation_id,omitempty"`
	Title          string     `db:"title" json:"title"`
	Description    *string    `db:"description" json:"description,omitempty"`
	DueDate        time.Time  `db:"due_date" json:"due_date"`
	IsCompleted    bool       `db:"is_completed" json:"is_completed"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
}

// Classify returns the read-time state of the task relative to now. Completed
// wins regardless of due date; otherwise a due date before today is overdue.
func (t *FollowUpTask) Classify(now time.Time) string {
	if t.IsCompleted {
		return FollowUpCompleted
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	due := time.Date(t.DueDate.Year(), t.DueDate.Month(), t.DueDate.Day(), 0, 0, 0, 0, now.Location())
	if due.Before(today) {
		return FollowUpOverdue
	}
	return FollowUpPending
}

// DaysOverdue returns the whole days between the due date and today. Zero or
// negative means the task is not overdue.
func (t *FollowUpTask) DaysOverdue(now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	due := time.Date(t.DueDate.Year(), t.DueDate.Month(), t.DueDate.Day(), 0, 0, 0, 0, time.UTC)
	return int(today.Sub(due).Hours() / 24)
}

type CreateFollowUpRequest struct {
	ClinicID    string `json:"clinic_id" binding:"required,uuid"`
	DoctorID    string `json:"doctor_id" binding:"required,uuid"`
	PatientID   string `json:"patient_id" binding:"required,uuid"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" binding:"required"`
}

type CompleteFollowUpRequest struct {
	Notes string `json:"notes"`
}

type FollowUpFilters struct {
	ClinicID  uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	// State filters by read-time classification.
	State string
}
