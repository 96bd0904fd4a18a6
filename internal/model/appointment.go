package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
)

// Appointment is a clinic-owned booking of a patient with a doctor for a
// (date, time) slot. No two non-cancelled appointments for the same doctor
// may share a slot.
type Appointment struct {
	Base
	ClinicID  uuid.UUID         `db:"clinic_id" json:"clinic_id"`
	DoctorID  uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID uuid.UUID         `db:"patient_id" json:"patient_id"`
	Date      time.Time         `db:"date" json:"date"`
	Time      string            `db:"time" json:"time"`
	Status    AppointmentStatus `db:"status" json:"status"`
	Reason    *string           `db:"reason" json:"reason,omitempty"`
	Notes     *string           `db:"notes" json:"notes,omitempty"`
}

// StartsAt combines the date and the HH:MM slot into an absolute instant in
// the given location.
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	t, err := time.ParseInLocation("15:04", a.Time, loc)
	if err != nil {
		return a.Date
	}
	return time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(),
		t.Hour(), t.Minute(), 0, 0, loc)
}

type CreateAppointmentRequest struct {
	ClinicID  string `json:"clinic_id" binding:"required,uuid"`
	DoctorID  string `json:"doctor_id" binding:"required,uuid"`
	PatientID string `json:"patient_id" binding:"required,uuid"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
}

type UpdateAppointmentRequest struct {
	Date   *string `json:"date"`
	Time   *string `json:"time"`
	Status *string `json:"status" binding:"omitempty,oneof=scheduled in_progress completed cancelled"`
	Reason *string `json:"reason"`
	Notes  *string `json:"notes"`
}

type AppointmentFilters struct {
	ClinicID  uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
}
