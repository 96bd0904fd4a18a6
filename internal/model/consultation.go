package model

import (
	"time"

	"github.com/google/uuid"
)

type ConsultationStatus string

const (
	ConsultationStatusInProgress ConsultationStatus = "in_progress"
	ConsultationStatusCompleted  ConsultationStatus = "completed"
)

// Consultation records a doctor/patient encounter. It is created standalone
// or as a side effect of starting an appointment.
type Consultation struct {
	Base
	ClinicID      uuid.UUID          `db:"clinic_id" json:"clinic_id"`
	DoctorID      uuid.UUID          `db:"doctor_id" json:"doctor_id"`
	PatientID     uuid.UUID          `db:"patient_id" json:"patient_id"`
	AppointmentID *uuid.UUID         `db:"appointment_id" json:"appointment_id,omitempty"`
	Status        ConsultationStatus `db:"status" json:"status"`
	Diagnosis     *string            `db:"diagnosis" json:"diagnosis,omitempty"`
	Treatment     *string            `db:"treatment" json:"treatment,omitempty"`
	Prescription  *string            `db:"prescription" json:"prescription,omitempty"`
	Notes         *string            `db:"notes" json:"notes,omitempty"`
	FollowUpDays  *int               `db:"follow_up_days" json:"follow_up_days,omitempty"`
	FollowUpDate  *time.Time         `db:"follow_up_date" json:"follow_up_date,omitempty"`
}

type CreateConsultationRequest struct {
	ClinicID     string `json:"clinic_id" binding:"required,uuid"`
	DoctorID     string `json:"doctor_id" binding:"required,uuid"`
	PatientID    string `json:"patient_id" binding:"required,uuid"`
	Diagnosis    string `json:"diagnosis"`
	Treatment    string `json:"treatment"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
}

// UpdateConsultationRequest is a partial update. Setting Status to completed
// together with a follow-up interval or date triggers follow-up derivation.
type UpdateConsultationRequest struct {
	Status       *string `json:"status" binding:"omitempty,oneof=in_progress completed"`
	Diagnosis    *string `json:"diagnosis"`
	Treatment    *string `json:"treatment"`
	Prescription *string `json:"prescription"`
	Notes        *string `json:"notes"`
	FollowUpDays *int    `json:"follow_up_days"`
	FollowUpDate *string `json:"follow_up_date"`
}

type ConsultationFilters struct {
	ClinicID  uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Status    string
}
