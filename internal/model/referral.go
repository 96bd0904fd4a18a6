package model

import (
	"github.com/google/uuid"
)

type ReferralStatus string

const (
	ReferralStatusPending   ReferralStatus = "pending"
	ReferralStatusAccepted  ReferralStatus = "accepted"
	ReferralStatusCompleted ReferralStatus = "completed"
	ReferralStatusCancelled ReferralStatus = "cancelled"
)

// Referral hands a patient from one doctor to another.
type Referral struct {
	Base
	ClinicID     uuid.UUID      `db:"clinic_id" json:"clinic_id"`
	PatientID    uuid.UUID      `db:"patient_id" json:"patient_id"`
	FromDoctorID uuid.UUID      `db:"from_doctor_id" json:"from_doctor_id"`
	ToDoctorID   uuid.UUID      `db:"to_doctor_id" json:"to_doctor_id"`
	Reason       string         `db:"reason" json:"reason"`
	Notes        *string        `db:"notes" json:"notes,omitempty"`
	Status       ReferralStatus `db:"status" json:"status"`
}

type CreateReferralRequest struct {
	ClinicID   string `json:"clinic_id" binding:"required,uuid"`
	PatientID  string `json:"patient_id" binding:"required,uuid"`
	ToDoctorID string `json:"to_doctor_id" binding:"required,uuid"`
	Reason     string `json:"reason" binding:"required"`
	Notes      string `json:"notes"`
}

type ReferralFilters struct {
	ClinicID  uuid.UUID
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Status    string
}
