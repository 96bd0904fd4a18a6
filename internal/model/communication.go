package model

import (
	"github.com/google/uuid"
)

// CommunicationLog is an append-only record of contact with a patient.
type CommunicationLog struct {
	Base
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Channel   string    `db:"channel" json:"channel"`
	Subject   string    `db:"subject" json:"subject"`
	Content   string    `db:"content" json:"content"`
}

type CreateCommunicationLogRequest struct {
	ClinicID  string `json:"clinic_id" binding:"required,uuid"`
	PatientID string `json:"patient_id" binding:"required,uuid"`
	Channel   string `json:"channel" binding:"required,oneof=phone email sms in_person"`
	Subject   string `json:"subject" binding:"required"`
	Content   string `json:"content" binding:"required"`
}
