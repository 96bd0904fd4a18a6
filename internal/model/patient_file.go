package model

import (
	"github.com/google/uuid"
)

// PatientFile is append-only metadata about an uploaded document. Binary
// storage lives outside this service.
type PatientFile struct {
	Base
	ClinicID    uuid.UUID `db:"clinic_id" json:"clinic_id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	UploadedBy  uuid.UUID `db:"uploaded_by" json:"uploaded_by"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	StoragePath string    `db:"storage_path" json:"storage_path"`
	Description *string   `db:"description" json:"description,omitempty"`
}

type CreatePatientFileRequest struct {
	ClinicID    string `json:"clinic_id" binding:"required,uuid"`
	PatientID   string `json:"patient_id" binding:"required,uuid"`
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	SizeBytes   int64  `json:"size_bytes" binding:"required,min=1"`
	StoragePath string `json:"storage_path" binding:"required"`
	Description string `json:"description"`
}
