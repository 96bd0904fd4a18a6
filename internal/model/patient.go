package model

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Patient belongs to exactly one clinic.
type Patient struct {
	Base
	ClinicID    uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	FileNumber  string     `db:"file_number" json:"file_number"`
	Name        string     `db:"name" json:"name"`
	Email       *string    `db:"email" json:"email,omitempty"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender      *string    `db:"gender" json:"gender,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
}

// NewFileNumber issues a patient file number of the form FN-YYYYMMDD-XXXX,
// where the date is the creation date and the suffix is 4 random digits.
func NewFileNumber(now time.Time) string {
	return fmt.Sprintf("FN-%s-%04d", now.Format("20060102"), rand.Intn(10000))
}

type CreatePatientRequest struct {
	ClinicID    string `json:"clinic_id" binding:"required,uuid"`
	FileNumber  string `json:"file_number"`
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender" binding:"omitempty,oneof=male female other"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

type UpdatePatientRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Gender  *string `json:"gender" binding:"omitempty,oneof=male female other"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

type PatientFilters struct {
	ClinicID uuid.UUID
	Search   string
}
