package model

import (
	"time"

	"github.com/google/uuid"
)

type ClinicStatus string

const (
	ClinicStatusPending   ClinicStatus = "pending"
	ClinicStatusActive    ClinicStatus = "active"
	ClinicStatusRejected  ClinicStatus = "rejected"
	ClinicStatusSuspended ClinicStatus = "suspended"
)

// Clinic is the tenant boundary. Lifecycle: created pending by public
// registration, then pending→active or pending→rejected by a system admin,
// and active⇄suspended afterwards. No other transitions exist.
type Clinic struct {
	Base
	Name             string       `db:"name" json:"name"`
	Email            string       `db:"email" json:"email"`
	Phone            string       `db:"phone" json:"phone"`
	Address          string       `db:"address" json:"address"`
	Status           ClinicStatus `db:"status" json:"status"`
	Notes            *string      `db:"notes" json:"notes,omitempty"`
	RejectionReason  *string      `db:"rejection_reason" json:"rejection_reason,omitempty"`
	SuspensionReason *string      `db:"suspension_reason" json:"suspension_reason,omitempty"`
	ApprovedBy       *uuid.UUID   `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt       *time.Time   `db:"approved_at" json:"approved_at,omitempty"`
}

// CanTransitionTo reports whether the documented lifecycle allows moving to
// the target status.
func (c *Clinic) CanTransitionTo(target ClinicStatus) bool {
	switch c.Status {
	case ClinicStatusPending:
		return target == ClinicStatusActive || target == ClinicStatusRejected
	case ClinicStatusActive:
		return target == ClinicStatusSuspended
	case ClinicStatusSuspended:
		return target == ClinicStatusActive
	default:
		return false
	}
}

type RegisterClinicRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"required"`
	Address       string `json:"address" binding:"required"`
	OwnerName     string `json:"owner_name" binding:"required"`
	OwnerEmail    string `json:"owner_email" binding:"required,email"`
	OwnerPassword string `json:"owner_password" binding:"required,min=8"`
}

type ClinicDecisionRequest struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

type ClinicFilters struct {
	Status string
	Search string
}
