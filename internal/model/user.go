package model

import (
	"time"

	"github.com/google/uuid"
)

// User role constants
const (
	RoleDoctor      = "doctor"
	RoleNurse       = "nurse"
	RoleClinicOwner = "clinic_owner"
	RoleSystemAdmin = "system_admin"
)

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User represents a staff member or system administrator. Every user except
// a system_admin belongs to exactly one clinic.
type User struct {
	Base
	ClinicID     *uuid.UUID `json:"clinic_id" db:"clinic_id"`
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	Phone        *string    `json:"phone" db:"phone"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         string     `json:"role" db:"role"`
	Status       string     `json:"status" db:"status"`
	LastLoginAt  *time.Time `json:"last_login_at" db:"last_login_at"`
}

// IsSystemAdmin reports whether the user bypasses clinic scoping.
func (u *User) IsSystemAdmin() bool {
	return u.Role == RoleSystemAdmin
}

type CreateUserRequest struct {
	ClinicID string `json:"clinic_id"`
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=doctor nurse clinic_owner system_admin"`
}

type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Status *string `json:"status" binding:"omitempty,oneof=active inactive"`
	Role   *string `json:"role" binding:"omitempty,oneof=doctor nurse clinic_owner"`
}

type UserFilters struct {
	ClinicID uuid.UUID
	Role     string
	Status   string
}
