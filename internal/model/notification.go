package model

import (
	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeAppointment NotificationType = "appointment"
	NotificationTypeReferral    NotificationType = "referral"
	NotificationTypeSystem      NotificationType = "system"
	NotificationTypeReminder    NotificationType = "reminder"
	NotificationTypeFollowUp    NotificationType = "follow_up"
	NotificationTypeAlert       NotificationType = "alert"
)

// Notification is an append-only inbox entry for one user. The only mutation
// ever applied is flipping IsRead.
type Notification struct {
	Base
	UserID      uuid.UUID        `db:"user_id" json:"user_id"`
	Type        NotificationType `db:"type" json:"type"`
	Title       string           `db:"title" json:"title"`
	Message     string           `db:"message" json:"message"`
	IsRead      bool             `db:"is_read" json:"is_read"`
	RelatedID   *uuid.UUID       `db:"related_id" json:"related_id,omitempty"`
	RelatedType *string          `db:"related_type" json:"related_type,omitempty"`
}

type NotificationFilters struct {
	UserID uuid.UUID
	IsRead *bool
}
