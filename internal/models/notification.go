package models

import "time"

// NotificationType enumerates the events fanned out to students.
type NotificationType string

const (
	NotificationEnrollmentApproved NotificationType = "ENROLLMENT_APPROVED"
	NotificationEnrollmentDenied   NotificationType = "ENROLLMENT_DENIED"
	NotificationClassCancelled     NotificationType = "CLASS_CANCELLED"
)

// Notification is a persisted message for a user. Delivery channels are
// handled by external collaborators; this table is the fan-out record.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Body      string           `db:"body" json:"body"`
	ClassID   *string          `db:"class_id" json:"class_id,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	ReadAt    *time.Time       `db:"read_at" json:"read_at,omitempty"`
}
