package models

import "time"

// EnrollmentStatus represents the review lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. Only PENDING accepts a review transition.
const (
	EnrollmentStatusPending   EnrollmentStatus = "PENDING"
	EnrollmentStatusApproved  EnrollmentStatus = "APPROVED"
	EnrollmentStatusDenied    EnrollmentStatus = "DENIED"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

// AllEnrollmentStatuses lists every status, used when no filter is given.
var AllEnrollmentStatuses = []EnrollmentStatus{
	EnrollmentStatusPending,
	EnrollmentStatusApproved,
	EnrollmentStatusDenied,
	EnrollmentStatusCancelled,
}

// Enrollment is a student's request to occupy one capacity slot in a session.
// At most one row exists per (class, student); the database constraint is the
// source of truth under concurrent inserts.
type Enrollment struct {
	ID                 string           `db:"id" json:"id"`
	ClassID            string           `db:"class_id" json:"class_id"`
	StudentID          string           `db:"student_id" json:"student_id"`
	Status             EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt         time.Time        `db:"enrolled_at" json:"enrolled_at"`
	ReviewedBy         *string          `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	DenialReason       *string          `db:"denial_reason" json:"denial_reason,omitempty"`
	CancelledAt        *time.Time       `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason *string          `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	Experimental       bool             `db:"experimental" json:"experimental"`
}

// EnrollmentDetail enriches Enrollment with student and class info for
// admin review views.
type EnrollmentDetail struct {
	Enrollment
	StudentName      string     `db:"student_name" json:"student_name"`
	ClassDiscipline  Discipline `db:"class_discipline" json:"class_discipline"`
	ClassScheduledAt time.Time  `db:"class_scheduled_at" json:"class_scheduled_at"`
}

// EnrollmentFilter provides filters for the admin enrollment list.
type EnrollmentFilter struct {
	Statuses []EnrollmentStatus
	ClassID  string
}
