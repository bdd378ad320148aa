package models

import "time"

// InstructorAssignment links an instructor to a class session roster.
// Unique per (class, instructor); created and removed only while the class
// is SCHEDULED.
type InstructorAssignment struct {
	ID           string    `db:"id" json:"id"`
	ClassID      string    `db:"class_id" json:"class_id"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	AssignedBy   string    `db:"assigned_by" json:"assigned_by"`
	AssignedAt   time.Time `db:"assigned_at" json:"assigned_at"`
}

// InstructorAssignmentDetail enriches assignments with descriptive fields.
type InstructorAssignmentDetail struct {
	InstructorAssignment
	InstructorName   string     `db:"instructor_name" json:"instructor_name"`
	ClassDiscipline  Discipline `db:"class_discipline" json:"class_discipline"`
	ClassScheduledAt time.Time  `db:"class_scheduled_at" json:"class_scheduled_at"`
	ClassLocation    string     `db:"class_location" json:"class_location"`
}
