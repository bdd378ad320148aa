package models

import "time"

// ClassStatus is the lifecycle state of a class session.
type ClassStatus string

const (
	ClassStatusScheduled ClassStatus = "SCHEDULED"
	ClassStatusCancelled ClassStatus = "CANCELLED"
	ClassStatusCompleted ClassStatus = "COMPLETED"
)

// IsTerminal reports whether the status admits no further transitions.
func (s ClassStatus) IsTerminal() bool {
	return s == ClassStatusCancelled || s == ClassStatusCompleted
}

// Discipline enumerates the sports offered by the school.
type Discipline string

const (
	DisciplineSwimming   Discipline = "SWIMMING"
	DisciplineTennis     Discipline = "TENNIS"
	DisciplineGymnastics Discipline = "GYMNASTICS"
	DisciplineClimbing   Discipline = "CLIMBING"
	DisciplineJudo       Discipline = "JUDO"
)

// SkillLevel enumerates the proficiency tiers a session targets.
type SkillLevel string

const (
	SkillLevelBeginner     SkillLevel = "BEGINNER"
	SkillLevelIntermediate SkillLevel = "INTERMEDIATE"
	SkillLevelAdvanced     SkillLevel = "ADVANCED"
)

// DefaultDurationMinutes applies when a session is created without an
// explicit duration.
const DefaultDurationMinutes = 60

// ClassSession is a single bookable class occurrence.
type ClassSession struct {
	ID                 string      `db:"id" json:"id"`
	Discipline         Discipline  `db:"discipline" json:"discipline"`
	SkillLevel         SkillLevel  `db:"skill_level" json:"skill_level"`
	ScheduledAt        time.Time   `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes    int         `db:"duration_minutes" json:"duration_minutes"`
	Location           string      `db:"location" json:"location"`
	MaxCapacity        int         `db:"max_capacity" json:"max_capacity"`
	Status             ClassStatus `db:"status" json:"status"`
	CancellationReason *string     `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CreatedBy          string      `db:"created_by" json:"created_by"`
	CreatedAt          time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at" json:"updated_at"`
}

// ClassSessionSummary augments a session with live seat availability for
// listings.
type ClassSessionSummary struct {
	ClassSession
	EnrollmentCount int `db:"enrollment_count" json:"enrollment_count"`
	SpotsRemaining  int `db:"spots_remaining" json:"spots_remaining"`
}

// ClassSessionFilter narrows class listings.
type ClassSessionFilter struct {
	Status     ClassStatus
	Discipline Discipline
	SkillLevel SkillLevel
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// ClassSessionPatch carries optional updates for a scheduled session.
type ClassSessionPatch struct {
	Discipline      *Discipline `json:"discipline,omitempty"`
	SkillLevel      *SkillLevel `json:"skill_level,omitempty"`
	ScheduledAt     *time.Time  `json:"scheduled_at,omitempty"`
	DurationMinutes *int        `json:"duration_minutes,omitempty"`
	Location        *string     `json:"location,omitempty"`
	MaxCapacity     *int        `json:"max_capacity,omitempty"`
}
