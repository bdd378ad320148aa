package models

// DashboardSnapshot aggregates read-side counts for the admin dashboard.
type DashboardSnapshot struct {
	ClassesByStatus     map[ClassStatus]int      `json:"classes_by_status"`
	EnrollmentsByStatus map[EnrollmentStatus]int `json:"enrollments_by_status"`
	UpcomingClasses     int                      `json:"upcoming_classes"`
	ActiveInstructors   int                      `json:"active_instructors"`
}

// StatusCount is a generic (status, count) projection row.
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}
