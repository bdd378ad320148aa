package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/studiofit/class-booking-api/internal/models"
)

// AnalyticsRepository provides read-side counters for the admin dashboard.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository constructs the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// CountClassesByStatus groups session counts per lifecycle status.
func (r *AnalyticsRepository) CountClassesByStatus(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM class_sessions GROUP BY status`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count classes by status: %w", err)
	}
	return counts, nil
}

// CountEnrollmentsByStatus groups enrollment counts per review status.
func (r *AnalyticsRepository) CountEnrollmentsByStatus(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM enrollments GROUP BY status`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count enrollments by status: %w", err)
	}
	return counts, nil
}

// CountUpcomingClasses returns scheduled sessions starting after now.
func (r *AnalyticsRepository) CountUpcomingClasses(ctx context.Context, now time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM class_sessions WHERE status = $1 AND scheduled_at > $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, models.ClassStatusScheduled, now); err != nil {
		return 0, fmt.Errorf("count upcoming classes: %w", err)
	}
	return count, nil
}

// CountActiveInstructors returns distinct instructors assigned to scheduled
// sessions.
func (r *AnalyticsRepository) CountActiveInstructors(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(DISTINCT ia.instructor_id)
        FROM instructor_assignments ia
        JOIN class_sessions cs ON cs.id = ia.class_id
        WHERE cs.status = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, models.ClassStatusScheduled); err != nil {
		return 0, fmt.Errorf("count active instructors: %w", err)
	}
	return count, nil
}
