package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studiofit/class-booking-api/internal/models"
)

// ClassSessionRepository handles persistence of class sessions.
type ClassSessionRepository struct {
	db *sqlx.DB
}

// NewClassSessionRepository constructs the repository.
func NewClassSessionRepository(db *sqlx.DB) *ClassSessionRepository {
	return &ClassSessionRepository{db: db}
}

const classSessionColumns = `id, discipline, skill_level, scheduled_at, duration_minutes, location, max_capacity, status, cancellation_reason, created_by, created_at, updated_at`

// Create inserts a new session record.
func (r *ClassSessionRepository) Create(ctx context.Context, session *models.ClassSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	if session.Status == "" {
		session.Status = models.ClassStatusScheduled
	}
	const query = `INSERT INTO class_sessions (id, discipline, skill_level, scheduled_at, duration_minutes, location, max_capacity, status, cancellation_reason, created_by, created_at, updated_at)
        VALUES (:id, :discipline, :skill_level, :scheduled_at, :duration_minutes, :location, :max_capacity, :status, :cancellation_reason, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create class session: %w", err)
	}
	return nil
}

// FindByID loads a session by identifier.
func (r *ClassSessionRepository) FindByID(ctx context.Context, id string) (*models.ClassSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_sessions WHERE id = $1`, classSessionColumns)
	var session models.ClassSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns sessions matching the filter with live seat availability,
// ordered by scheduled time descending.
func (r *ClassSessionRepository) List(ctx context.Context, filter models.ClassSessionFilter) ([]models.ClassSessionSummary, int, error) {
	base := "FROM class_sessions cs"
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("cs.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Discipline != "" {
		conditions = append(conditions, fmt.Sprintf("cs.discipline = $%d", len(args)+1))
		args = append(args, filter.Discipline)
	}
	if filter.SkillLevel != "" {
		conditions = append(conditions, fmt.Sprintf("cs.skill_level = $%d", len(args)+1))
		args = append(args, filter.SkillLevel)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("cs.scheduled_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("cs.scheduled_at <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT cs.id, cs.discipline, cs.skill_level, cs.scheduled_at, cs.duration_minutes, cs.location, cs.max_capacity, cs.status, cs.cancellation_reason, cs.created_by, cs.created_at, cs.updated_at,
        (SELECT COUNT(*) FROM enrollments e WHERE e.class_id = cs.id) AS enrollment_count,
        GREATEST(cs.max_capacity - (SELECT COUNT(*) FROM enrollments e WHERE e.class_id = cs.id), 0) AS spots_remaining
        %s ORDER BY cs.scheduled_at DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var sessions []models.ClassSessionSummary
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list class sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count class sessions: %w", err)
	}
	return sessions, total, nil
}

// Update persists mutable fields, but only while the session is still
// scheduled. Returns false when no scheduled row matched.
func (r *ClassSessionRepository) Update(ctx context.Context, session *models.ClassSession) (bool, error) {
	session.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_sessions
        SET discipline = :discipline, skill_level = :skill_level, scheduled_at = :scheduled_at,
            duration_minutes = :duration_minutes, location = :location, max_capacity = :max_capacity,
            updated_at = :updated_at
        WHERE id = :id AND status = 'SCHEDULED'`
	result, err := r.db.NamedExecContext(ctx, query, session)
	if err != nil {
		return false, fmt.Errorf("update class session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check updated class rows: %w", err)
	}
	return affected > 0, nil
}

// Transition moves a scheduled session into a terminal status. The status
// predicate makes the guard atomic: a concurrent cancel/complete loses the
// race and observes zero affected rows.
func (r *ClassSessionRepository) Transition(ctx context.Context, id string, status models.ClassStatus, reason *string) (bool, error) {
	const query = `UPDATE class_sessions SET status = $2, cancellation_reason = $3, updated_at = $4
        WHERE id = $1 AND status = 'SCHEDULED'`
	result, err := r.db.ExecContext(ctx, query, id, status, reason, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("transition class session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check transitioned class rows: %w", err)
	}
	return affected > 0, nil
}

// CountEnrollments returns the live enrollment count for a session.
func (r *ClassSessionRepository) CountEnrollments(ctx context.Context, classID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE class_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID); err != nil {
		return 0, fmt.Errorf("count class enrollments: %w", err)
	}
	return count, nil
}

// lockedClass is the row image read under FOR UPDATE by guarded writes.
type lockedClass struct {
	Status      models.ClassStatus `db:"status"`
	MaxCapacity int                `db:"max_capacity"`
}

// lockForUpdate reads a session's status and capacity inside tx, blocking
// concurrent guarded writes on the same class until commit.
func lockForUpdate(ctx context.Context, tx *sqlx.Tx, classID string) (*lockedClass, error) {
	const query = `SELECT status, max_capacity FROM class_sessions WHERE id = $1 FOR UPDATE`
	var cls lockedClass
	if err := tx.GetContext(ctx, &cls, query, classID); err != nil {
		return nil, err
	}
	return &cls, nil
}
