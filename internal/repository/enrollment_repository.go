package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studiofit/class-booking-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, class_id, student_id, status, enrolled_at, reviewed_by, reviewed_at, denial_reason, cancelled_at, cancellation_reason, experimental`

// CreateGuarded inserts a pending enrollment after re-checking class state
// and capacity with the class row locked. Both checks and the insert commit
// atomically, so capacity overrun is impossible under concurrent enrolls.
// Returns sql.ErrNoRows (class missing), ErrClassNotOpen, ErrClassFull or
// ErrAlreadyEnrolled.
func (r *EnrollmentRepository) CreateGuarded(ctx context.Context, enrollment *models.Enrollment) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enroll tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cls, err := lockForUpdate(ctx, tx, enrollment.ClassID)
	if err != nil {
		return err
	}
	if cls.Status.IsTerminal() {
		return ErrClassNotOpen
	}

	var count int
	if err = tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM enrollments WHERE class_id = $1`, enrollment.ClassID); err != nil {
		return fmt.Errorf("count enrollments: %w", err)
	}
	if count >= cls.MaxCapacity {
		return ErrClassFull
	}

	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusPending
	}
	const insert = `INSERT INTO enrollments (id, class_id, student_id, status, enrolled_at, experimental)
        VALUES (:id, :class_id, :student_id, :status, :enrolled_at, :experimental)`
	if _, err = tx.NamedExecContext(ctx, insert, enrollment); err != nil {
		if isUniqueViolation(err) {
			err = ErrAlreadyEnrolled
			return err
		}
		return fmt.Errorf("create enrollment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit enroll tx: %w", err)
	}
	return nil
}

// DeleteGuarded removes a student's enrollment row with the class locked,
// returning the deleted row. Returns sql.ErrNoRows (class missing),
// ErrClassNotOpen or ErrNotEnrolled.
func (r *EnrollmentRepository) DeleteGuarded(ctx context.Context, classID, studentID string) (enrollment *models.Enrollment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin unenroll tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cls, err := lockForUpdate(ctx, tx, classID)
	if err != nil {
		return nil, err
	}
	if cls.Status.IsTerminal() {
		return nil, ErrClassNotOpen
	}

	query := fmt.Sprintf(`DELETE FROM enrollments WHERE class_id = $1 AND student_id = $2 RETURNING %s`, enrollmentColumns)
	var deleted models.Enrollment
	if err = tx.GetContext(ctx, &deleted, query, classID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotEnrolled
			return nil, err
		}
		return nil, fmt.Errorf("delete enrollment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit unenroll tx: %w", err)
	}
	return &deleted, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE id = $1`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// List returns enrollments matching the status set, newest first. An empty
// set means all statuses.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	base := `SELECT e.id, e.class_id, e.student_id, e.status, e.enrolled_at, e.reviewed_by, e.reviewed_at,
        e.denial_reason, e.cancelled_at, e.cancellation_reason, e.experimental,
        u.full_name AS student_name, cs.discipline AS class_discipline, cs.scheduled_at AS class_scheduled_at
        FROM enrollments e
        JOIN users u ON u.id = e.student_id
        JOIN class_sessions cs ON cs.id = e.class_id`
	var conditions []string
	var args []interface{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, status)
		}
		conditions = append(conditions, fmt.Sprintf("e.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("e.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}

	query := base
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.enrolled_at DESC"

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByStudent returns all of a student's rows for self-service views.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.class_id, e.student_id, e.status, e.enrolled_at, e.reviewed_by, e.reviewed_at,
        e.denial_reason, e.cancelled_at, e.cancellation_reason, e.experimental,
        u.full_name AS student_name, cs.discipline AS class_discipline, cs.scheduled_at AS class_scheduled_at
        FROM enrollments e
        JOIN users u ON u.id = e.student_id
        JOIN class_sessions cs ON cs.id = e.class_id
        WHERE e.student_id = $1
        ORDER BY cs.scheduled_at DESC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// ListApprovedByClass returns the approved roster for a class.
func (r *EnrollmentRepository) ListApprovedByClass(ctx context.Context, classID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.class_id, e.student_id, e.status, e.enrolled_at, e.reviewed_by, e.reviewed_at,
        e.denial_reason, e.cancelled_at, e.cancellation_reason, e.experimental,
        u.full_name AS student_name, cs.discipline AS class_discipline, cs.scheduled_at AS class_scheduled_at
        FROM enrollments e
        JOIN users u ON u.id = e.student_id
        JOIN class_sessions cs ON cs.id = e.class_id
        WHERE e.class_id = $1 AND e.status = $2
        ORDER BY u.full_name ASC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, classID, models.EnrollmentStatusApproved); err != nil {
		return nil, fmt.Errorf("list approved enrollments: %w", err)
	}
	return enrollments, nil
}

// Review applies an approve/deny decision, but only while the row is still
// pending. Returns false when no pending row matched.
func (r *EnrollmentRepository) Review(ctx context.Context, id string, status models.EnrollmentStatus, reviewerID string, reason *string) (bool, error) {
	const query = `UPDATE enrollments SET status = $2, reviewed_by = $3, reviewed_at = $4, denial_reason = $5
        WHERE id = $1 AND status = 'PENDING'`
	result, err := r.db.ExecContext(ctx, query, id, status, reviewerID, time.Now().UTC(), reason)
	if err != nil {
		return false, fmt.Errorf("review enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check reviewed enrollment rows: %w", err)
	}
	return affected > 0, nil
}
