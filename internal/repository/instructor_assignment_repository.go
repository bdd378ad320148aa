package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studiofit/class-booking-api/internal/models"
)

// InstructorAssignmentRepository persists instructor-class assignments.
type InstructorAssignmentRepository struct {
	db *sqlx.DB
}

// NewInstructorAssignmentRepository constructs the repository.
func NewInstructorAssignmentRepository(db *sqlx.DB) *InstructorAssignmentRepository {
	return &InstructorAssignmentRepository{db: db}
}

const assignmentColumns = `id, class_id, instructor_id, assigned_by, assigned_at`

// CreateGuarded inserts an assignment with the class row locked so the
// SCHEDULED guard cannot race a concurrent cancel/complete. Returns
// sql.ErrNoRows (class missing), ErrClassNotOpen or ErrAlreadyAssigned.
func (r *InstructorAssignmentRepository) CreateGuarded(ctx context.Context, assignment *models.InstructorAssignment) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assign tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cls, err := lockForUpdate(ctx, tx, assignment.ClassID)
	if err != nil {
		return err
	}
	if cls.Status != models.ClassStatusScheduled {
		return ErrClassNotOpen
	}

	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now().UTC()
	}
	const insert = `INSERT INTO instructor_assignments (id, class_id, instructor_id, assigned_by, assigned_at)
        VALUES (:id, :class_id, :instructor_id, :assigned_by, :assigned_at)`
	if _, err = tx.NamedExecContext(ctx, insert, assignment); err != nil {
		if isUniqueViolation(err) {
			err = ErrAlreadyAssigned
			return err
		}
		return fmt.Errorf("create instructor assignment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit assign tx: %w", err)
	}
	return nil
}

// DeleteGuarded removes an assignment with the same class-state guard,
// returning the deleted row. Returns sql.ErrNoRows (class missing),
// ErrClassNotOpen or ErrNotAssigned.
func (r *InstructorAssignmentRepository) DeleteGuarded(ctx context.Context, classID, instructorID string) (assignment *models.InstructorAssignment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin unassign tx: %w", err)
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
	if cls.Status != models.ClassStatusScheduled {
		return nil, ErrClassNotOpen
	}

	query := fmt.Sprintf(`DELETE FROM instructor_assignments WHERE class_id = $1 AND instructor_id = $2 RETURNING %s`, assignmentColumns)
	var deleted models.InstructorAssignment
	if err = tx.GetContext(ctx, &deleted, query, classID, instructorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotAssigned
			return nil, err
		}
		return nil, fmt.Errorf("delete instructor assignment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit unassign tx: %w", err)
	}
	return &deleted, nil
}

// ListByClass returns the instructor roster of a class.
func (r *InstructorAssignmentRepository) ListByClass(ctx context.Context, classID string) ([]models.InstructorAssignmentDetail, error) {
	const query = `SELECT ia.id, ia.class_id, ia.instructor_id, ia.assigned_by, ia.assigned_at,
        u.full_name AS instructor_name, cs.discipline AS class_discipline,
        cs.scheduled_at AS class_scheduled_at, cs.location AS class_location
        FROM instructor_assignments ia
        JOIN users u ON u.id = ia.instructor_id
        JOIN class_sessions cs ON cs.id = ia.class_id
        WHERE ia.class_id = $1
        ORDER BY u.full_name ASC`
	var assignments []models.InstructorAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, classID); err != nil {
		return nil, fmt.Errorf("list class instructors: %w", err)
	}
	return assignments, nil
}

// ListByInstructor returns an instructor's personal class list.
func (r *InstructorAssignmentRepository) ListByInstructor(ctx context.Context, instructorID string) ([]models.InstructorAssignmentDetail, error) {
	const query = `SELECT ia.id, ia.class_id, ia.instructor_id, ia.assigned_by, ia.assigned_at,
        u.full_name AS instructor_name, cs.discipline AS class_discipline,
        cs.scheduled_at AS class_scheduled_at, cs.location AS class_location
        FROM instructor_assignments ia
        JOIN users u ON u.id = ia.instructor_id
        JOIN class_sessions cs ON cs.id = ia.class_id
        WHERE ia.instructor_id = $1
        ORDER BY cs.scheduled_at DESC`
	var assignments []models.InstructorAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, instructorID); err != nil {
		return nil, fmt.Errorf("list instructor classes: %w", err)
	}
	return assignments, nil
}
