package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors surfaced by guarded store operations. Services translate
// these into domain errors; raw driver errors never cross the service
// boundary.
var (
	// ErrClassNotOpen indicates the class is cancelled or completed.
	ErrClassNotOpen = errors.New("class is not open for changes")
	// ErrClassFull indicates the live enrollment count reached max capacity.
	ErrClassFull = errors.New("class capacity reached")
	// ErrAlreadyEnrolled maps the (class_id, student_id) unique violation.
	ErrAlreadyEnrolled = errors.New("student already enrolled")
	// ErrAlreadyAssigned maps the (class_id, instructor_id) unique violation.
	ErrAlreadyAssigned = errors.New("instructor already assigned")
	// ErrNotEnrolled indicates no enrollment row matched a withdrawal.
	ErrNotEnrolled = errors.New("student not enrolled")
	// ErrNotAssigned indicates no assignment row matched a removal.
	ErrNotAssigned = errors.New("instructor not assigned")
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}
