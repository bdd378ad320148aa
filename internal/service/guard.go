package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/studiofit/class-booking-api/internal/models"
	"github.com/studiofit/class-booking-api/internal/repository"
	appErrors "github.com/studiofit/class-booking-api/pkg/errors"
)

// classReader is the shared dependency every class-gated service uses to
// observe class state.
type classReader interface {
	FindByID(ctx context.Context, id string) (*models.ClassSession, error)
}

// ensureClassOpen rejects operations against terminal classes. All
// class-dependent mutations share this guard so its semantics cannot drift
// between the enroll, assign and update paths.
func ensureClassOpen(cls *models.ClassSession) error {
	if cls.Status.IsTerminal() {
		return appErrors.Clone(appErrors.ErrInvalidState, "class is cancelled or completed")
	}
	return nil
}

// translateClassGuardErr maps store-level guard failures onto the domain
// taxonomy. The authoritative guard runs inside the store transaction; this
// translation keeps raw storage errors from crossing the service boundary.
func translateClassGuardErr(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	case errors.Is(err, repository.ErrClassNotOpen):
		return appErrors.Clone(appErrors.ErrInvalidState, "class is cancelled or completed")
	case errors.Is(err, repository.ErrClassFull):
		return appErrors.Clone(appErrors.ErrCapacityExceeded, "class is full")
	case errors.Is(err, repository.ErrAlreadyEnrolled):
		return appErrors.Clone(appErrors.ErrConflict, "student already enrolled in this class")
	case errors.Is(err, repository.ErrAlreadyAssigned):
		return appErrors.Clone(appErrors.ErrConflict, "instructor already assigned to this class")
	case errors.Is(err, repository.ErrNotEnrolled):
		return appErrors.Clone(appErrors.ErrNotFound, "student is not enrolled in this class")
	case errors.Is(err, repository.ErrNotAssigned):
		return appErrors.Clone(appErrors.ErrNotFound, "instructor is not assigned to this class")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "storage failure")
}
