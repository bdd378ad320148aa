package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studiofit/class-booking-api/internal/models"
	appErrors "github.com/studiofit/class-booking-api/pkg/errors"
)

type instructorAssignmentRepository interface {
	CreateGuarded(ctx context.Context, assignment *models.InstructorAssignment) error
	DeleteGuarded(ctx context.Context, classID, instructorID string) (*models.InstructorAssignment, error)
	ListByClass(ctx context.Context, classID string) ([]models.InstructorAssignmentDetail, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]models.InstructorAssignmentDetail, error)
}

type instructorResolver interface {
	FindActiveByRole(ctx context.Context, id string, role models.UserRole) (*models.User, error)
}

// AssignInstructorRequest describes the assignment payload.
type AssignInstructorRequest struct {
	InstructorID string `json:"instructor_id" validate:"required"`
}

// InstructorAssignmentService manages the instructor roster of scheduled
// classes.
type InstructorAssignmentService struct {
	repo      instructorAssignmentRepository
	users     instructorResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInstructorAssignmentService constructs InstructorAssignmentService.
func NewInstructorAssignmentService(repo instructorAssignmentRepository, users instructorResolver, validate *validator.Validate, logger *zap.Logger) *InstructorAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorAssignmentService{repo: repo, users: users, validator: validate, logger: logger}
}

// Assign adds an instructor to a scheduled class. The instructor reference
// must resolve to an active user holding the INSTRUCTOR role.
func (s *InstructorAssignmentService) Assign(ctx context.Context, classID string, req AssignInstructorRequest, assignedBy string) (*models.InstructorAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if _, err := s.users.FindActiveByRole(ctx, req.InstructorID, models.RoleInstructor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve instructor")
	}

	assignment := &models.InstructorAssignment{
		ClassID:      classID,
		InstructorID: req.InstructorID,
		AssignedBy:   assignedBy,
	}
	if err := s.repo.CreateGuarded(ctx, assignment); err != nil {
		return nil, translateClassGuardErr(err)
	}
	s.logger.Info("instructor assigned",
		zap.String("class_id", classID),
		zap.String("instructor_id", req.InstructorID))
	return assignment, nil
}

// Remove detaches an instructor from a scheduled class.
func (s *InstructorAssignmentService) Remove(ctx context.Context, classID, instructorID string) (*models.InstructorAssignment, error) {
	removed, err := s.repo.DeleteGuarded(ctx, classID, instructorID)
	if err != nil {
		return nil, translateClassGuardErr(err)
	}
	return removed, nil
}

// ListByClass returns the instructor roster of a class.
func (s *InstructorAssignmentService) ListByClass(ctx context.Context, classID string) ([]models.InstructorAssignmentDetail, error) {
	assignments, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class instructors")
	}
	return assignments, nil
}

// ListByInstructor returns an instructor's personal class list.
func (s *InstructorAssignmentService) ListByInstructor(ctx context.Context, instructorID string) ([]models.InstructorAssignmentDetail, error) {
	assignments, err := s.repo.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructor classes")
	}
	return assignments, nil
}
