package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studiofit/class-booking-api/internal/models"
	appErrors "github.com/studiofit/class-booking-api/pkg/errors"
)

// Literal review-guard messages exposed by the API contract.
const (
	msgOnlyPendingApproved = "Only pending enrollments can be approved"
	msgOnlyPendingDenied   = "Only pending enrollments can be denied"
)

type enrollmentRepository interface {
	CreateGuarded(ctx context.Context, enrollment *models.Enrollment) error
	DeleteGuarded(ctx context.Context, classID, studentID string) (*models.Enrollment, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	Review(ctx context.Context, id string, status models.EnrollmentStatus, reviewerID string, reason *string) (bool, error)
}

type reviewNotifier interface {
	NotifyEnrollmentReviewed(ctx context.Context, enrollment *models.Enrollment)
}

// DenyEnrollmentRequest carries the optional denial reason.
type DenyEnrollmentRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// EnrollmentService owns the capacity-gated self-enrollment workflow and the
// admin review transitions out of PENDING.
type EnrollmentService struct {
	repo      enrollmentRepository
	notifier  reviewNotifier
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService. notifier and metrics may
// be nil.
func NewEnrollmentService(repo enrollmentRepository, notifier reviewNotifier, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, notifier: notifier, metrics: metrics, validator: validate, logger: logger}
}

// Enroll registers a pending enrollment for the student. State, capacity and
// uniqueness are all enforced inside one store transaction; this method only
// translates the outcome.
func (s *EnrollmentService) Enroll(ctx context.Context, classID, studentID string) (*models.Enrollment, error) {
	enrollment := &models.Enrollment{
		ClassID:    classID,
		StudentID:  studentID,
		Status:     models.EnrollmentStatusPending,
		EnrolledAt: time.Now().UTC(),
	}
	if err := s.repo.CreateGuarded(ctx, enrollment); err != nil {
		return nil, translateClassGuardErr(err)
	}
	s.logger.Info("enrollment created",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("class_id", classID),
		zap.String("student_id", studentID))
	return enrollment, nil
}

// CancelEnrollment withdraws the student from a class. The row is deleted;
// the caller receives it with a CANCELLED status. Rejoining requires a fresh
// enrollment.
func (s *EnrollmentService) CancelEnrollment(ctx context.Context, classID, studentID string) (*models.Enrollment, error) {
	deleted, err := s.repo.DeleteGuarded(ctx, classID, studentID)
	if err != nil {
		return nil, translateClassGuardErr(err)
	}
	now := time.Now().UTC()
	deleted.Status = models.EnrollmentStatusCancelled
	deleted.CancelledAt = &now
	return deleted, nil
}

// ListForAdmin returns enrollments in the requested status set, or all
// statuses when the set is empty.
func (s *EnrollmentService) ListForAdmin(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	if len(filter.Statuses) == 0 {
		filter.Statuses = models.AllEnrollmentStatuses
	}
	enrollments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// MyEnrollments returns a student's own rows across all statuses.
func (s *EnrollmentService) MyEnrollments(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// Approve moves a pending enrollment to APPROVED.
func (s *EnrollmentService) Approve(ctx context.Context, id, adminID string) (*models.Enrollment, error) {
	return s.review(ctx, id, adminID, models.EnrollmentStatusApproved, nil, msgOnlyPendingApproved)
}

// Deny moves a pending enrollment to DENIED with an optional reason.
func (s *EnrollmentService) Deny(ctx context.Context, id, adminID string, reason *string) (*models.Enrollment, error) {
	return s.review(ctx, id, adminID, models.EnrollmentStatusDenied, reason, msgOnlyPendingDenied)
}

func (s *EnrollmentService) review(ctx context.Context, id, adminID string, status models.EnrollmentStatus, reason *string, guardMsg string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, guardMsg)
	}

	ok, err := s.repo.Review(ctx, id, status, adminID, reason)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review enrollment")
	}
	if !ok {
		// Lost the race against a concurrent review; the pending predicate
		// in the update keeps the transition single-shot.
		return nil, appErrors.Clone(appErrors.ErrInvalidState, guardMsg)
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	s.metrics.RecordEnrollmentDecision(strings.ToLower(string(status)))
	if s.notifier != nil {
		s.notifier.NotifyEnrollmentReviewed(ctx, updated)
	}
	return updated, nil
}
