package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studiofit/class-booking-api/internal/models"
	appErrors "github.com/studiofit/class-booking-api/pkg/errors"
	"github.com/studiofit/class-booking-api/pkg/jobs"
)

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	ListRecipientsByClass(ctx context.Context, classID string) ([]string, error)
}

const (
	jobTypeEnrollmentReviewed = "enrollment_reviewed"
	jobTypeClassCancelled     = "class_cancelled"
)

type enrollmentReviewedPayload struct {
	Enrollment models.Enrollment
}

type classCancelledPayload struct {
	ClassID string
	Reason  *string
}

// NotificationService fans review and cancellation events out to students
// as persisted notification rows. Enqueueing never blocks the calling
// request; delivery channels beyond the table are external collaborators.
type NotificationService struct {
	repo   notificationRepository
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService constructs the service and its worker queue.
func NewNotificationService(repo notificationRepository, cfg jobs.QueueConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{repo: repo, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.handleJob, cfg)
	return s
}

// Start launches the fan-out workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the fan-out workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// NotifyEnrollmentReviewed enqueues a review-outcome notification.
func (s *NotificationService) NotifyEnrollmentReviewed(ctx context.Context, enrollment *models.Enrollment) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeEnrollmentReviewed,
		Payload: enrollmentReviewedPayload{Enrollment: *enrollment},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue review notification", zap.Error(err))
	}
}

// NotifyClassCancelled enqueues a cancellation fan-out for every student
// holding a live enrollment on the class.
func (s *NotificationService) NotifyClassCancelled(ctx context.Context, classID string, reason *string) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeClassCancelled,
		Payload: classCancelledPayload{ClassID: classID, Reason: reason},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue cancellation notification", zap.Error(err))
	}
}

// ListForUser returns a user's notifications.
func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

func (s *NotificationService) handleJob(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case jobTypeEnrollmentReviewed:
		payload, ok := job.Payload.(enrollmentReviewedPayload)
		if !ok {
			return fmt.Errorf("unexpected payload for %s", job.Type)
		}
		return s.persistReviewOutcome(ctx, payload.Enrollment)
	case jobTypeClassCancelled:
		payload, ok := job.Payload.(classCancelledPayload)
		if !ok {
			return fmt.Errorf("unexpected payload for %s", job.Type)
		}
		return s.persistClassCancelled(ctx, payload.ClassID, payload.Reason)
	}
	return fmt.Errorf("unknown job type %s", job.Type)
}

func (s *NotificationService) persistReviewOutcome(ctx context.Context, enrollment models.Enrollment) error {
	notification := &models.Notification{
		UserID:  enrollment.StudentID,
		ClassID: &enrollment.ClassID,
	}
	switch enrollment.Status {
	case models.EnrollmentStatusApproved:
		notification.Type = models.NotificationEnrollmentApproved
		notification.Title = "Enrollment approved"
		notification.Body = "Your enrollment request has been approved."
	case models.EnrollmentStatusDenied:
		notification.Type = models.NotificationEnrollmentDenied
		notification.Title = "Enrollment denied"
		notification.Body = "Your enrollment request has been denied."
		if enrollment.DenialReason != nil {
			notification.Body = fmt.Sprintf("Your enrollment request has been denied: %s", *enrollment.DenialReason)
		}
	default:
		return nil
	}
	return s.repo.Create(ctx, notification)
}

func (s *NotificationService) persistClassCancelled(ctx context.Context, classID string, reason *string) error {
	recipients, err := s.repo.ListRecipientsByClass(ctx, classID)
	if err != nil {
		return err
	}
	body := "Your class has been cancelled."
	if reason != nil && *reason != "" {
		body = fmt.Sprintf("Your class has been cancelled: %s", *reason)
	}
	for _, userID := range recipients {
		notification := &models.Notification{
			UserID:  userID,
			Type:    models.NotificationClassCancelled,
			Title:   "Class cancelled",
			Body:    body,
			ClassID: &classID,
		}
		if err := s.repo.Create(ctx, notification); err != nil {
			return err
		}
	}
	return nil
}
