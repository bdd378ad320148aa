package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studiofit/class-booking-api/internal/models"
	"github.com/studiofit/class-booking-api/internal/repository"
	appErrors "github.com/studiofit/class-booking-api/pkg/errors"
)

// mockEnrollmentRepo mimics the guarded store: class state, capacity and
// uniqueness are all checked under one lock, like the real transaction.
type mockEnrollmentRepo struct {
	mu          sync.Mutex
	classStatus models.ClassStatus
	classID     string
	capacity    int
	enrollments map[string]models.Enrollment
	nextID      int
}

func newMockEnrollmentRepo(classID string, status models.ClassStatus, capacity int) *mockEnrollmentRepo {
	return &mockEnrollmentRepo{
		classStatus: status,
		classID:     classID,
		capacity:    capacity,
		enrollments: make(map[string]models.Enrollment),
	}
}

func (m *mockEnrollmentRepo) CreateGuarded(ctx context.Context, enrollment *models.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if enrollment.ClassID != m.classID {
		return sql.ErrNoRows
	}
	if m.classStatus.IsTerminal() {
		return repository.ErrClassNotOpen
	}
	count := 0
	for _, e := range m.enrollments {
		if e.ClassID == enrollment.ClassID {
			if e.StudentID == enrollment.StudentID {
				return repository.ErrAlreadyEnrolled
			}
			count++
		}
	}
	if count >= m.capacity {
		return repository.ErrClassFull
	}
	m.nextID++
	enrollment.ID = fmt.Sprintf("e%d", m.nextID)
	m.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (m *mockEnrollmentRepo) DeleteGuarded(ctx context.Context, classID, studentID string) (*models.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if classID != m.classID {
		return nil, sql.ErrNoRows
	}
	if m.classStatus.IsTerminal() {
		return nil, repository.ErrClassNotOpen
	}
	for id, e := range m.enrollments {
		if e.ClassID == classID && e.StudentID == studentID {
			delete(m.enrollments, id)
			return &e, nil
		}
	}
	return nil, repository.ErrNotEnrolled
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.EnrollmentDetail
	for _, e := range m.enrollments {
		for _, s := range filter.Statuses {
			if e.Status == s {
				out = append(out, models.EnrollmentDetail{Enrollment: e})
				break
			}
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.EnrollmentDetail
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			out = append(out, models.EnrollmentDetail{Enrollment: e})
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) Review(ctx context.Context, id string, status models.EnrollmentStatus, reviewerID string, reason *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[id]
	if !ok || e.Status != models.EnrollmentStatusPending {
		return false, nil
	}
	now := time.Now().UTC()
	e.Status = status
	e.ReviewedBy = &reviewerID
	e.ReviewedAt = &now
	e.DenialReason = reason
	m.enrollments[id] = e
	return true, nil
}

type recordingReviewNotifier struct {
	reviewed []models.Enrollment
}

func (n *recordingReviewNotifier) NotifyEnrollmentReviewed(ctx context.Context, enrollment *models.Enrollment) {
	n.reviewed = append(n.reviewed, *enrollment)
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	repo := newMockEnrollmentRepo("c1", models.ClassStatusScheduled, 5)
	svc := NewEnrollmentService(repo, nil, nil, validator.New(), zap.NewNop())

	enrollment, err := svc.Enroll(context.Background(), "c1", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusPending, enrollment.Status)
	assert.NotEmpty(t, enrollment.ID)
}

func TestEnrollmentServiceEnrollDuplicate(t *testing.T) {
	repo := newMockEnrollmentRepo("c1", models.ClassStatusScheduled, 5)
	svc := NewEnrollmentService(repo, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), "c1", "s1")
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), "c1", "s1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestEnrollmentServiceEnrollTerminalClass(t *testing.T) {
	repo := newMockEnrollmentRepo("c1", models.ClassStatusCancelled, 5)
	svc := NewEnrollmentService(repo, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), "c1", "s1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
	assert.Equal(t, "class is cancelled or completed", appErr.Message)
}

func TestEnrollmentServiceEnrollMissingClass(t *testing.T) {
	repo := newMockEnrollmentRepo("c1", models.ClassStatusScheduled, 5)
	svc := NewEnrollmentService(repo, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), "missing", "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceCapacityUnderConcurrency(t *testing.T) {
	repo := newMockEnrollmentRepo("c1", models.ClassStatusScheduled, 1)
	svc := NewEnrollmentService(repo, nil, nil, validator.New(), zap.NewNop())

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Enroll(context.Background(), "c1", fmt.Sprintf("student-%d", n))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var successes, fulls int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		if appErrors.FromError(err).Code == appErrors.ErrCapacityExceeded.Code {
			fulls++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, fulls)
}

func TestEnrollmentServiceWithdraw(t *testing.T) {
	repo := newMockEnrollmentRepo("c1", models.ClassStatusScheduled, 5)
	svc := NewEnrollmentService(repo, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), "c1", "s1")
	require.NoError(t, err)

	enrollment, err := svc.CancelEnrollment(context.Background(), "c1", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCancelled, enrollment.Status)
	assert.NotNil(t, enrollment.CancelledAt)

	// Withdrawal frees the seat; the student can rejoin as a fresh request.
	rejoined, err := svc.Enroll(context.Background(), "c1", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusPending, rejoined.Status)
}

func TestEnrollmentServiceWithdrawNotEnrolled(t *testing.T) {
	repo := newMockEnrollmentRepo("c1", models.ClassStatusScheduled, 5)
	svc := NewEnrollmentService(repo, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.CancelEnrollment(context.Background(), "c1", "s1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "student is not enrolled in this class", appErr.Message)
}

func TestEnrollmentServiceApprove(t *testing.T) {
	repo := newMockEnrollmentRepo("c1", models.ClassStatusScheduled, 5)
	notifier := &recordingReviewNotifier{}
	svc := NewEnrollmentService(repo, notifier, nil, validator.New(), zap.NewNop())

	created, err := svc.Enroll(context.Background(), "c1", "s1")
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), created.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, "admin-1", *approved.ReviewedBy)
	assert.NotNil(t, approved.ReviewedAt)
	require.Len(t, notifier.reviewed, 1)
	assert.Equal(t, models.EnrollmentStatusApproved, notifier.reviewed[0].Status)
}

func TestEnrollmentServiceDenyWithReason(t *testing.T) {
	repo := newMockEnrollmentRepo("c1", models.ClassStatusScheduled, 5)
	svc := NewEnrollmentService(repo, nil, nil, validator.New(), zap.NewNop())

	created, err := svc.Enroll(context.Background(), "c1", "s1")
	require.NoError(t, err)

	reason := "class level mismatch"
	denied, err := svc.Deny(context.Background(), created.ID, "admin-1", &reason)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusDenied, denied.Status)
	require.NotNil(t, denied.DenialReason)
	assert.Equal(t, reason, *denied.DenialReason)
}

func TestEnrollmentServiceReviewGuardsNonPending(t *testing.T) {
	repo := newMockEnrollmentRepo("c1", models.ClassStatusScheduled, 5)
	svc := NewEnrollmentService(repo, nil, nil, validator.New(), zap.NewNop())

	created, err := svc.Enroll(context.Background(), "c1", "s1")
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), created.ID, "admin-1")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), created.ID, "admin-2")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
	assert.Equal(t, "Only pending enrollments can be approved", appErr.Message)

	_, err = svc.Deny(context.Background(), created.ID, "admin-2", nil)
	require.Error(t, err)
	appErr = appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
	assert.Equal(t, "Only pending enrollments can be denied", appErr.Message)
}

func TestEnrollmentServiceReviewMissingEnrollment(t *testing.T) {
	repo := newMockEnrollmentRepo("c1", models.ClassStatusScheduled, 5)
	svc := NewEnrollmentService(repo, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Approve(context.Background(), "missing", "admin-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "enrollment not found", appErr.Message)
}

func TestEnrollmentServiceListForAdminDefaultsToAllStatuses(t *testing.T) {
	repo := newMockEnrollmentRepo("c1", models.ClassStatusScheduled, 5)
	svc := NewEnrollmentService(repo, nil, nil, validator.New(), zap.NewNop())

	created, err := svc.Enroll(context.Background(), "c1", "s1")
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), created.ID, "admin-1")
	require.NoError(t, err)
	_, err = svc.Enroll(context.Background(), "c1", "s2")
	require.NoError(t, err)

	all, err := svc.ListForAdmin(context.Background(), models.EnrollmentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.ListForAdmin(context.Background(), models.EnrollmentFilter{
		Statuses: []models.EnrollmentStatus{models.EnrollmentStatusPending},
	})
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
