package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studiofit/class-booking-api/internal/models"
	appErrors "github.com/studiofit/class-booking-api/pkg/errors"
)

type mockClassRepo struct {
	sessions map[string]models.ClassSession
	created  *models.ClassSession
	listed   []models.ClassSessionSummary
	total    int
}

func (m *mockClassRepo) Create(ctx context.Context, session *models.ClassSession) error {
	if m.sessions == nil {
		m.sessions = make(map[string]models.ClassSession)
	}
	if session.ID == "" {
		session.ID = "new-class"
	}
	m.sessions[session.ID] = *session
	m.created = session
	return nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.ClassSession, error) {
	if s, ok := m.sessions[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) List(ctx context.Context, filter models.ClassSessionFilter) ([]models.ClassSessionSummary, int, error) {
	return m.listed, m.total, nil
}

func (m *mockClassRepo) Update(ctx context.Context, session *models.ClassSession) (bool, error) {
	existing, ok := m.sessions[session.ID]
	if !ok || existing.Status != models.ClassStatusScheduled {
		return false, nil
	}
	m.sessions[session.ID] = *session
	return true, nil
}

func (m *mockClassRepo) Transition(ctx context.Context, id string, status models.ClassStatus, reason *string) (bool, error) {
	existing, ok := m.sessions[id]
	if !ok || existing.Status != models.ClassStatusScheduled {
		return false, nil
	}
	existing.Status = status
	existing.CancellationReason = reason
	m.sessions[id] = existing
	return true, nil
}

type recordingCancelNotifier struct {
	cancelled []string
}

func (n *recordingCancelNotifier) NotifyClassCancelled(ctx context.Context, classID string, reason *string) {
	n.cancelled = append(n.cancelled, classID)
}

func newScheduledClass(id string) models.ClassSession {
	return models.ClassSession{
		ID:              id,
		Discipline:      models.DisciplineTennis,
		SkillLevel:      models.SkillLevelBeginner,
		ScheduledAt:     time.Now().Add(48 * time.Hour).UTC(),
		DurationMinutes: 60,
		Location:        "Court 1",
		MaxCapacity:     8,
		Status:          models.ClassStatusScheduled,
		CreatedBy:       "admin-1",
	}
}

func TestClassServiceCreateDefaultsDuration(t *testing.T) {
	repo := &mockClassRepo{}
	svc := NewClassSessionService(repo, nil, nil, nil, 0, validator.New(), zap.NewNop())

	session, err := svc.Create(context.Background(), CreateClassRequest{
		Discipline:  models.DisciplineSwimming,
		SkillLevel:  models.SkillLevelIntermediate,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Location:    "Pool A",
		MaxCapacity: 12,
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 60, session.DurationMinutes)
	assert.Equal(t, models.ClassStatusScheduled, session.Status)
	assert.NotNil(t, repo.created)
}

func TestClassServiceCreateRejectsUnknownDiscipline(t *testing.T) {
	svc := NewClassSessionService(&mockClassRepo{}, nil, nil, nil, 0, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateClassRequest{
		Discipline:  "CHESS",
		SkillLevel:  models.SkillLevelBeginner,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Location:    "Hall",
		MaxCapacity: 4,
	}, "admin-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestClassServiceCancelScheduled(t *testing.T) {
	repo := &mockClassRepo{sessions: map[string]models.ClassSession{"c1": newScheduledClass("c1")}}
	notifier := &recordingCancelNotifier{}
	svc := NewClassSessionService(repo, nil, notifier, nil, 0, validator.New(), zap.NewNop())

	reason := "instructor sick"
	session, err := svc.Cancel(context.Background(), "c1", &reason)
	require.NoError(t, err)
	assert.Equal(t, models.ClassStatusCancelled, session.Status)
	require.NotNil(t, session.CancellationReason)
	assert.Equal(t, reason, *session.CancellationReason)
	assert.Equal(t, []string{"c1"}, notifier.cancelled)
}

func TestClassServiceTerminalStatesRejectTransitions(t *testing.T) {
	cancelled := newScheduledClass("c1")
	cancelled.Status = models.ClassStatusCancelled
	completed := newScheduledClass("c2")
	completed.Status = models.ClassStatusCompleted
	repo := &mockClassRepo{sessions: map[string]models.ClassSession{"c1": cancelled, "c2": completed}}
	svc := NewClassSessionService(repo, nil, nil, nil, 0, validator.New(), zap.NewNop())

	for _, id := range []string{"c1", "c2"} {
		_, err := svc.Cancel(context.Background(), id, nil)
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
		assert.Equal(t, "class is cancelled or completed", appErr.Message)

		_, err = svc.Complete(context.Background(), id)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
	}
}

func TestClassServiceCompleteScheduled(t *testing.T) {
	repo := &mockClassRepo{sessions: map[string]models.ClassSession{"c1": newScheduledClass("c1")}}
	svc := NewClassSessionService(repo, nil, nil, nil, 0, validator.New(), zap.NewNop())

	session, err := svc.Complete(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, models.ClassStatusCompleted, session.Status)
}

func TestClassServiceTransitionMissingClass(t *testing.T) {
	svc := NewClassSessionService(&mockClassRepo{}, nil, nil, nil, 0, validator.New(), zap.NewNop())

	_, err := svc.Cancel(context.Background(), "missing", nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "class not found", appErr.Message)
}

func TestClassServiceUpdateTerminalClass(t *testing.T) {
	done := newScheduledClass("c1")
	done.Status = models.ClassStatusCompleted
	repo := &mockClassRepo{sessions: map[string]models.ClassSession{"c1": done}}
	svc := NewClassSessionService(repo, nil, nil, nil, 0, validator.New(), zap.NewNop())

	location := "Court 2"
	_, err := svc.Update(context.Background(), "c1", models.ClassSessionPatch{Location: &location})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestClassServiceUpdateMergesPatch(t *testing.T) {
	repo := &mockClassRepo{sessions: map[string]models.ClassSession{"c1": newScheduledClass("c1")}}
	svc := NewClassSessionService(repo, nil, nil, nil, 0, validator.New(), zap.NewNop())

	capacity := 20
	location := "Court 3"
	session, err := svc.Update(context.Background(), "c1", models.ClassSessionPatch{
		MaxCapacity: &capacity,
		Location:    &location,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, session.MaxCapacity)
	assert.Equal(t, "Court 3", session.Location)
	assert.Equal(t, models.DisciplineTennis, session.Discipline)
}

func TestClassServiceUpdateRejectsZeroCapacity(t *testing.T) {
	svc := NewClassSessionService(&mockClassRepo{}, nil, nil, nil, 0, validator.New(), zap.NewNop())

	capacity := 0
	_, err := svc.Update(context.Background(), "c1", models.ClassSessionPatch{MaxCapacity: &capacity})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

type fakeListCache struct {
	store map[string][]byte
	gets  int
	sets  int
}

func (c *fakeListCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.gets++
	return appErrors.ErrCacheMiss
}

func (c *fakeListCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.sets++
	return nil
}

func (c *fakeListCache) DeleteByPattern(ctx context.Context, pattern string) error {
	return nil
}

func TestClassServiceListPopulatesCacheOnMiss(t *testing.T) {
	repo := &mockClassRepo{
		listed: []models.ClassSessionSummary{{ClassSession: newScheduledClass("c1"), EnrollmentCount: 3, SpotsRemaining: 5}},
		total:  1,
	}
	cache := &fakeListCache{}
	svc := NewClassSessionService(repo, cache, nil, nil, time.Minute, validator.New(), zap.NewNop())

	sessions, pagination, err := svc.List(context.Background(), models.ClassSessionFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 5, sessions[0].SpotsRemaining)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, 1, cache.gets)
	assert.Equal(t, 1, cache.sets)
}
