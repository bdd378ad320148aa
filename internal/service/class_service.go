package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studiofit/class-booking-api/internal/models"
	appErrors "github.com/studiofit/class-booking-api/pkg/errors"
)

type classSessionRepository interface {
	Create(ctx context.Context, session *models.ClassSession) error
	FindByID(ctx context.Context, id string) (*models.ClassSession, error)
	List(ctx context.Context, filter models.ClassSessionFilter) ([]models.ClassSessionSummary, int, error)
	Update(ctx context.Context, session *models.ClassSession) (bool, error)
	Transition(ctx context.Context, id string, status models.ClassStatus, reason *string) (bool, error)
}

type classListCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cancelNotifier interface {
	NotifyClassCancelled(ctx context.Context, classID string, reason *string)
}

// CreateClassRequest describes the admin class creation payload.
type CreateClassRequest struct {
	Discipline      models.Discipline `json:"discipline" validate:"required,oneof=SWIMMING TENNIS GYMNASTICS CLIMBING JUDO"`
	SkillLevel      models.SkillLevel `json:"skill_level" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	ScheduledAt     time.Time         `json:"scheduled_at" validate:"required"`
	DurationMinutes *int              `json:"duration_minutes" validate:"omitempty,min=15,max=480"`
	Location        string            `json:"location" validate:"required"`
	MaxCapacity     int               `json:"max_capacity" validate:"required,min=1"`
}

// cachedClassList is the payload stored under class list cache keys.
type cachedClassList struct {
	Sessions []models.ClassSessionSummary `json:"sessions"`
	Total    int                          `json:"total"`
}

const classListCachePrefix = "classes:list:"

// ClassSessionService owns the class session lifecycle: creation, guarded
// updates and the SCHEDULED -> CANCELLED | COMPLETED transitions.
type ClassSessionService struct {
	repo      classSessionRepository
	cache     classListCache
	notifier  cancelNotifier
	metrics   *MetricsService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassSessionService constructs ClassSessionService. cache, notifier and
// metrics may be nil.
func NewClassSessionService(repo classSessionRepository, cache classListCache, notifier cancelNotifier, metrics *MetricsService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ClassSessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassSessionService{repo: repo, cache: cache, notifier: notifier, metrics: metrics, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// Create schedules a new class session. Duration defaults to 60 minutes.
func (s *ClassSessionService) Create(ctx context.Context, req CreateClassRequest, createdBy string) (*models.ClassSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	duration := models.DefaultDurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}
	session := &models.ClassSession{
		Discipline:      req.Discipline,
		SkillLevel:      req.SkillLevel,
		ScheduledAt:     req.ScheduledAt.UTC(),
		DurationMinutes: duration,
		Location:        req.Location,
		MaxCapacity:     req.MaxCapacity,
		Status:          models.ClassStatusScheduled,
		CreatedBy:       createdBy,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	s.invalidateListCache(ctx)
	return session, nil
}

// Get loads a single session.
func (s *ClassSessionService) Get(ctx context.Context, id string) (*models.ClassSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return session, nil
}

// List returns sessions with seat availability and pagination metadata.
// Results are served from cache when a cache is configured.
func (s *ClassSessionService) List(ctx context.Context, filter models.ClassSessionFilter) ([]models.ClassSessionSummary, *models.Pagination, error) {
	key := s.listCacheKey(filter)
	if s.cache != nil {
		var cached cachedClassList
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached.Sessions, models.NewPagination(filter.Page, filter.PageSize, cached.Total), nil
		}
		s.metrics.RecordCacheOperation(false)
	}

	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cachedClassList{Sessions: sessions, Total: total}, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache class list", zap.Error(err))
		}
	}
	return sessions, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Update merges the provided fields into a session that is still scheduled.
func (s *ClassSessionService) Update(ctx context.Context, id string, patch models.ClassSessionPatch) (*models.ClassSession, error) {
	if patch.MaxCapacity != nil && *patch.MaxCapacity < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "max capacity must be at least 1")
	}
	if patch.DurationMinutes != nil && *patch.DurationMinutes < 15 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "duration must be at least 15 minutes")
	}

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureClassOpen(session); err != nil {
		return nil, err
	}

	if patch.Discipline != nil {
		session.Discipline = *patch.Discipline
	}
	if patch.SkillLevel != nil {
		session.SkillLevel = *patch.SkillLevel
	}
	if patch.ScheduledAt != nil {
		session.ScheduledAt = patch.ScheduledAt.UTC()
	}
	if patch.DurationMinutes != nil {
		session.DurationMinutes = *patch.DurationMinutes
	}
	if patch.Location != nil {
		session.Location = *patch.Location
	}
	if patch.MaxCapacity != nil {
		session.MaxCapacity = *patch.MaxCapacity
	}

	ok, err := s.repo.Update(ctx, session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	if !ok {
		// A concurrent cancel/complete won the race between our read and the
		// conditional update.
		return nil, s.explainGuardMiss(ctx, id)
	}
	s.invalidateListCache(ctx)
	return session, nil
}

// Cancel transitions a scheduled session to CANCELLED and fans the event out
// to enrolled students.
func (s *ClassSessionService) Cancel(ctx context.Context, id string, reason *string) (*models.ClassSession, error) {
	session, err := s.transition(ctx, id, models.ClassStatusCancelled, reason)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyClassCancelled(ctx, id, reason)
	}
	return session, nil
}

// Complete transitions a scheduled session to COMPLETED.
func (s *ClassSessionService) Complete(ctx context.Context, id string) (*models.ClassSession, error) {
	return s.transition(ctx, id, models.ClassStatusCompleted, nil)
}

func (s *ClassSessionService) transition(ctx context.Context, id string, status models.ClassStatus, reason *string) (*models.ClassSession, error) {
	ok, err := s.repo.Transition(ctx, id, status, reason)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to transition class")
	}
	if !ok {
		return nil, s.explainGuardMiss(ctx, id)
	}
	s.metrics.RecordClassTransition(string(status))
	s.invalidateListCache(ctx)
	return s.Get(ctx, id)
}

// explainGuardMiss distinguishes "missing" from "terminal" after a guarded
// write matched zero rows.
func (s *ClassSessionService) explainGuardMiss(ctx context.Context, id string) error {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if err := ensureClassOpen(session); err != nil {
		return err
	}
	return appErrors.Clone(appErrors.ErrInvalidState, "class changed concurrently")
}

func (s *ClassSessionService) listCacheKey(filter models.ClassSessionFilter) string {
	from, to := "", ""
	if filter.From != nil {
		from = filter.From.UTC().Format(time.RFC3339)
	}
	if filter.To != nil {
		to = filter.To.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s%s:%s:%s:%s:%s:%d:%d", classListCachePrefix,
		filter.Status, filter.Discipline, filter.SkillLevel, from, to, filter.Page, filter.PageSize)
}

func (s *ClassSessionService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, classListCachePrefix+"*"); err != nil {
		s.logger.Warn("failed to invalidate class list cache", zap.Error(err))
	}
}
