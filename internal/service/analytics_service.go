package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/studiofit/class-booking-api/internal/models"
	appErrors "github.com/studiofit/class-booking-api/pkg/errors"
)

const dashboardCacheKey = "analytics:dashboard"

type analyticsRepository interface {
	CountClassesByStatus(ctx context.Context) ([]models.StatusCount, error)
	CountEnrollmentsByStatus(ctx context.Context) ([]models.StatusCount, error)
	CountUpcomingClasses(ctx context.Context, now time.Time) (int, error)
	CountActiveInstructors(ctx context.Context) (int, error)
}

type snapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// AnalyticsService assembles the admin dashboard snapshot, caching the
// result briefly since every counter is a full-table aggregate.
type AnalyticsService struct {
	repo     analyticsRepository
	cache    snapshotCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(repo analyticsRepository, cache snapshotCache, cacheTTL time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &AnalyticsService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Dashboard returns aggregate counts for the admin dashboard.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*models.DashboardSnapshot, error) {
	if s.cache != nil {
		var cached models.DashboardSnapshot
		if err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	classCounts, err := s.repo.CountClassesByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate class counts")
	}
	enrollmentCounts, err := s.repo.CountEnrollmentsByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate enrollment counts")
	}
	upcoming, err := s.repo.CountUpcomingClasses(ctx, time.Now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count upcoming classes")
	}
	instructors, err := s.repo.CountActiveInstructors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active instructors")
	}

	snapshot := &models.DashboardSnapshot{
		ClassesByStatus:     make(map[models.ClassStatus]int, len(classCounts)),
		EnrollmentsByStatus: make(map[models.EnrollmentStatus]int, len(enrollmentCounts)),
		UpcomingClasses:     upcoming,
		ActiveInstructors:   instructors,
	}
	for _, c := range classCounts {
		snapshot.ClassesByStatus[models.ClassStatus(c.Status)] = c.Count
	}
	for _, c := range enrollmentCounts {
		snapshot.EnrollmentsByStatus[models.EnrollmentStatus(c.Status)] = c.Count
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, snapshot, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard snapshot", zap.Error(err))
		}
	}
	return snapshot, nil
}
