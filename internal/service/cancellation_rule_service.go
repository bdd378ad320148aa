package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studiofit/class-booking-api/internal/models"
	appErrors "github.com/studiofit/class-booking-api/pkg/errors"
)

type cancellationRuleRepository interface {
	List(ctx context.Context) ([]models.CancellationRule, error)
	FindByID(ctx context.Context, id string) (*models.CancellationRule, error)
	FindActive(ctx context.Context) (*models.CancellationRule, error)
	CreateActive(ctx context.Context, rule *models.CancellationRule) error
	Update(ctx context.Context, rule *models.CancellationRule) error
	UpdateActivating(ctx context.Context, rule *models.CancellationRule) error
	Delete(ctx context.Context, id string) error
}

type ruleCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateCancellationRuleRequest describes the rule creation payload.
type CreateCancellationRuleRequest struct {
	Name             string `json:"name" validate:"required"`
	HoursBeforeClass int    `json:"hours_before_class" validate:"required,min=1"`
}

const activeRuleCacheKey = "cancellation_rules:active"

// CancellationRuleService owns the single-active-rule invariant. Creating a
// rule always makes it the active policy; activating via update demotes
// every other rule in the same transaction.
type CancellationRuleService struct {
	repo      cancellationRuleRepository
	cache     ruleCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCancellationRuleService constructs CancellationRuleService. cache may
// be nil.
func NewCancellationRuleService(repo cancellationRuleRepository, cache ruleCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *CancellationRuleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CancellationRuleService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// List returns all rules.
func (s *CancellationRuleService) List(ctx context.Context) ([]models.CancellationRule, error) {
	rules, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cancellation rules")
	}
	return rules, nil
}

// Create inserts a new rule as the single active policy.
func (s *CancellationRuleService) Create(ctx context.Context, req CreateCancellationRuleRequest, createdBy string) (*models.CancellationRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cancellation rule payload")
	}
	rule := &models.CancellationRule{
		Name:             req.Name,
		HoursBeforeClass: req.HoursBeforeClass,
		CreatedBy:        createdBy,
	}
	if err := s.repo.CreateActive(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create cancellation rule")
	}
	s.invalidateActiveCache(ctx)
	return rule, nil
}

// Update applies a patch. When the patch activates the rule, the
// deactivate-then-activate sequence runs inside one store transaction.
func (s *CancellationRuleService) Update(ctx context.Context, id string, patch models.CancellationRulePatch) (*models.CancellationRule, error) {
	if patch.HoursBeforeClass != nil && *patch.HoursBeforeClass < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hours before class must be at least 1")
	}

	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cancellation rule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cancellation rule")
	}

	if patch.Name != nil {
		rule.Name = *patch.Name
	}
	if patch.HoursBeforeClass != nil {
		rule.HoursBeforeClass = *patch.HoursBeforeClass
	}

	activating := patch.IsActive != nil && *patch.IsActive
	if patch.IsActive != nil {
		rule.IsActive = *patch.IsActive
	}

	if activating {
		err = s.repo.UpdateActivating(ctx, rule)
	} else {
		err = s.repo.Update(ctx, rule)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update cancellation rule")
	}
	s.invalidateActiveCache(ctx)
	return rule, nil
}

// Delete removes a rule permanently.
func (s *CancellationRuleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "cancellation rule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete cancellation rule")
	}
	s.invalidateActiveCache(ctx)
	return nil
}

// GetActiveRule returns the policy currently in force, or nil when none is
// active. A nil rule means no cancellation policy is enforced; refund
// consumers treat that as "always eligible", not as an error.
func (s *CancellationRuleService) GetActiveRule(ctx context.Context) (*models.CancellationRule, error) {
	if s.cache != nil {
		var cached models.CancellationRule
		if err := s.cache.Get(ctx, activeRuleCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	rule, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active rule")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, activeRuleCacheKey, rule, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache active rule", zap.Error(err))
		}
	}
	return rule, nil
}

func (s *CancellationRuleService) invalidateActiveCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, activeRuleCacheKey); err != nil {
		s.logger.Warn("failed to invalidate active rule cache", zap.Error(err))
	}
}
