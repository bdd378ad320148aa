package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studiofit/class-booking-api/internal/models"
)

// CancellationRuleRepository persists refund-eligibility policies. The
// single-active invariant is enforced twice: procedurally by the
// deactivate-then-activate transactions here, and declaratively by a partial
// unique index on (is_active) WHERE is_active in the schema.
type CancellationRuleRepository struct {
	db *sqlx.DB
}

// NewCancellationRuleRepository constructs the repository.
func NewCancellationRuleRepository(db *sqlx.DB) *CancellationRuleRepository {
	return &CancellationRuleRepository{db: db}
}

const cancellationRuleColumns = `id, name, hours_before_class, is_active, created_by, created_at, updated_at`

// List returns all rules, active first.
func (r *CancellationRuleRepository) List(ctx context.Context) ([]models.CancellationRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM cancellation_rules ORDER BY is_active DESC, created_at DESC`, cancellationRuleColumns)
	var rules []models.CancellationRule
	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		return nil, fmt.Errorf("list cancellation rules: %w", err)
	}
	return rules, nil
}

// FindByID loads a rule by identifier.
func (r *CancellationRuleRepository) FindByID(ctx context.Context, id string) (*models.CancellationRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM cancellation_rules WHERE id = $1`, cancellationRuleColumns)
	var rule models.CancellationRule
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		return nil, err
	}
	return &rule, nil
}

// FindActive returns the currently active rule.
func (r *CancellationRuleRepository) FindActive(ctx context.Context) (*models.CancellationRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM cancellation_rules WHERE is_active = TRUE LIMIT 1`, cancellationRuleColumns)
	var rule models.CancellationRule
	if err := r.db.GetContext(ctx, &rule, query); err != nil {
		return nil, err
	}
	return &rule, nil
}

// CreateActive deactivates every rule and inserts the new one as active
// within one transaction.
func (r *CancellationRuleRepository) CreateActive(ctx context.Context, rule *models.CancellationRule) (err error) {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now
	rule.IsActive = true

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create rule tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE cancellation_rules SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE`, now); err != nil {
		return fmt.Errorf("deactivate cancellation rules: %w", err)
	}

	const insert = `INSERT INTO cancellation_rules (id, name, hours_before_class, is_active, created_by, created_at, updated_at)
        VALUES (:id, :name, :hours_before_class, :is_active, :created_by, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insert, rule); err != nil {
		return fmt.Errorf("create cancellation rule: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create rule tx: %w", err)
	}
	return nil
}

// Update persists a rule without touching other rows. Used for patches that
// do not activate the rule.
func (r *CancellationRuleRepository) Update(ctx context.Context, rule *models.CancellationRule) error {
	rule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE cancellation_rules SET name = :name, hours_before_class = :hours_before_class,
        is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("update cancellation rule: %w", err)
	}
	return nil
}

// UpdateActivating deactivates all other rules and applies the patch to the
// target in one transaction, leaving the target as the single active rule.
func (r *CancellationRuleRepository) UpdateActivating(ctx context.Context, rule *models.CancellationRule) (err error) {
	now := time.Now().UTC()
	rule.UpdatedAt = now
	rule.IsActive = true

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activate rule tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE cancellation_rules SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE AND id <> $2`, now, rule.ID); err != nil {
		return fmt.Errorf("deactivate other cancellation rules: %w", err)
	}

	const update = `UPDATE cancellation_rules SET name = :name, hours_before_class = :hours_before_class,
        is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, update, rule); err != nil {
		return fmt.Errorf("activate cancellation rule: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit activate rule tx: %w", err)
	}
	return nil
}

// Delete removes a rule permanently. Returns sql.ErrNoRows when absent.
func (r *CancellationRuleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cancellation_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cancellation rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted rule rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
