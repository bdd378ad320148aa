package models

import "time"

// CancellationRule is a named refund-eligibility policy. At most one rule is
// active at any time; consumers compute refund eligibility from the active
// rule's hours-before-class threshold.
type CancellationRule struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	HoursBeforeClass int       `db:"hours_before_class" json:"hours_before_class"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedBy        string    `db:"created_by" json:"created_by"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// CancellationRulePatch carries optional updates for a rule. Setting IsActive
// to true deactivates every other rule in the same transaction.
type CancellationRulePatch struct {
	Name             *string `json:"name,omitempty"`
	HoursBeforeClass *int    `json:"hours_before_class,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
}
