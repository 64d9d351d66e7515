// Package admin contains back-office entities.
package admin

import (
	"time"

	"github.com/google/uuid"
)

// ActionType classifies an administrative action for the audit trail.
type ActionType string

// Administrative action types.
const (
	ActionAccountApprove  ActionType = "account_approve"
	ActionAccountFreeze   ActionType = "account_freeze"
	ActionAccountUnfreeze ActionType = "account_unfreeze"
	ActionAccountClose    ActionType = "account_close"
)

// Action is one audit-trail entry for an administrative operation.
type Action struct {
	ID              uuid.UUID
	Type            ActionType
	Description     string
	Reason          string
	AdminUserID     uuid.UUID
	TargetAccountID *uuid.UUID
	CreatedAt       time.Time
}

// NewAction records an administrative action against an account.
func NewAction(
	actionType ActionType,
	adminUserID uuid.UUID,
	targetAccountID uuid.UUID,
	description, reason string,
) *Action {
	return &Action{
		ID:              uuid.New(),
		Type:            actionType,
		Description:     description,
		Reason:          reason,
		AdminUserID:     adminUserID,
		TargetAccountID: &targetAccountID,
		CreatedAt:       time.Now(),
	}
}
