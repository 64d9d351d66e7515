// Package events holds the domain events published after committed operations.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCompletedType is the bus/topic identifier for completed movements.
const TransactionCompletedType = "transaction.completed"

// TransactionCompleted is emitted once per committed money movement. It feeds
// the back-office monitoring pipeline; it is not part of the write path.
type TransactionCompleted struct {
	Reference   string          `json:"reference"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`

	SenderAccount   string `json:"sender_account,omitempty"`
	ReceiverAccount string `json:"receiver_account,omitempty"`

	SenderBalanceAfter   *decimal.Decimal `json:"sender_balance_after,omitempty"`
	ReceiverBalanceAfter *decimal.Decimal `json:"receiver_balance_after,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// EventType implements eventbus.Event.
func (TransactionCompleted) EventType() string { return TransactionCompletedType }
