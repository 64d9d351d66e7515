// Package transaction contains the immutable ledger record entity.
package transaction

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrAmountNotPositive is returned when the recorded amount is not strictly positive.
	ErrAmountNotPositive = errors.New("transaction amount must be positive")
	// ErrDepositShape is returned when a deposit record is missing a receiver or carries a sender.
	ErrDepositShape = errors.New("deposit must have a receiver account and no sender account")
	// ErrWithdrawalShape is returned when a withdrawal record is missing a sender or carries a receiver.
	ErrWithdrawalShape = errors.New("withdrawal must have a sender account and no receiver account")
	// ErrTransferShape is returned when a transfer record does not reference two distinct accounts.
	ErrTransferShape = errors.New("transfer must have distinct sender and receiver accounts")
)

// Type classifies a money movement.
type Type string

// Transaction types.
const (
	TypeDeposit    Type = "deposit"
	TypeWithdrawal Type = "withdrawal"
	TypeTransfer   Type = "transfer"
)

// referencePrefix starts every ledger reference number.
const referencePrefix = "TXN"

// Transaction is an immutable record of one completed money movement.
// It is created exactly once as the terminal step of a successful operation
// and is never updated or deleted afterwards. Post-transaction balances are
// captured at completion for audit and are not recomputed later.
type Transaction struct {
	ID          uuid.UUID
	Reference   string
	Type        Type
	Amount      decimal.Decimal
	Description string

	SenderAccountID   *uuid.UUID
	ReceiverAccountID *uuid.UUID

	SenderBalanceAfter   *decimal.Decimal
	ReceiverBalanceAfter *decimal.Decimal

	CreatedAt time.Time
}

// GenerateReference produces a candidate reference number: a TXN prefix, a
// timestamp part, and a 4-character random suffix. Uniqueness is the caller's
// responsibility (retry against the store).
func GenerateReference(now time.Time) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	suffix := make([]byte, 4)
	for i := range suffix {
		v, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			panic(err)
		}
		suffix[i] = alphabet[v.Int64()]
	}
	return referencePrefix + now.Format("20060102150405") + string(suffix)
}

// Validate checks the structural invariants for the record's type.
func (t *Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrAmountNotPositive
	}
	switch t.Type {
	case TypeDeposit:
		if t.ReceiverAccountID == nil || t.SenderAccountID != nil {
			return ErrDepositShape
		}
	case TypeWithdrawal:
		if t.SenderAccountID == nil || t.ReceiverAccountID != nil {
			return ErrWithdrawalShape
		}
	case TypeTransfer:
		if t.SenderAccountID == nil || t.ReceiverAccountID == nil ||
			*t.SenderAccountID == *t.ReceiverAccountID {
			return ErrTransferShape
		}
	default:
		return errors.New("unknown transaction type")
	}
	return nil
}

// DisplayAmountFor returns the signed amount from the perspective of the given
// account: positive for money in, negative for money out, zero if the account
// is not referenced by this record.
func (t *Transaction) DisplayAmountFor(accountID uuid.UUID) decimal.Decimal {
	switch {
	case t.ReceiverAccountID != nil && *t.ReceiverAccountID == accountID:
		return t.Amount
	case t.SenderAccountID != nil && *t.SenderAccountID == accountID:
		return t.Amount.Neg()
	default:
		return decimal.Zero
	}
}
