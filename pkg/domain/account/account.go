// Package account contains the bank account entity and its lifecycle rules.
package account

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNegativeBalance is returned when a persisted balance would be negative.
	ErrNegativeBalance = errors.New("account balance cannot be negative")
	// ErrInvalidAccountNumber is returned when an account number is not exactly
	// 12 digits or starts with 0.
	ErrInvalidAccountNumber = errors.New("account number must be exactly 12 digits and not start with 0")
	// ErrInvalidStatusTransition is returned when a lifecycle transition is not allowed.
	ErrInvalidStatusTransition = errors.New("invalid account status transition")
	// ErrNilUser is returned when an account is created without an owner.
	ErrNilUser = errors.New("account must have an owner")
)

// Type is the account category.
type Type string

// Account categories.
const (
	TypeSavings Type = "savings"
	TypeCurrent Type = "current"
)

// ValidType reports whether t is a known account category.
func ValidType(t Type) bool {
	return t == TypeSavings || t == TypeCurrent
}

// Status is the account lifecycle status.
type Status string

// Lifecycle statuses. Accounts are created pending, become active on approval,
// may move active -> frozen -> active, and end closed.
const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusFrozen  Status = "frozen"
	StatusClosed  Status = "closed"
)

// NumberLength is the fixed length of an account number.
const NumberLength = 12

// Account represents a user-owned bank account.
//
// Invariants:
//   - Balance is never negative at rest; Validate runs before every persist.
//   - Number, once set, is always exactly 12 digits not starting with 0.
//   - Only StatusActive permits money movement.
type Account struct {
	ID        uuid.UUID
	Number    string
	Type      Type
	Status    Status
	Balance   decimal.Decimal
	UserID    uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a pending account with a zero balance for the given owner.
// The account number is assigned separately, retried until unique against the store.
func New(userID uuid.UUID, accountType Type) (*Account, error) {
	if userID == uuid.Nil {
		return nil, ErrNilUser
	}
	if !ValidType(accountType) {
		return nil, errors.New("unknown account type")
	}
	now := time.Now()
	return &Account{
		ID:        uuid.New(),
		Type:      accountType,
		Status:    StatusPending,
		Balance:   decimal.Zero,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GenerateNumber produces a candidate 12-digit account number that never
// starts with 0. Uniqueness is the caller's responsibility (retry against the store).
func GenerateNumber() string {
	digits := make([]byte, NumberLength)
	digits[0] = '1' + randDigit(9)
	for i := 1; i < NumberLength; i++ {
		digits[i] = '0' + randDigit(10)
	}
	return string(digits)
}

func randDigit(n int64) byte {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		// crypto/rand only fails when the platform entropy source is broken.
		panic(err)
	}
	return byte(v.Int64())
}

// ValidNumber reports whether s is a well-formed account number.
func ValidNumber(s string) bool {
	if len(s) != NumberLength || s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Validate checks the persistence invariants. It must pass before every save.
func (a *Account) Validate() error {
	if a.Balance.IsNegative() {
		return ErrNegativeBalance
	}
	if a.Number != "" && !ValidNumber(a.Number) {
		return ErrInvalidAccountNumber
	}
	if a.UserID == uuid.Nil {
		return ErrNilUser
	}
	return nil
}

// CanTransact reports whether the account may take part in money movement.
func (a *Account) CanTransact() bool {
	return a.Status == StatusActive
}

// IsFrozen reports whether the account is frozen.
func (a *Account) IsFrozen() bool {
	return a.Status == StatusFrozen
}

// Approve activates a pending account.
func (a *Account) Approve() error {
	return a.transition(StatusActive, StatusPending)
}

// Freeze suspends an active account.
func (a *Account) Freeze() error {
	return a.transition(StatusFrozen, StatusActive)
}

// Unfreeze reactivates a frozen account.
func (a *Account) Unfreeze() error {
	return a.transition(StatusActive, StatusFrozen)
}

// Close permanently closes an active or frozen account.
func (a *Account) Close() error {
	return a.transition(StatusClosed, StatusActive, StatusFrozen)
}

func (a *Account) transition(to Status, from ...Status) error {
	for _, s := range from {
		if a.Status == s {
			a.Status = to
			a.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrInvalidStatusTransition
}
