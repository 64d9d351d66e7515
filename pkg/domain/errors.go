// Package domain holds entities and errors shared across services.
package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Common domain errors
var (
	// ErrTransaction is the base error for every money-movement failure.
	// All typed transaction errors match it via errors.Is.
	ErrTransaction = errors.New("transaction failed")
	// ErrAccountNotFound is returned when a requested account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrTransactionNotFound is returned when a requested ledger record does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrUserNotFound is returned when a requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists.
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrInvalidInput is returned when caller-supplied data fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when a user is not authorized to perform an action.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a user is not allowed to perform an action.
	ErrForbidden = errors.New("forbidden")
)

// InsufficientFundsError is returned when a withdrawal or transfer would
// drive the account balance below zero.
type InsufficientFundsError struct {
	AccountNumber string
	Available     decimal.Decimal
	Requested     decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf(
		"insufficient funds on account %s: available $%s, requested $%s",
		e.AccountNumber, e.Available.StringFixed(2), e.Requested.StringFixed(2),
	)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrTransaction }

// AccountNotActiveError is returned when the account's status does not permit
// the requested money movement.
type AccountNotActiveError struct {
	AccountNumber string
	Status        string
}

func (e *AccountNotActiveError) Error() string {
	return fmt.Sprintf(
		"account %s is %s and cannot perform transactions",
		e.AccountNumber, e.Status,
	)
}

func (e *AccountNotActiveError) Unwrap() error { return ErrTransaction }

// ConcurrentTransactionError is returned when the optimistic balance
// double-check loses a race: the conditional update matched zero rows because
// another writer changed the balance between read and write.
type ConcurrentTransactionError struct {
	AccountNumber string
}

func (e *ConcurrentTransactionError) Error() string {
	return fmt.Sprintf(
		"account %s balance was modified by another transaction",
		e.AccountNumber,
	)
}

func (e *ConcurrentTransactionError) Unwrap() error { return ErrTransaction }

// LockTimeoutError is returned when an exclusive row lock could not be
// acquired within the configured lock_timeout. It is distinct from
// ConcurrentTransactionError: the lock was never obtained, so no state was read.
type LockTimeoutError struct {
	AccountNumber string
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf(
		"timed out waiting for exclusive lock on account %s",
		e.AccountNumber,
	)
}

func (e *LockTimeoutError) Unwrap() error { return ErrTransaction }
