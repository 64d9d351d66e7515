// Package repository defines the persistence contracts consumed by the
// service layer. Implementations live in infra/repository.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/platform/pkg/domain/account"
	"github.com/corebank/platform/pkg/domain/admin"
	"github.com/corebank/platform/pkg/domain/transaction"
	"github.com/corebank/platform/pkg/domain/user"
)

// AccountRepository persists bank accounts.
//
// GetForUpdate and UpdateBalance together form the locking discipline for all
// balance mutation: fetch-with-exclusive-lock, then a conditional update that
// only matches while the stored balance still equals the value just read.
type AccountRepository interface {
	Create(ctx context.Context, a *account.Account) error
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByNumber(ctx context.Context, number string) (*account.Account, error)
	// GetForUpdate fetches the account identified by number and acquires an
	// exclusive row lock held until the enclosing unit of work commits or
	// aborts. Returns domain.ErrAccountNotFound if no such account exists and
	// *domain.LockTimeoutError if the lock cannot be acquired in time.
	GetForUpdate(ctx context.Context, number string) (*account.Account, error)
	// UpdateBalance applies balance = balance + delta, guarded by a predicate
	// requiring the stored balance to still equal expected. It returns the
	// number of rows matched: zero means another writer got there first.
	UpdateBalance(ctx context.Context, id uuid.UUID, expected, delta decimal.Decimal) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status account.Status) error
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error)
	// ListByStatus returns accounts in the given status, oldest first. It
	// backs the pending-approval queue.
	ListByStatus(ctx context.Context, status account.Status, limit int) ([]*account.Account, error)
	CountByStatus(ctx context.Context) (map[account.Status]int64, error)
	// TotalBalance sums balances across accounts in the given statuses.
	TotalBalance(ctx context.Context, statuses ...account.Status) (decimal.Decimal, error)
}

// TransactionRepository persists immutable ledger records. There is no update
// or delete: ledger rows are append-only and outlive the accounts they
// reference (restrict foreign keys).
type TransactionRepository interface {
	Create(ctx context.Context, t *transaction.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	ExistsByReference(ctx context.Context, reference string) (bool, error)
	// ListByAccount returns records where the account is sender or receiver,
	// newest first.
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*transaction.Transaction, error)
	ListRecent(ctx context.Context, limit int) ([]*transaction.Transaction, error)
	// ListHighValue returns records at or above the given amount since the
	// given time, newest first. This feeds the fraud-signal review queue.
	ListHighValue(ctx context.Context, min decimal.Decimal, since time.Time, limit int) ([]*transaction.Transaction, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	VolumeSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
}

// UserRepository persists platform users.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Count(ctx context.Context) (int64, error)
}

// AdminActionRepository persists the back-office audit trail.
type AdminActionRepository interface {
	Create(ctx context.Context, a *admin.Action) error
	ListRecent(ctx context.Context, limit int) ([]*admin.Action, error)
}
