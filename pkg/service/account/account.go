// Package account provides business logic for account lifecycle reads and
// customer-facing account operations. Money movement lives in the ledger
// service; administrative status changes live in the admin service.
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/corebank/platform/pkg/domain"
	"github.com/corebank/platform/pkg/domain/account"
	"github.com/corebank/platform/pkg/domain/transaction"
	"github.com/corebank/platform/pkg/repository"
)

// statementLimit caps how many ledger records a single statement returns.
const statementLimit = 100

// Service provides account reads and opening of additional accounts.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a new Service with a UnitOfWork and logger.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Open creates an additional account for an existing user. The account starts
// pending with a zero balance.
func (s *Service) Open(
	ctx context.Context,
	userID uuid.UUID,
	accountType account.Type,
) (acct *account.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if _, err = users.Get(ctx, userID); err != nil {
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if acct, err = account.New(userID, accountType); err != nil {
			return err
		}
		if acct.Number, err = AllocateNumber(ctx, accounts); err != nil {
			return err
		}
		return accounts.Create(ctx, acct)
	})
	if err != nil {
		s.logger.Error("account opening failed", "user_id", userID, "error", err)
		return nil, err
	}
	s.logger.Info("account opened", "user_id", userID, "account", acct.Number)
	return acct, nil
}

// Get retrieves an account by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (acct *account.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acct, err = accounts.Get(ctx, id)
		return err
	})
	if err != nil {
		acct = nil
	}
	return
}

// GetByNumber retrieves an account by its 12-digit number.
func (s *Service) GetByNumber(ctx context.Context, number string) (acct *account.Account, err error) {
	if !account.ValidNumber(number) {
		return nil, domain.ErrAccountNotFound
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acct, err = accounts.GetByNumber(ctx, number)
		return err
	})
	if err != nil {
		acct = nil
	}
	return
}

// ListByUser returns every account owned by the user.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) (accts []*account.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		accts, err = accounts.ListByUser(ctx, userID)
		return err
	})
	return
}

// Statement returns the account's most recent ledger records, newest first.
func (s *Service) Statement(
	ctx context.Context,
	accountID uuid.UUID,
) (records []*transaction.Transaction, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		records, err = transactions.ListByAccount(ctx, accountID, statementLimit)
		return err
	})
	return
}

// AllocateNumber draws random 12-digit numbers until one is unused. The
// keyspace makes more than a couple of attempts practically unreachable; the
// bound exists so a broken uniqueness check cannot spin forever.
func AllocateNumber(ctx context.Context, accounts repository.AccountRepository) (string, error) {
	const maxAttempts = 10
	for i := 0; i < maxAttempts; i++ {
		number := account.GenerateNumber()
		exists, err := accounts.ExistsByNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique account number")
}
