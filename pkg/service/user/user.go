// Package user provides business logic for registration and user lookups.
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/corebank/platform/pkg/domain"
	"github.com/corebank/platform/pkg/domain/account"
	"github.com/corebank/platform/pkg/domain/user"
	"github.com/corebank/platform/pkg/repository"
	accountsvc "github.com/corebank/platform/pkg/service/account"
	"github.com/corebank/platform/pkg/utils"
)

// Service provides business logic for user operations.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a new Service with a UnitOfWork and logger.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Register creates a user together with their first account. The account
// starts pending and cannot move money until an administrator approves it.
// The user and the account are created in one unit of work.
func (s *Service) Register(
	ctx context.Context,
	username, email, password string,
	accountType account.Type,
) (u *user.User, acct *account.Account, err error) {
	log := s.logger.With("username", username)
	if err = validateRegistration(username, email, password); err != nil {
		return nil, nil, err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}

		if u, err = user.New(username, email, hashed); err != nil {
			return err
		}
		if err = users.Create(ctx, u); err != nil {
			return err
		}

		if acct, err = account.New(u.ID, accountType); err != nil {
			return err
		}
		if acct.Number, err = accountsvc.AllocateNumber(ctx, accounts); err != nil {
			return err
		}
		return accounts.Create(ctx, acct)
	})
	if err != nil {
		log.Error("registration failed", "error", err)
		return nil, nil, err
	}
	log.Info("user registered", "user_id", u.ID, "account", acct.Number)
	return u, acct, nil
}

// Get retrieves a user by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (u *user.User, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = users.Get(ctx, id)
		return err
	})
	if err != nil {
		u = nil
	}
	return
}

// GetByUsername retrieves a user by username.
func (s *Service) GetByUsername(ctx context.Context, username string) (u *user.User, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = users.GetByUsername(ctx, username)
		return err
	})
	if err != nil {
		u = nil
	}
	return
}

func validateRegistration(username, email, password string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if !utils.IsEmail(email) {
		return fmt.Errorf("%w: invalid email address", domain.ErrInvalidInput)
	}
	if len(password) < utils.MinPasswordLength {
		return fmt.Errorf(
			"%w: password must be at least %d characters",
			domain.ErrInvalidInput, utils.MinPasswordLength,
		)
	}
	return nil
}
