// Package admin implements the back-office operations: account lifecycle
// approvals, freezes and closures with an audit trail, plus the monitoring
// dashboard aggregates.
package admin

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/platform/pkg/domain/account"
	"github.com/corebank/platform/pkg/domain/admin"
	"github.com/corebank/platform/pkg/domain/transaction"
	"github.com/corebank/platform/pkg/repository"
)

// HighValueThreshold flags transactions at or above this amount for review.
var HighValueThreshold = decimal.NewFromInt(10000)

// Service provides administrative account control and monitoring reads.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// Dashboard aggregates the figures shown on the back-office landing page.
type Dashboard struct {
	TotalUsers        int64
	AccountsByStatus  map[account.Status]int64
	TotalBalance      decimal.Decimal
	TransactionsToday int64
	VolumeToday       decimal.Decimal
	TransactionsWeek  int64
	VolumeWeek        decimal.Decimal
}

// New creates an admin service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// ApproveAccount activates a pending account.
func (s *Service) ApproveAccount(
	ctx context.Context,
	adminID uuid.UUID,
	accountNumber, reason string,
) (*account.Account, error) {
	return s.changeStatus(ctx, adminID, accountNumber, reason,
		admin.ActionAccountApprove, (*account.Account).Approve)
}

// FreezeAccount suspends an active account. Frozen accounts keep their balance
// but refuse all money movement until unfrozen.
func (s *Service) FreezeAccount(
	ctx context.Context,
	adminID uuid.UUID,
	accountNumber, reason string,
) (*account.Account, error) {
	return s.changeStatus(ctx, adminID, accountNumber, reason,
		admin.ActionAccountFreeze, (*account.Account).Freeze)
}

// UnfreezeAccount reactivates a frozen account.
func (s *Service) UnfreezeAccount(
	ctx context.Context,
	adminID uuid.UUID,
	accountNumber, reason string,
) (*account.Account, error) {
	return s.changeStatus(ctx, adminID, accountNumber, reason,
		admin.ActionAccountUnfreeze, (*account.Account).Unfreeze)
}

// CloseAccount permanently closes an active or frozen account.
func (s *Service) CloseAccount(
	ctx context.Context,
	adminID uuid.UUID,
	accountNumber, reason string,
) (*account.Account, error) {
	return s.changeStatus(ctx, adminID, accountNumber, reason,
		admin.ActionAccountClose, (*account.Account).Close)
}

// changeStatus locks the account row, applies the transition and records the
// audit entry in one unit of work. Locking first means a transition can never
// interleave with an in-flight money movement on the same account.
func (s *Service) changeStatus(
	ctx context.Context,
	adminID uuid.UUID,
	accountNumber, reason string,
	actionType admin.ActionType,
	transition func(*account.Account) error,
) (acct *account.Account, err error) {
	log := s.logger.With("account", accountNumber, "action", actionType)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acct, err = accounts.GetForUpdate(ctx, accountNumber)
		if err != nil {
			return err
		}
		if err = transition(acct); err != nil {
			return err
		}
		if err = accounts.UpdateStatus(ctx, acct.ID, acct.Status); err != nil {
			return err
		}

		actions, err := uow.AdminActionRepository()
		if err != nil {
			return err
		}
		return actions.Create(ctx, admin.NewAction(
			actionType,
			adminID,
			acct.ID,
			string(actionType)+" on account "+accountNumber,
			reason,
		))
	})
	if err != nil {
		log.Error("status change failed", "error", err)
		return nil, err
	}
	log.Info("status changed", "status", acct.Status, "admin", adminID)
	return acct, nil
}

// GetDashboard computes the back-office aggregates in one consistent snapshot.
func (s *Service) GetDashboard(ctx context.Context) (d *Dashboard, err error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := now.AddDate(0, 0, -7)

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}

		d = &Dashboard{}
		if d.TotalUsers, err = users.Count(ctx); err != nil {
			return err
		}
		if d.AccountsByStatus, err = accounts.CountByStatus(ctx); err != nil {
			return err
		}
		// Closed accounts are excluded from assets under management.
		d.TotalBalance, err = accounts.TotalBalance(ctx, account.StatusActive, account.StatusFrozen)
		if err != nil {
			return err
		}
		if d.TransactionsToday, err = transactions.CountSince(ctx, startOfDay); err != nil {
			return err
		}
		if d.VolumeToday, err = transactions.VolumeSince(ctx, startOfDay); err != nil {
			return err
		}
		if d.TransactionsWeek, err = transactions.CountSince(ctx, startOfWeek); err != nil {
			return err
		}
		d.VolumeWeek, err = transactions.VolumeSince(ctx, startOfWeek)
		return err
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// PendingAccounts returns the approval queue, oldest application first.
func (s *Service) PendingAccounts(
	ctx context.Context,
	limit int,
) (accts []*account.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		accts, err = accounts.ListByStatus(ctx, account.StatusPending, limit)
		return err
	})
	return
}

// HighValueTransactions returns recent transactions at or above the review
// threshold over the trailing week, newest first.
func (s *Service) HighValueTransactions(
	ctx context.Context,
	limit int,
) (records []*transaction.Transaction, err error) {
	since := time.Now().AddDate(0, 0, -7)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		records, err = transactions.ListHighValue(ctx, HighValueThreshold, since, limit)
		return err
	})
	return
}

// RecentTransactions returns the latest ledger records across all accounts.
func (s *Service) RecentTransactions(
	ctx context.Context,
	limit int,
) (records []*transaction.Transaction, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		records, err = transactions.ListRecent(ctx, limit)
		return err
	})
	return
}

// ListActions returns the most recent audit entries.
func (s *Service) ListActions(
	ctx context.Context,
	limit int,
) (actions []*admin.Action, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AdminActionRepository()
		if err != nil {
			return err
		}
		actions, err = repo.ListRecent(ctx, limit)
		return err
	})
	return
}
