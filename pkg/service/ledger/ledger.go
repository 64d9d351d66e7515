// Package ledger implements the atomic money-movement engine: deposits,
// withdrawals and transfers executed against account balances with strict
// consistency guarantees under concurrency.
//
// Every operation shares one structure: validate the amount and account
// eligibility, acquire exclusive row locks (in deterministic order when more
// than one account is involved), mutate the balance with an optimistic
// double-check, re-read the authoritative balance, and append one immutable
// ledger record — all inside a single all-or-nothing unit of work. Any failure
// discards every partial mutation; callers observe full success or zero effect.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/platform/pkg/domain"
	"github.com/corebank/platform/pkg/domain/account"
	"github.com/corebank/platform/pkg/domain/events"
	"github.com/corebank/platform/pkg/domain/transaction"
	"github.com/corebank/platform/pkg/eventbus"
	"github.com/corebank/platform/pkg/money"
	"github.com/corebank/platform/pkg/repository"
)

// referenceAttempts bounds the retry-until-unique loop for reference numbers.
const referenceAttempts = 5

// Service is the money-movement engine. It trusts its caller for
// authorization: resolving the authenticated user to an account and checking
// ownership happen at the calling layer.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.EventBus
	logger *slog.Logger
}

// New creates a ledger service. bus may be nil to disable event publication.
func New(uow repository.UnitOfWork, bus eventbus.EventBus, logger *slog.Logger) *Service {
	return &Service{uow: uow, bus: bus, logger: logger}
}

// Deposit adds amount to the account identified by accountNumber and returns
// the created ledger record.
func (s *Service) Deposit(
	ctx context.Context,
	accountNumber string,
	amount decimal.Decimal,
	description string,
) (*transaction.Transaction, error) {
	logger := s.logger.With("operation", "deposit", "account", accountNumber)
	if err := money.Validate(amount); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransaction, err)
	}

	var record *transaction.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acct, err := accounts.GetForUpdate(ctx, accountNumber)
		if err != nil {
			return err
		}
		if err := validateForTransaction(acct, transaction.TypeDeposit); err != nil {
			return err
		}

		// The lock makes a concurrent balance change structurally impossible;
		// the predicate on the old balance defends against it anyway.
		rows, err := accounts.UpdateBalance(ctx, acct.ID, acct.Balance, amount)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &domain.ConcurrentTransactionError{AccountNumber: acct.Number}
		}

		fresh, err := accounts.Get(ctx, acct.ID)
		if err != nil {
			return err
		}
		record, err = s.appendRecord(ctx, uow, &transaction.Transaction{
			Type:                 transaction.TypeDeposit,
			Amount:               amount,
			Description:          description,
			ReceiverAccountID:    &acct.ID,
			ReceiverBalanceAfter: &fresh.Balance,
		})
		return err
	})
	if err != nil {
		err = wrapUnexpected("deposit", err)
		logger.Error("deposit failed", "amount", amount, "error", err)
		return nil, err
	}
	logger.Info("deposit processed",
		"amount", amount,
		"balance", record.ReceiverBalanceAfter,
		"reference", record.Reference,
	)
	s.publishCompleted(ctx, record, "", accountNumber)
	return record, nil
}

// Withdraw removes amount from the account identified by accountNumber and
// returns the created ledger record.
func (s *Service) Withdraw(
	ctx context.Context,
	accountNumber string,
	amount decimal.Decimal,
	description string,
) (*transaction.Transaction, error) {
	logger := s.logger.With("operation", "withdrawal", "account", accountNumber)
	if err := money.Validate(amount); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransaction, err)
	}

	var record *transaction.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acct, err := accounts.GetForUpdate(ctx, accountNumber)
		if err != nil {
			return err
		}
		if err := validateForTransaction(acct, transaction.TypeWithdrawal); err != nil {
			return err
		}
		if acct.Balance.LessThan(amount) {
			return &domain.InsufficientFundsError{
				AccountNumber: acct.Number,
				Available:     acct.Balance,
				Requested:     amount,
			}
		}
		// Defensive re-check before committing to the decrement.
		if acct.Balance.Sub(amount).IsNegative() {
			return &domain.InsufficientFundsError{
				AccountNumber: acct.Number,
				Available:     acct.Balance,
				Requested:     amount,
			}
		}

		rows, err := accounts.UpdateBalance(ctx, acct.ID, acct.Balance, amount.Neg())
		if err != nil {
			return err
		}
		if rows == 0 {
			return &domain.ConcurrentTransactionError{AccountNumber: acct.Number}
		}

		fresh, err := accounts.Get(ctx, acct.ID)
		if err != nil {
			return err
		}
		record, err = s.appendRecord(ctx, uow, &transaction.Transaction{
			Type:               transaction.TypeWithdrawal,
			Amount:             amount,
			Description:        description,
			SenderAccountID:    &acct.ID,
			SenderBalanceAfter: &fresh.Balance,
		})
		return err
	})
	if err != nil {
		err = wrapUnexpected("withdrawal", err)
		logger.Error("withdrawal failed", "amount", amount, "error", err)
		return nil, err
	}
	logger.Info("withdrawal processed",
		"amount", amount,
		"balance", record.SenderBalanceAfter,
		"reference", record.Reference,
	)
	s.publishCompleted(ctx, record, accountNumber, "")
	return record, nil
}

// Transfer moves amount from the sender account to the receiver account and
// returns the single ledger record capturing both post-balances.
func (s *Service) Transfer(
	ctx context.Context,
	senderNumber, receiverNumber string,
	amount decimal.Decimal,
	description string,
) (*transaction.Transaction, error) {
	logger := s.logger.With(
		"operation", "transfer",
		"sender", senderNumber,
		"receiver", receiverNumber,
	)
	if err := money.Validate(amount); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransaction, err)
	}
	if senderNumber == receiverNumber {
		return nil, fmt.Errorf("%w: cannot transfer to the same account", domain.ErrTransaction)
	}

	var record *transaction.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		locked, err := lockAccounts(ctx, accounts, senderNumber, receiverNumber)
		if err != nil {
			return err
		}
		sender := locked[senderNumber]
		receiver := locked[receiverNumber]

		if err := validateForTransaction(sender, transaction.TypeTransfer); err != nil {
			return err
		}
		if err := validateForTransaction(receiver, transaction.TypeTransfer); err != nil {
			return err
		}
		if sender.Balance.LessThan(amount) || sender.Balance.Sub(amount).IsNegative() {
			return &domain.InsufficientFundsError{
				AccountNumber: sender.Number,
				Available:     sender.Balance,
				Requested:     amount,
			}
		}

		rows, err := accounts.UpdateBalance(ctx, sender.ID, sender.Balance, amount.Neg())
		if err != nil {
			return err
		}
		if rows == 0 {
			return &domain.ConcurrentTransactionError{AccountNumber: sender.Number}
		}

		// A failure from here on unwinds the sender decrement with the rest
		// of the unit of work.
		rows, err = accounts.UpdateBalance(ctx, receiver.ID, receiver.Balance, amount)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &domain.ConcurrentTransactionError{AccountNumber: receiver.Number}
		}

		freshSender, err := accounts.Get(ctx, sender.ID)
		if err != nil {
			return err
		}
		freshReceiver, err := accounts.Get(ctx, receiver.ID)
		if err != nil {
			return err
		}
		record, err = s.appendRecord(ctx, uow, &transaction.Transaction{
			Type:                 transaction.TypeTransfer,
			Amount:               amount,
			Description:          description,
			SenderAccountID:      &sender.ID,
			ReceiverAccountID:    &receiver.ID,
			SenderBalanceAfter:   &freshSender.Balance,
			ReceiverBalanceAfter: &freshReceiver.Balance,
		})
		return err
	})
	if err != nil {
		err = wrapUnexpected("transfer", err)
		logger.Error("transfer failed", "amount", amount, "error", err)
		return nil, err
	}
	logger.Info("transfer processed",
		"amount", amount,
		"sender_balance", record.SenderBalanceAfter,
		"receiver_balance", record.ReceiverBalanceAfter,
		"reference", record.Reference,
	)
	s.publishCompleted(ctx, record, senderNumber, receiverNumber)
	return record, nil
}

// lockAccounts acquires exclusive locks on the given account numbers in one
// deterministic total order. Two concurrent multi-account operations over
// intersecting account sets therefore always acquire their common locks in the
// same relative order, so circular wait is structurally impossible.
func lockAccounts(
	ctx context.Context,
	accounts repository.AccountRepository,
	numbers ...string,
) (map[string]*account.Account, error) {
	uniq := make([]string, 0, len(numbers))
	seen := make(map[string]bool, len(numbers))
	for _, n := range numbers {
		if !seen[n] {
			seen[n] = true
			uniq = append(uniq, n)
		}
	}
	sort.Strings(uniq)

	locked := make(map[string]*account.Account, len(uniq))
	for _, n := range uniq {
		a, err := accounts.GetForUpdate(ctx, n)
		if err != nil {
			return nil, err
		}
		locked[n] = a
	}
	return locked, nil
}

// validateForTransaction gates money movement on account status. The explicit
// frozen check for debit types restates part of the active-only rule for
// clearer error reporting.
func validateForTransaction(a *account.Account, t transaction.Type) error {
	if a.IsFrozen() && (t == transaction.TypeWithdrawal || t == transaction.TypeTransfer) {
		return &domain.AccountNotActiveError{
			AccountNumber: a.Number,
			Status:        string(a.Status),
		}
	}
	if !a.CanTransact() {
		return &domain.AccountNotActiveError{
			AccountNumber: a.Number,
			Status:        string(a.Status),
		}
	}
	return nil
}

// appendRecord assigns identity and a collision-free reference to the ledger
// record and persists it as the terminal step of the unit of work.
func (s *Service) appendRecord(
	ctx context.Context,
	uow repository.UnitOfWork,
	record *transaction.Transaction,
) (*transaction.Transaction, error) {
	transactions, err := uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	record.Reference, err = newReference(ctx, transactions)
	if err != nil {
		return nil, err
	}
	if err := transactions.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func newReference(ctx context.Context, transactions repository.TransactionRepository) (string, error) {
	for i := 0; i < referenceAttempts; i++ {
		ref := transaction.GenerateReference(time.Now())
		exists, err := transactions.ExistsByReference(ctx, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}
	return "", errors.New("could not generate a unique transaction reference")
}

// wrapUnexpected re-raises unexpected failures as the generic transaction
// error with the original message appended. Typed engine errors pass through
// unmodified, so callers only ever handle the small typed set.
func wrapUnexpected(op string, err error) error {
	if errors.Is(err, domain.ErrTransaction) {
		return err
	}
	return fmt.Errorf("%w: %s failed: %w", domain.ErrTransaction, op, err)
}

func (s *Service) publishCompleted(
	ctx context.Context,
	record *transaction.Transaction,
	senderNumber, receiverNumber string,
) {
	if s.bus == nil {
		return
	}
	evt := events.TransactionCompleted{
		Reference:            record.Reference,
		Type:                 string(record.Type),
		Amount:               record.Amount,
		Description:          record.Description,
		SenderAccount:        senderNumber,
		ReceiverAccount:      receiverNumber,
		SenderBalanceAfter:   record.SenderBalanceAfter,
		ReceiverBalanceAfter: record.ReceiverBalanceAfter,
		OccurredAt:           record.CreatedAt,
	}
	// The movement is already committed; a publish failure is logged, never surfaced.
	if err := s.bus.Publish(ctx, evt); err != nil {
		s.logger.Error("failed to publish transaction event",
			"reference", record.Reference,
			"error", err,
		)
	}
}
