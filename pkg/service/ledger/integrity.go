package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/corebank/platform/pkg/domain/transaction"
	"github.com/corebank/platform/pkg/repository"
)

// ValidateTransactionIntegrity reports whether the ledger record identified by
// id is structurally consistent: the type-dependent account references and
// post-balance figures are present and the figures are non-negative. It is an
// advisory read-only check and does not reconcile the record against account
// history. A missing record or a read failure reports false.
func (s *Service) ValidateTransactionIntegrity(ctx context.Context, id uuid.UUID) bool {
	var record *transaction.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		record, err = transactions.Get(ctx, id)
		return err
	})
	if err != nil {
		s.logger.Warn("integrity check could not load transaction", "id", id, "error", err)
		return false
	}
	return structurallyConsistent(record)
}

func structurallyConsistent(record *transaction.Transaction) bool {
	if record.Validate() != nil {
		return false
	}
	if record.SenderBalanceAfter != nil && record.SenderBalanceAfter.IsNegative() {
		return false
	}
	if record.ReceiverBalanceAfter != nil && record.ReceiverBalanceAfter.IsNegative() {
		return false
	}
	switch record.Type {
	case transaction.TypeDeposit:
		return record.ReceiverBalanceAfter != nil
	case transaction.TypeWithdrawal:
		return record.SenderBalanceAfter != nil
	case transaction.TypeTransfer:
		return record.SenderBalanceAfter != nil && record.ReceiverBalanceAfter != nil
	}
	return false
}
