// Package transaction provides the GORM-backed ledger record repository.
// Ledger rows are append-only: this repository deliberately has no update or
// delete operations.
package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/corebank/platform/infra/repository/model"
	"github.com/corebank/platform/pkg/domain"
	txdomain "github.com/corebank/platform/pkg/domain/transaction"
	"github.com/corebank/platform/pkg/repository"
)

type repo struct {
	db *gorm.DB
}

// New creates a transaction repository using the provided *gorm.DB.
func New(db *gorm.DB) repository.TransactionRepository {
	return &repo{db: db}
}

// Create implements repository.TransactionRepository. The record's structural
// invariants are validated before persist.
func (r *repo) Create(ctx context.Context, t *txdomain.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m := mapToModel(t)
	return r.db.WithContext(ctx).Create(&m).Error
}

// Get implements repository.TransactionRepository.
func (r *repo) Get(ctx context.Context, id uuid.UUID) (*txdomain.Transaction, error) {
	var m model.Transaction
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return mapToDomain(&m), nil
}

// ExistsByReference implements repository.TransactionRepository.
func (r *repo) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("reference = ?", reference).
		Count(&count).Error
	return count > 0, err
}

// ListByAccount implements repository.TransactionRepository.
func (r *repo) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
	limit int,
) ([]*txdomain.Transaction, error) {
	var ms []model.Transaction
	err := r.db.WithContext(ctx).
		Where("sender_account_id = ? OR receiver_account_id = ?", accountID, accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return mapAllToDomain(ms), nil
}

// ListRecent implements repository.TransactionRepository.
func (r *repo) ListRecent(ctx context.Context, limit int) ([]*txdomain.Transaction, error) {
	var ms []model.Transaction
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return mapAllToDomain(ms), nil
}

// ListHighValue implements repository.TransactionRepository.
func (r *repo) ListHighValue(
	ctx context.Context,
	min decimal.Decimal,
	since time.Time,
	limit int,
) ([]*txdomain.Transaction, error) {
	var ms []model.Transaction
	err := r.db.WithContext(ctx).
		Where("amount >= ? AND created_at >= ?", min, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return mapAllToDomain(ms), nil
}

// CountSince implements repository.TransactionRepository.
func (r *repo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// VolumeSince implements repository.TransactionRepository.
func (r *repo) VolumeSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("created_at >= ?", since).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func mapAllToDomain(ms []model.Transaction) []*txdomain.Transaction {
	result := make([]*txdomain.Transaction, 0, len(ms))
	for i := range ms {
		result = append(result, mapToDomain(&ms[i]))
	}
	return result
}

func mapToModel(t *txdomain.Transaction) model.Transaction {
	return model.Transaction{
		ID:                   t.ID,
		Reference:            t.Reference,
		TransactionType:      string(t.Type),
		Amount:               t.Amount,
		Description:          t.Description,
		SenderAccountID:      t.SenderAccountID,
		ReceiverAccountID:    t.ReceiverAccountID,
		SenderBalanceAfter:   t.SenderBalanceAfter,
		ReceiverBalanceAfter: t.ReceiverBalanceAfter,
		CreatedAt:            t.CreatedAt,
	}
}

func mapToDomain(m *model.Transaction) *txdomain.Transaction {
	return &txdomain.Transaction{
		ID:                   m.ID,
		Reference:            m.Reference,
		Type:                 txdomain.Type(m.TransactionType),
		Amount:               m.Amount,
		Description:          m.Description,
		SenderAccountID:      m.SenderAccountID,
		ReceiverAccountID:    m.ReceiverAccountID,
		SenderBalanceAfter:   m.SenderBalanceAfter,
		ReceiverBalanceAfter: m.ReceiverBalanceAfter,
		CreatedAt:            m.CreatedAt,
	}
}
