// Package account provides the GORM-backed account repository.
package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/corebank/platform/infra/repository/model"
	"github.com/corebank/platform/pkg/domain"
	accountdomain "github.com/corebank/platform/pkg/domain/account"
	"github.com/corebank/platform/pkg/repository"
)

// pgLockNotAvailable is the postgres error code raised when lock_timeout
// expires while waiting for a row lock.
const pgLockNotAvailable = "55P03"

type repo struct {
	db *gorm.DB
}

// New creates an account repository using the provided *gorm.DB.
func New(db *gorm.DB) repository.AccountRepository {
	return &repo{db: db}
}

// Create implements repository.AccountRepository. The domain invariants are
// validated before every persist.
func (r *repo) Create(ctx context.Context, a *accountdomain.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	m := mapToModel(a)
	return r.db.WithContext(ctx).Create(&m).Error
}

// Get implements repository.AccountRepository.
func (r *repo) Get(ctx context.Context, id uuid.UUID) (*accountdomain.Account, error) {
	var m model.Account
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return mapToDomain(&m), nil
}

// GetByNumber implements repository.AccountRepository.
func (r *repo) GetByNumber(ctx context.Context, number string) (*accountdomain.Account, error) {
	var m model.Account
	if err := r.db.WithContext(ctx).First(&m, "account_number = ?", number).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return mapToDomain(&m), nil
}

// GetForUpdate implements repository.AccountRepository. It issues
// SELECT ... FOR UPDATE so the row stays exclusively locked until the
// enclosing transaction commits or aborts.
func (r *repo) GetForUpdate(ctx context.Context, number string) (*accountdomain.Account, error) {
	var m model.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "account_number = ?", number).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
			return nil, &domain.LockTimeoutError{AccountNumber: number}
		}
		return nil, mapNotFound(err)
	}
	return mapToDomain(&m), nil
}

// UpdateBalance implements repository.AccountRepository. The predicate on the
// stored balance is the optimistic double-check layered on top of the row
// lock: zero rows matched means another writer changed the balance between
// read and write.
func (r *repo) UpdateBalance(
	ctx context.Context,
	id uuid.UUID,
	expected, delta decimal.Decimal,
) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ? AND balance = ?", id, expected).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", delta),
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

// UpdateStatus implements repository.AccountRepository.
func (r *repo) UpdateStatus(ctx context.Context, id uuid.UUID, status accountdomain.Status) error {
	res := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ExistsByNumber implements repository.AccountRepository.
func (r *repo) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("account_number = ?", number).
		Count(&count).Error
	return count > 0, err
}

// ListByUser implements repository.AccountRepository.
func (r *repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*accountdomain.Account, error) {
	var ms []model.Account
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	result := make([]*accountdomain.Account, 0, len(ms))
	for i := range ms {
		result = append(result, mapToDomain(&ms[i]))
	}
	return result, nil
}

// ListByStatus implements repository.AccountRepository.
func (r *repo) ListByStatus(
	ctx context.Context,
	status accountdomain.Status,
	limit int,
) ([]*accountdomain.Account, error) {
	var ms []model.Account
	q := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	result := make([]*accountdomain.Account, 0, len(ms))
	for i := range ms {
		result = append(result, mapToDomain(&ms[i]))
	}
	return result, nil
}

// CountByStatus implements repository.AccountRepository.
func (r *repo) CountByStatus(ctx context.Context) (map[accountdomain.Status]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[accountdomain.Status]int64, len(rows))
	for _, row := range rows {
		counts[accountdomain.Status(row.Status)] = row.Count
	}
	return counts, nil
}

// TotalBalance implements repository.AccountRepository.
func (r *repo) TotalBalance(
	ctx context.Context,
	statuses ...accountdomain.Status,
) (decimal.Decimal, error) {
	var total decimal.Decimal
	q := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Select("COALESCE(SUM(balance), 0)")
	if len(statuses) > 0 {
		raw := make([]string, 0, len(statuses))
		for _, s := range statuses {
			raw = append(raw, string(s))
		}
		q = q.Where("status IN ?", raw)
	}
	if err := q.Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrAccountNotFound
	}
	return err
}

func mapToModel(a *accountdomain.Account) model.Account {
	return model.Account{
		ID:            a.ID,
		AccountNumber: a.Number,
		AccountType:   string(a.Type),
		Status:        string(a.Status),
		Balance:       a.Balance,
		UserID:        a.UserID,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func mapToDomain(m *model.Account) *accountdomain.Account {
	return &accountdomain.Account{
		ID:        m.ID,
		Number:    m.AccountNumber,
		Type:      accountdomain.Type(m.AccountType),
		Status:    accountdomain.Status(m.Status),
		Balance:   m.Balance,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
