package account

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/corebank/platform/pkg/domain"
	accountdomain "github.com/corebank/platform/pkg/domain/account"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDb.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func accountRows(id, userID uuid.UUID, number string, balance string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "account_number", "account_type", "status", "balance", "user_id", "created_at", "updated_at",
	}).AddRow(id, number, "savings", "active", balance, userID, time.Now(), time.Now())
}

func TestGetForUpdate_EmitsRowLock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "bank_accounts" WHERE account_number = \$1 .* FOR UPDATE`).
		WithArgs("100000000001", 1).
		WillReturnRows(accountRows(id, uuid.New(), "100000000001", "100.00"))

	acct, err := repo.GetForUpdate(context.Background(), "100000000001")
	require.NoError(t, err)
	assert.Equal(t, id, acct.ID)
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(100)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUpdate_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)

	mock.ExpectQuery(`SELECT \* FROM "bank_accounts" .* FOR UPDATE`).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.GetForUpdate(context.Background(), "100000000001")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestGetForUpdate_LockTimeout(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)

	mock.ExpectQuery(`SELECT \* FROM "bank_accounts" .* FOR UPDATE`).
		WillReturnError(&pgconn.PgError{Code: pgLockNotAvailable, Message: "canceling statement due to lock timeout"})

	_, err := repo.GetForUpdate(context.Background(), "100000000001")
	var lockTimeout *domain.LockTimeoutError
	require.ErrorAs(t, err, &lockTimeout)
	assert.Equal(t, "100000000001", lockTimeout.AccountNumber)
	assert.ErrorIs(t, err, domain.ErrTransaction)
}

func TestUpdateBalance_ConditionalOnExpected(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "bank_accounts" SET .* WHERE id = \$\d+ AND balance = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.UpdateBalance(
		context.Background(), id, decimal.NewFromInt(100), decimal.NewFromInt(-60))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestUpdateBalance_ZeroRowsWhenBalanceMoved(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)

	mock.ExpectExec(`UPDATE "bank_accounts" SET .* WHERE id = \$\d+ AND balance = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := repo.UpdateBalance(
		context.Background(), uuid.New(), decimal.NewFromInt(100), decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestCreate_RejectsInvalidAccount(t *testing.T) {
	db, _ := newMockDB(t)
	repo := New(db)

	acct, err := accountdomain.New(uuid.New(), accountdomain.TypeSavings)
	require.NoError(t, err)
	acct.Number = "100000000001"
	acct.Balance = decimal.NewFromInt(-5)

	// No SQL expectation: the invariant check fires before any statement.
	err = repo.Create(context.Background(), acct)
	assert.ErrorIs(t, err, accountdomain.ErrNegativeBalance)
}
