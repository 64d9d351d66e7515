package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	txdomain "github.com/corebank/platform/pkg/domain/transaction"
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

func TestCreate_PersistsValidRecord(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)

	receiverID := uuid.New()
	balance := decimal.NewFromInt(150)
	record := &txdomain.Transaction{
		ID:                   uuid.New(),
		Reference:            "TXN20260314092653AB12",
		Type:                 txdomain.TypeDeposit,
		Amount:               decimal.NewFromInt(100),
		ReceiverAccountID:    &receiverID,
		ReceiverBalanceAfter: &balance,
		CreatedAt:            time.Now(),
	}

	mock.ExpectExec(`INSERT INTO "transactions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_RejectsMalformedRecord(t *testing.T) {
	db, _ := newMockDB(t)
	repo := New(db)

	// A deposit with a sender account violates the type shape; no SQL runs.
	senderID := uuid.New()
	receiverID := uuid.New()
	record := &txdomain.Transaction{
		ID:                uuid.New(),
		Reference:         "TXN20260314092653AB13",
		Type:              txdomain.TypeDeposit,
		Amount:            decimal.NewFromInt(10),
		SenderAccountID:   &senderID,
		ReceiverAccountID: &receiverID,
	}

	err := repo.Create(context.Background(), record)
	assert.ErrorIs(t, err, txdomain.ErrDepositShape)
}

func TestListByAccount_MatchesEitherSide(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)
	accountID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "reference", "transaction_type", "amount", "created_at"}).
		AddRow(uuid.New(), "TXN20260314092653AB14", "deposit", "10.00", time.Now())
	mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE sender_account_id = \$1 OR receiver_account_id = \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs(accountID, accountID, 25).
		WillReturnRows(rows)

	records, err := repo.ListByAccount(context.Background(), accountID, 25)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, txdomain.TypeDeposit, records[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVolumeSince_SumsAmounts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "transactions" WHERE created_at >= \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("1234.56"))

	total, err := repo.VolumeSince(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("1234.56")))
}
