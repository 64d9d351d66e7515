package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/corebank/platform/pkg/repository"
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

func TestDo_SetsLockTimeoutAndCommits(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db, 5*time.Second)

	mock.ExpectBegin()
	mock.ExpectExec(`SET LOCAL lock_timeout = '5000ms'`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(uow repository.UnitOfWork) error {
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDo_SkipsLockTimeoutWhenDisabled(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db, 0)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(uow repository.UnitOfWork) error {
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDo_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db, 0)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := uow.Do(context.Background(), func(uow repository.UnitOfWork) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryAccessors_ShareTheTransactionSession(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db, 0)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(uow repository.UnitOfWork) error {
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
		actions, err := uow.AdminActionRepository()
		if err != nil {
			return err
		}
		assert.NotNil(t, accounts)
		assert.NotNil(t, transactions)
		assert.NotNil(t, users)
		assert.NotNil(t, actions)
		return nil
	})
	require.NoError(t, err)
}

func TestGetRepository_UnknownType(t *testing.T) {
	db, _ := newMockDB(t)
	uow := NewUoW(db, 0)

	_, err := uow.GetRepository(nil)
	assert.Error(t, err)
}
