package user_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/platform/internal/fixtures/memuow"
	"github.com/corebank/platform/pkg/domain"
	"github.com/corebank/platform/pkg/domain/account"
	usersvc "github.com/corebank/platform/pkg/service/user"
	"github.com/corebank/platform/pkg/utils"
)

func newService(t *testing.T) (*usersvc.Service, *memuow.Store) {
	t.Helper()
	store := memuow.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return usersvc.New(store.UoW(), logger), store
}

func TestRegister_CreatesUserAndPendingAccount(t *testing.T) {
	svc, store := newService(t)

	u, acct, err := svc.Register(
		context.Background(), "alice", "alice@example.com", "s3cret-pass", account.TypeSavings)
	require.NoError(t, err)

	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "s3cret-pass", u.Password)
	assert.True(t, utils.CheckPasswordHash("s3cret-pass", u.Password))
	assert.False(t, u.IsAdmin)

	assert.Equal(t, account.StatusPending, acct.Status)
	assert.True(t, acct.Balance.IsZero())
	assert.True(t, account.ValidNumber(acct.Number))
	assert.Equal(t, u.ID, acct.UserID)

	stored := store.Account(acct.ID)
	require.NotNil(t, stored)
	assert.Equal(t, acct.Number, stored.Number)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newService(t)

	_, _, err := svc.Register(
		context.Background(), "alice", "alice@example.com", "s3cret-pass", account.TypeSavings)
	require.NoError(t, err)

	_, _, err = svc.Register(
		context.Background(), "alice", "other@example.com", "s3cret-pass", account.TypeCurrent)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRegister_ValidationFailures(t *testing.T) {
	svc, _ := newService(t)

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"empty username", "", "a@example.com", "s3cret-pass"},
		{"bad email", "bob", "not-an-email", "s3cret-pass"},
		{"short password", "bob", "bob@example.com", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(
				context.Background(), tt.username, tt.email, tt.password, account.TypeSavings)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestGetByUsername(t *testing.T) {
	svc, _ := newService(t)

	created, _, err := svc.Register(
		context.Background(), "carol", "carol@example.com", "s3cret-pass", account.TypeSavings)
	require.NoError(t, err)

	found, err := svc.GetByUsername(context.Background(), "carol")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
