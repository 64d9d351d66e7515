package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/platform/internal/fixtures/memuow"
	"github.com/corebank/platform/pkg/config"
	"github.com/corebank/platform/pkg/domain"
	"github.com/corebank/platform/pkg/domain/user"
	authsvc "github.com/corebank/platform/pkg/service/auth"
	"github.com/corebank/platform/pkg/utils"
)

const testSecret = "test-signing-secret"

func newService(t *testing.T) (*authsvc.Service, *memuow.Store) {
	t.Helper()
	store := memuow.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Jwt{Secret: testSecret, Expiry: time.Hour}
	return authsvc.New(store.UoW(), cfg, logger), store
}

func seedUser(t *testing.T, store *memuow.Store, username, email, password string) *user.User {
	t.Helper()
	hashed, err := utils.HashPassword(password)
	require.NoError(t, err)
	u, err := user.New(username, email, hashed)
	require.NoError(t, err)
	store.SeedUser(u)
	return u
}

func TestLogin_ByUsernameAndEmail(t *testing.T) {
	svc, store := newService(t)
	seeded := seedUser(t, store, "alice", "alice@example.com", "s3cret-pass")

	u, err := svc.Login(context.Background(), "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, u.ID)

	u, err = svc.Login(context.Background(), "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, u.ID)
}

func TestLogin_Failures(t *testing.T) {
	svc, store := newService(t)
	seedUser(t, store, "alice", "alice@example.com", "s3cret-pass")

	_, err := svc.Login(context.Background(), "alice", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Login(context.Background(), "nobody", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	svc, store := newService(t)
	u := seedUser(t, store, "alice", "alice@example.com", "s3cret-pass")
	u.IsAdmin = true

	signed, err := svc.GenerateToken(u)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	id, err := authsvc.ParseUserID(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
	assert.True(t, authsvc.IsAdmin(token))
}

func TestParseUserID_MissingClaim(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	_, err := authsvc.ParseUserID(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
