package webapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/platform/internal/fixtures/memuow"
	"github.com/corebank/platform/pkg/config"
	"github.com/corebank/platform/pkg/domain/user"
	accountsvc "github.com/corebank/platform/pkg/service/account"
	adminsvc "github.com/corebank/platform/pkg/service/admin"
	authsvc "github.com/corebank/platform/pkg/service/auth"
	ledgersvc "github.com/corebank/platform/pkg/service/ledger"
	usersvc "github.com/corebank/platform/pkg/service/user"
	"github.com/corebank/platform/pkg/utils"
	"github.com/corebank/platform/webapi"
)

const testSecret = "handler-test-secret"

type fixture struct {
	app   *fiber.App
	store *memuow.Store
	admin *adminsvc.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memuow.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uow := store.UoW()
	cfg := config.Jwt{Secret: testSecret, Expiry: time.Hour}
	admin := adminsvc.New(uow, logger)

	app := webapi.NewApp(webapi.Services{
		Auth:    authsvc.New(uow, cfg, logger),
		User:    usersvc.New(uow, logger),
		Account: accountsvc.New(uow, logger),
		Ledger:  ledgersvc.New(uow, nil, logger),
		Admin:   admin,
	}, testSecret)
	return &fixture{app: app, store: store, admin: admin}
}

func (f *fixture) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// register creates a user via the API and returns their account number.
func (f *fixture) register(t *testing.T, username string) string {
	t.Helper()
	resp := f.request(t, http.MethodPost, "/register", "", map[string]any{
		"username":     username,
		"email":        username + "@example.com",
		"password":     "s3cret-pass",
		"account_type": "savings",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	return data["account_number"].(string)
}

func (f *fixture) login(t *testing.T, username string) string {
	t.Helper()
	resp := f.request(t, http.MethodPost, "/login", "", map[string]any{
		"identity": username,
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	return data["token"].(string)
}

// registerActive registers a user, approves their account, and logs them in.
func (f *fixture) registerActive(t *testing.T, username string) (accountNumber, token string) {
	t.Helper()
	number := f.register(t, username)

	adminUser := f.seedAdmin(t, username+"-admin")
	_, err := f.admin.ApproveAccount(t.Context(), adminUser, number, "test approval")
	require.NoError(t, err)

	return number, f.login(t, username)
}

func (f *fixture) seedAdmin(t *testing.T, username string) uuid.UUID {
	t.Helper()
	hashed, err := utils.HashPassword("s3cret-pass")
	require.NoError(t, err)
	u, err := user.New(username, username+"@example.com", hashed)
	require.NoError(t, err)
	u.IsAdmin = true
	f.store.SeedUser(u)
	return u.ID
}

// loginAdmin seeds an admin user and returns a token for them.
func loginAdmin(t *testing.T, f *fixture, username string) string {
	t.Helper()
	f.seedAdmin(t, username)
	return f.login(t, username)
}

func TestRegister_ReturnsPendingAccount(t *testing.T) {
	f := newFixture(t)
	resp := f.request(t, http.MethodPost, "/register", "", map[string]any{
		"username":     "alice",
		"email":        "alice@example.com",
		"password":     "s3cret-pass",
		"account_type": "savings",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, "pending", data["account_status"])
	assert.Len(t, data["account_number"], 12)
}

func TestRegister_ValidationFailure(t *testing.T) {
	f := newFixture(t)
	resp := f.request(t, http.MethodPost, "/register", "", map[string]any{
		"username":     "alice",
		"email":        "not-an-email",
		"password":     "s3cret-pass",
		"account_type": "savings",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")
	resp := f.request(t, http.MethodPost, "/login", "", map[string]any{
		"identity": "alice",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	f := newFixture(t)
	resp := f.request(t, http.MethodGet, "/account/", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeposit_HappyPath(t *testing.T) {
	f := newFixture(t)
	number, token := f.registerActive(t, "alice")

	resp := f.request(t, http.MethodPost, "/transactions/deposit", token, map[string]any{
		"account":     number,
		"amount":      "100.00",
		"description": "payday",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestDeposit_OtherUsersAccountHidden(t *testing.T) {
	f := newFixture(t)
	aliceNumber, _ := f.registerActive(t, "alice")
	_, bobToken := f.registerActive(t, "bob")

	resp := f.request(t, http.MethodPost, "/transactions/deposit", bobToken, map[string]any{
		"account": aliceNumber,
		"amount":  "100.00",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWithdraw_InsufficientFundsMapsTo422(t *testing.T) {
	f := newFixture(t)
	number, token := f.registerActive(t, "alice")

	resp := f.request(t, http.MethodPost, "/transactions/withdraw", token, map[string]any{
		"account": number,
		"amount":  "50.00",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDeposit_MalformedAmountMapsTo400(t *testing.T) {
	f := newFixture(t)
	number, token := f.registerActive(t, "alice")

	resp := f.request(t, http.MethodPost, "/transactions/deposit", token, map[string]any{
		"account": number,
		"amount":  "12.345",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTransfer_EndToEnd(t *testing.T) {
	f := newFixture(t)
	aliceNumber, aliceToken := f.registerActive(t, "alice")
	bobNumber, _ := f.registerActive(t, "bob")

	resp := f.request(t, http.MethodPost, "/transactions/deposit", aliceToken, map[string]any{
		"account": aliceNumber,
		"amount":  "100.00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.request(t, http.MethodPost, "/transactions/transfer", aliceToken, map[string]any{
		"from":   aliceNumber,
		"to":     bobNumber,
		"amount": "30.00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.request(t, http.MethodGet, fmt.Sprintf("/account/%s", aliceNumber), aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatement_ListsMovements(t *testing.T) {
	f := newFixture(t)
	number, token := f.registerActive(t, "alice")

	resp := f.request(t, http.MethodPost, "/transactions/deposit", token, map[string]any{
		"account": number,
		"amount":  "100.00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.request(t, http.MethodGet, fmt.Sprintf("/account/%s/transactions", number), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	lines := data["transactions"].([]any)
	require.Len(t, lines, 1)
}

func TestAdminRoutes_ForbiddenForCustomers(t *testing.T) {
	f := newFixture(t)
	_, token := f.registerActive(t, "alice")

	resp := f.request(t, http.MethodGet, "/admin/dashboard", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminApprove_EndToEnd(t *testing.T) {
	f := newFixture(t)
	number := f.register(t, "alice")
	adminToken := loginAdmin(t, f, "root")

	resp := f.request(t, http.MethodPost, fmt.Sprintf("/admin/accounts/%s/approve", number), adminToken, map[string]any{
		"reason": "identity verified",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, "active", data["status"])

	resp = f.request(t, http.MethodGet, "/admin/dashboard", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
