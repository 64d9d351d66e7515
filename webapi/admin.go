package webapi

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/corebank/platform/pkg/domain/account"
	adminsvc "github.com/corebank/platform/pkg/service/admin"
)

// defaultFeedLimit bounds the back-office list endpoints.
const defaultFeedLimit = 50

// StatusChangeInput is the request body for the account lifecycle endpoints.
type StatusChangeInput struct {
	Reason string `json:"reason" validate:"required,max=255"`
}

// AdminRoutes registers the back-office endpoints. Every route requires a
// valid token carrying the admin claim.
func AdminRoutes(app *fiber.App, protected fiber.Handler, admin *adminsvc.Service) {
	grp := app.Group("/admin", protected, requireAdmin)
	grp.Get("/dashboard", GetDashboard(admin))
	grp.Get("/accounts/pending", PendingAccounts(admin))
	grp.Post("/accounts/:number/approve", StatusChange(admin.ApproveAccount))
	grp.Post("/accounts/:number/freeze", StatusChange(admin.FreezeAccount))
	grp.Post("/accounts/:number/unfreeze", StatusChange(admin.UnfreezeAccount))
	grp.Post("/accounts/:number/close", StatusChange(admin.CloseAccount))
	grp.Get("/transactions/recent", RecentTransactions(admin))
	grp.Get("/transactions/high-value", HighValueTransactions(admin))
	grp.Get("/actions", ListActions(admin))
}

func requireAdmin(c *fiber.Ctx) error {
	if !currentUserIsAdmin(c) {
		return ErrorResponseJSON(c, fiber.StatusForbidden, "Admin access required", nil)
	}
	return c.Next()
}

// GetDashboard returns the back-office aggregates.
func GetDashboard(admin *adminsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := admin.GetDashboard(c.Context())
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Could not load dashboard", err.Error())
		}
		return c.JSON(Response{Status: fiber.StatusOK, Message: "Dashboard", Data: d})
	}
}

// PendingAccounts returns the approval queue.
func PendingAccounts(admin *adminsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accts, err := admin.PendingAccounts(c.Context(), c.QueryInt("limit", defaultFeedLimit))
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Could not load pending accounts", err.Error())
		}
		return c.JSON(Response{Status: fiber.StatusOK, Message: "Pending accounts", Data: accts})
	}
}

// StatusChange adapts one admin lifecycle operation into a handler. The
// acting admin comes from the token, the target account from the path.
func StatusChange(
	op func(ctx context.Context, adminID uuid.UUID, accountNumber, reason string) (*account.Account, error),
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, err := currentUserID(c)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", nil)
		}
		input, err := BindAndValidate[StatusChangeInput](c)
		if err != nil {
			return nil
		}
		acct, err := op(c.Context(), adminID, c.Params("number"), input.Reason)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Status change failed", err.Error())
		}
		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Account status updated",
			Data:    fiber.Map{"account_number": acct.Number, "status": acct.Status},
		})
	}
}

// RecentTransactions returns the latest ledger records across all accounts.
func RecentTransactions(admin *adminsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := admin.RecentTransactions(c.Context(), c.QueryInt("limit", defaultFeedLimit))
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Could not load transactions", err.Error())
		}
		return c.JSON(Response{Status: fiber.StatusOK, Message: "Recent transactions", Data: records})
	}
}

// HighValueTransactions returns the fraud-signal review feed.
func HighValueTransactions(admin *adminsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := admin.HighValueTransactions(c.Context(), c.QueryInt("limit", defaultFeedLimit))
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Could not load transactions", err.Error())
		}
		return c.JSON(Response{Status: fiber.StatusOK, Message: "High value transactions", Data: records})
	}
}

// ListActions returns the most recent audit entries.
func ListActions(admin *adminsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actions, err := admin.ListActions(c.Context(), c.QueryInt("limit", defaultFeedLimit))
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Could not load audit log", err.Error())
		}
		return c.JSON(Response{Status: fiber.StatusOK, Message: "Admin actions", Data: actions})
	}
}
