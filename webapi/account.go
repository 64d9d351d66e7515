package webapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/corebank/platform/pkg/domain"
	"github.com/corebank/platform/pkg/domain/account"
	"github.com/corebank/platform/pkg/money"
	accountsvc "github.com/corebank/platform/pkg/service/account"
	ledgersvc "github.com/corebank/platform/pkg/service/ledger"
)

// OpenAccountInput is the request body for POST /account.
type OpenAccountInput struct {
	AccountType string `json:"account_type" validate:"required,oneof=savings current"`
}

// MovementInput is the request body for deposits and withdrawals. Amounts
// travel as strings and cross into decimals at exactly one parse boundary.
type MovementInput struct {
	Account     string `json:"account" validate:"required,len=12,numeric"`
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description" validate:"max=255"`
}

// TransferInput is the request body for POST /transactions/transfer.
type TransferInput struct {
	From        string `json:"from" validate:"required,len=12,numeric"`
	To          string `json:"to" validate:"required,len=12,numeric"`
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description" validate:"max=255"`
}

// AccountRoutes registers the authenticated customer endpoints.
func AccountRoutes(
	app *fiber.App,
	protected fiber.Handler,
	accounts *accountsvc.Service,
	ledger *ledgersvc.Service,
) {
	grp := app.Group("/account", protected)
	grp.Get("/", ListAccounts(accounts))
	grp.Post("/", OpenAccount(accounts))
	grp.Get("/:number", GetAccount(accounts))
	grp.Get("/:number/transactions", Statement(accounts))

	txn := app.Group("/transactions", protected)
	txn.Post("/deposit", Deposit(accounts, ledger))
	txn.Post("/withdraw", Withdraw(accounts, ledger))
	txn.Post("/transfer", Transfer(accounts, ledger))
}

// ListAccounts returns every account owned by the authenticated user.
func ListAccounts(accounts *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUserID(c)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", nil)
		}
		accts, err := accounts.ListByUser(c.Context(), userID)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Could not list accounts", err.Error())
		}
		return c.JSON(Response{Status: fiber.StatusOK, Message: "Accounts", Data: accts})
	}
}

// OpenAccount opens an additional pending account for the authenticated user.
func OpenAccount(accounts *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUserID(c)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", nil)
		}
		input, err := BindAndValidate[OpenAccountInput](c)
		if err != nil {
			return nil
		}
		acct, err := accounts.Open(c.Context(), userID, account.Type(input.AccountType))
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Could not open account", err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(Response{
			Status:  fiber.StatusCreated,
			Message: "Account opened, pending approval",
			Data:    acct,
		})
	}
}

// GetAccount returns one account owned by the authenticated user.
func GetAccount(accounts *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		acct, err := ownedAccount(c, accounts)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Could not fetch account", err.Error())
		}
		return c.JSON(Response{Status: fiber.StatusOK, Message: "Account", Data: acct})
	}
}

// Statement returns the account's recent ledger records with signed amounts
// from the account's perspective.
func Statement(accounts *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		acct, err := ownedAccount(c, accounts)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Could not fetch statement", err.Error())
		}
		records, err := accounts.Statement(c.Context(), acct.ID)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Could not fetch statement", err.Error())
		}
		type line struct {
			Reference   string `json:"reference"`
			Type        string `json:"type"`
			Amount      string `json:"amount"`
			Description string `json:"description,omitempty"`
			CreatedAt   string `json:"created_at"`
		}
		lines := make([]line, 0, len(records))
		for _, r := range records {
			lines = append(lines, line{
				Reference:   r.Reference,
				Type:        string(r.Type),
				Amount:      r.DisplayAmountFor(acct.ID).StringFixed(money.Scale),
				Description: r.Description,
				CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			})
		}
		return c.JSON(Response{Status: fiber.StatusOK, Message: "Statement", Data: fiber.Map{
			"account":      acct.Number,
			"balance":      acct.Balance,
			"transactions": lines,
		}})
	}
}

// Deposit moves money into one of the authenticated user's accounts.
func Deposit(accounts *accountsvc.Service, ledger *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[MovementInput](c)
		if err != nil {
			return nil
		}
		if err := requireOwnership(c, accounts, input.Account); err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Deposit rejected", err.Error())
		}
		amount, err := money.Parse(input.Amount)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Invalid amount", err.Error())
		}
		record, err := ledger.Deposit(c.Context(), input.Account, amount, input.Description)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Deposit failed", err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(Response{
			Status:  fiber.StatusCreated,
			Message: "Deposit successful",
			Data:    record,
		})
	}
}

// Withdraw moves money out of one of the authenticated user's accounts.
func Withdraw(accounts *accountsvc.Service, ledger *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[MovementInput](c)
		if err != nil {
			return nil
		}
		if err := requireOwnership(c, accounts, input.Account); err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Withdrawal rejected", err.Error())
		}
		amount, err := money.Parse(input.Amount)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Invalid amount", err.Error())
		}
		record, err := ledger.Withdraw(c.Context(), input.Account, amount, input.Description)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Withdrawal failed", err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(Response{
			Status:  fiber.StatusCreated,
			Message: "Withdrawal successful",
			Data:    record,
		})
	}
}

// Transfer moves money from one of the authenticated user's accounts to any
// other account on the platform.
func Transfer(accounts *accountsvc.Service, ledger *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[TransferInput](c)
		if err != nil {
			return nil
		}
		// Only the sending side must be owned by the caller.
		if err := requireOwnership(c, accounts, input.From); err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Transfer rejected", err.Error())
		}
		amount, err := money.Parse(input.Amount)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Invalid amount", err.Error())
		}
		record, err := ledger.Transfer(c.Context(), input.From, input.To, amount, input.Description)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Transfer failed", err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(Response{
			Status:  fiber.StatusCreated,
			Message: "Transfer successful",
			Data:    record,
		})
	}
}

func ownedAccount(c *fiber.Ctx, accounts *accountsvc.Service) (*account.Account, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, err
	}
	acct, err := accounts.GetByNumber(c.Context(), c.Params("number"))
	if err != nil {
		return nil, err
	}
	if acct.UserID != userID {
		// Existence of other users' accounts is not disclosed.
		return nil, domain.ErrAccountNotFound
	}
	return acct, nil
}

func requireOwnership(c *fiber.Ctx, accounts *accountsvc.Service, number string) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	acct, err := accounts.GetByNumber(c.Context(), number)
	if err != nil {
		return err
	}
	if acct.UserID != userID {
		return domain.ErrAccountNotFound
	}
	return nil
}
