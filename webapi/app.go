// Package webapi exposes the platform over HTTP with fiber. Handlers stay
// thin: parse and validate input, resolve the authenticated user, call one
// service method, map the error to a status code.
package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/corebank/platform/pkg/middleware"
	accountsvc "github.com/corebank/platform/pkg/service/account"
	adminsvc "github.com/corebank/platform/pkg/service/admin"
	authsvc "github.com/corebank/platform/pkg/service/auth"
	ledgersvc "github.com/corebank/platform/pkg/service/ledger"
	usersvc "github.com/corebank/platform/pkg/service/user"
)

// Services bundles everything the HTTP layer depends on.
type Services struct {
	Auth    *authsvc.Service
	User    *usersvc.Service
	Account *accountsvc.Service
	Ledger  *ledgersvc.Service
	Admin   *adminsvc.Service
}

// NewApp builds the fiber application with all routes registered.
func NewApp(svcs Services, jwtSecret string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	AuthRoutes(app, svcs.Auth, svcs.User)

	protected := middleware.Protected(jwtSecret)
	AccountRoutes(app, protected, svcs.Account, svcs.Ledger)
	AdminRoutes(app, protected, svcs.Admin)

	return app
}
