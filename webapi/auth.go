package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/corebank/platform/pkg/domain"
	"github.com/corebank/platform/pkg/domain/account"
	authsvc "github.com/corebank/platform/pkg/service/auth"
	usersvc "github.com/corebank/platform/pkg/service/user"
)

// RegisterInput is the request body for POST /register.
type RegisterInput struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	AccountType string `json:"account_type" validate:"required,oneof=savings current"`
}

// LoginInput is the request body for POST /login.
type LoginInput struct {
	Identity string `json:"identity" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthRoutes registers the public authentication endpoints.
func AuthRoutes(app *fiber.App, auth *authsvc.Service, users *usersvc.Service) {
	app.Post("/register", Register(users))
	app.Post("/login", Login(auth))
}

// Register creates a user and their first (pending) account.
func Register(users *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[RegisterInput](c)
		if err != nil {
			return nil
		}
		u, acct, err := users.Register(
			c.Context(),
			input.Username,
			input.Email,
			input.Password,
			account.Type(input.AccountType),
		)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Registration failed", err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(Response{
			Status:  fiber.StatusCreated,
			Message: "Registration successful, account pending approval",
			Data: fiber.Map{
				"user_id":        u.ID,
				"account_number": acct.Number,
				"account_status": acct.Status,
			},
		})
	}
}

// Login authenticates a user and returns a JWT.
func Login(auth *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[LoginInput](c)
		if err != nil {
			return nil
		}
		u, err := auth.Login(c.Context(), input.Identity, input.Password)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusUnauthorized, "Invalid identity or password", nil)
		}
		token, err := auth.GenerateToken(u)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusInternalServerError, "Internal Server Error", err.Error())
		}
		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Success login",
			Data:    fiber.Map{"token": token},
		})
	}
}

// currentUserID resolves the authenticated user from the verified token.
func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return authsvc.ParseUserID(token)
}

// currentUserIsAdmin reports whether the authenticated user carries the admin claim.
func currentUserIsAdmin(c *fiber.Ctx) bool {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return false
	}
	return authsvc.IsAdmin(token)
}
