// Package auth provides login and JWT issuance/parsing.
package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/corebank/platform/pkg/config"
	"github.com/corebank/platform/pkg/domain"
	"github.com/corebank/platform/pkg/domain/user"
	"github.com/corebank/platform/pkg/repository"
	"github.com/corebank/platform/pkg/utils"
)

// Service authenticates users and issues signed tokens.
type Service struct {
	uow    repository.UnitOfWork
	cfg    config.Jwt
	logger *slog.Logger
}

// New creates an auth service.
func New(uow repository.UnitOfWork, cfg config.Jwt, logger *slog.Logger) *Service {
	return &Service{uow: uow, cfg: cfg, logger: logger}
}

// dummyHash keeps the bcrypt comparison on the failure path so login timing
// does not reveal whether the identity exists.
const dummyHash = "$2a$14$7zFqzDbD3RrlkMTczbXG9OWZ0FLOXjIxXzSZ.QZxkVXjXcx7QZQiC"

// Login verifies the identity (username or email) and password and returns
// the user on success. Failures of any kind surface as ErrUnauthorized.
func (s *Service) Login(ctx context.Context, identity, password string) (u *user.User, err error) {
	log := s.logger.With("identity", identity)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if utils.IsEmail(identity) {
			u, err = users.GetByEmail(ctx, identity)
		} else {
			u, err = users.GetByUsername(ctx, identity)
		}
		if err != nil || u == nil {
			_ = utils.CheckPasswordHash(password, dummyHash)
			return domain.ErrUnauthorized
		}
		if !utils.CheckPasswordHash(password, u.Password) {
			return domain.ErrUnauthorized
		}
		return nil
	})
	if err != nil {
		log.Warn("login failed", "error", err)
		return nil, domain.ErrUnauthorized
	}
	log.Info("login successful", "user_id", u.ID)
	return u, nil
}

// GenerateToken issues an HS256 JWT for the user.
func (s *Service) GenerateToken(u *user.User) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = u.ID.String()
	claims["username"] = u.Username
	claims["email"] = u.Email
	claims["is_admin"] = u.IsAdmin
	claims["exp"] = time.Now().Add(s.cfg.Expiry).Unix()
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		s.logger.Error("token signing failed", "user_id", u.ID, "error", err)
		return "", err
	}
	return signed, nil
}

// ParseUserID extracts the authenticated user ID from a verified token.
func ParseUserID(token *jwt.Token) (uuid.UUID, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return id, nil
}

// IsAdmin reports whether the verified token carries the admin claim.
func IsAdmin(token *jwt.Token) bool {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	isAdmin, _ := claims["is_admin"].(bool)
	return isAdmin
}
