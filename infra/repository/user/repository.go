// Package user provides the GORM-backed user repository.
package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/corebank/platform/infra/repository/model"
	"github.com/corebank/platform/pkg/domain"
	userdomain "github.com/corebank/platform/pkg/domain/user"
	"github.com/corebank/platform/pkg/repository"
)

type repo struct {
	db *gorm.DB
}

// New creates a user repository using the provided *gorm.DB.
func New(db *gorm.DB) repository.UserRepository {
	return &repo{db: db}
}

// Create implements repository.UserRepository.
func (r *repo) Create(ctx context.Context, u *userdomain.User) error {
	m := mapToModel(u)
	err := r.db.WithContext(ctx).Create(&m).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadyExists
	}
	return err
}

// Get implements repository.UserRepository.
func (r *repo) Get(ctx context.Context, id uuid.UUID) (*userdomain.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByUsername implements repository.UserRepository.
func (r *repo) GetByUsername(ctx context.Context, username string) (*userdomain.User, error) {
	return r.first(ctx, "username = ?", username)
}

// GetByEmail implements repository.UserRepository.
func (r *repo) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	return r.first(ctx, "email = ?", email)
}

// Count implements repository.UserRepository.
func (r *repo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error
	return count, err
}

func (r *repo) first(ctx context.Context, query string, arg any) (*userdomain.User, error) {
	var m model.User
	if err := r.db.WithContext(ctx).First(&m, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return mapToDomain(&m), nil
}

func mapToModel(u *userdomain.User) model.User {
	return model.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func mapToDomain(m *model.User) *userdomain.User {
	return &userdomain.User{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		Password:  m.Password,
		IsAdmin:   m.IsAdmin,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
