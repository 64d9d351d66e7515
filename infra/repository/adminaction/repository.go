// Package adminaction provides the GORM-backed audit trail repository.
package adminaction

import (
	"context"

	"gorm.io/gorm"

	"github.com/corebank/platform/infra/repository/model"
	admindomain "github.com/corebank/platform/pkg/domain/admin"
	"github.com/corebank/platform/pkg/repository"
)

type repo struct {
	db *gorm.DB
}

// New creates an admin action repository using the provided *gorm.DB.
func New(db *gorm.DB) repository.AdminActionRepository {
	return &repo{db: db}
}

// Create implements repository.AdminActionRepository.
func (r *repo) Create(ctx context.Context, a *admindomain.Action) error {
	m := model.AdminAction{
		ID:              a.ID,
		ActionType:      string(a.Type),
		Description:     a.Description,
		Reason:          a.Reason,
		AdminUserID:     a.AdminUserID,
		TargetAccountID: a.TargetAccountID,
		CreatedAt:       a.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

// ListRecent implements repository.AdminActionRepository.
func (r *repo) ListRecent(ctx context.Context, limit int) ([]*admindomain.Action, error) {
	var ms []model.AdminAction
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	result := make([]*admindomain.Action, 0, len(ms))
	for i := range ms {
		m := ms[i]
		result = append(result, &admindomain.Action{
			ID:              m.ID,
			Type:            admindomain.ActionType(m.ActionType),
			Description:     m.Description,
			Reason:          m.Reason,
			AdminUserID:     m.AdminUserID,
			TargetAccountID: m.TargetAccountID,
			CreatedAt:       m.CreatedAt,
		})
	}
	return result, nil
}
