package plan

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avosuivi/actionplan-backend/internal/domain"
	"github.com/avosuivi/actionplan-backend/internal/platform/logger"
)

type ActionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, action *domain.Action) (*domain.Action, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Action, error)
	// ListBySujet returns every action row scoped to one sujet in
	// ascending-id order, ready for forest rebuilding.
	ListBySujet(ctx context.Context, tx *gorm.DB, sujetID int64) ([]*domain.Action, error)
}

type actionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActionRepo(gormDB *gorm.DB, baseLog *logger.Logger) ActionRepo {
	return &actionRepo{db: gormDB, log: baseLog.With("repo", "ActionRepo")}
}

func (r *actionRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *actionRepo) Create(ctx context.Context, tx *gorm.DB, action *domain.Action) (*domain.Action, error) {
	if err := r.handle(tx).WithContext(ctx).Create(action).Error; err != nil {
		return nil, err
	}
	return action, nil
}

func (r *actionRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Action, error) {
	var action domain.Action
	err := r.handle(tx).WithContext(ctx).
		Where("id = ?", id).
		First(&action).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &action, nil
}

func (r *actionRepo) ListBySujet(ctx context.Context, tx *gorm.DB, sujetID int64) ([]*domain.Action, error) {
	var results []*domain.Action
	if err := r.handle(tx).WithContext(ctx).
		Where("sujet_id = ?", sujetID).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
