package plan

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avosuivi/actionplan-backend/internal/domain"
	"github.com/avosuivi/actionplan-backend/internal/platform/logger"
)

type SujetRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sujet *domain.Sujet) (*domain.Sujet, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Sujet, error)
	// FindRootByLabel looks up an existing root sujet with the same
	// (conversation_id, label) pair; the create endpoint is idempotent by
	// content for that one case.
	FindRootByLabel(ctx context.Context, tx *gorm.DB, conversationID int64, label string) (*domain.Sujet, error)
	// ListByConversation returns every sujet row of one conversation in
	// ascending-id order. The store does not guarantee insertion order, so
	// the ordering is forced here for deterministic forests.
	ListByConversation(ctx context.Context, tx *gorm.DB, conversationID int64) ([]*domain.Sujet, error)
}

type sujetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSujetRepo(gormDB *gorm.DB, baseLog *logger.Logger) SujetRepo {
	return &sujetRepo{db: gormDB, log: baseLog.With("repo", "SujetRepo")}
}

func (r *sujetRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *sujetRepo) Create(ctx context.Context, tx *gorm.DB, sujet *domain.Sujet) (*domain.Sujet, error) {
	if err := r.handle(tx).WithContext(ctx).Create(sujet).Error; err != nil {
		return nil, err
	}
	return sujet, nil
}

func (r *sujetRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Sujet, error) {
	var sujet domain.Sujet
	err := r.handle(tx).WithContext(ctx).
		Where("id = ?", id).
		First(&sujet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sujet, nil
}

func (r *sujetRepo) FindRootByLabel(ctx context.Context, tx *gorm.DB, conversationID int64, label string) (*domain.Sujet, error) {
	var sujet domain.Sujet
	err := r.handle(tx).WithContext(ctx).
		Where("conversation_id = ? AND parent_id IS NULL AND label = ?", conversationID, label).
		Order("id ASC").
		First(&sujet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sujet, nil
}

func (r *sujetRepo) ListByConversation(ctx context.Context, tx *gorm.DB, conversationID int64) ([]*domain.Sujet, error) {
	var results []*domain.Sujet
	if err := r.handle(tx).WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
