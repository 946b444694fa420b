package conversation

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/avosuivi/actionplan-backend/internal/domain"
	"github.com/avosuivi/actionplan-backend/internal/platform/logger"
)

// ListFilter narrows the paged conversation listing. Limit/Offset are assumed
// already clamped by the service layer.
type ListFilter struct {
	Date   string // YYYY-MM-DD, empty means no date filter
	Author string // case-insensitive substring on user_name
	Limit  int
	Offset int
}

type Repo interface {
	Create(ctx context.Context, tx *gorm.DB, conv *domain.Conversation) (*domain.Conversation, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Conversation, error)
	Exists(ctx context.Context, tx *gorm.DB, id int64) (bool, error)
	List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*domain.ConversationSummary, int64, error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(gormDB *gorm.DB, baseLog *logger.Logger) Repo {
	return &repo{db: gormDB, log: baseLog.With("repo", "ConversationRepo")}
}

func (r *repo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repo) Create(ctx context.Context, tx *gorm.DB, conv *domain.Conversation) (*domain.Conversation, error) {
	if err := r.handle(tx).WithContext(ctx).Create(conv).Error; err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *repo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.handle(tx).WithContext(ctx).
		Where("id = ?", id).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *repo) Exists(ctx context.Context, tx *gorm.DB, id int64) (bool, error) {
	var count int64
	if err := r.handle(tx).WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*domain.ConversationSummary, int64, error) {
	base := r.handle(tx).WithContext(ctx).Model(&domain.Conversation{})
	if filter.Date != "" {
		base = base.Where("DATE(date_conversation) = ?", filter.Date)
	}
	if author := strings.TrimSpace(filter.Author); author != "" {
		base = base.Where("LOWER(user_name) LIKE ?", "%"+strings.ToLower(author)+"%")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []*domain.ConversationSummary
	if err := base.Session(&gorm.Session{}).
		Select("id, user_name, date_conversation, image_data IS NOT NULL AS has_image").
		Order("date_conversation DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}
