package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/avosuivi/actionplan-backend/internal/data/repos/conversation"
	"github.com/avosuivi/actionplan-backend/internal/data/repos/plan"
	"github.com/avosuivi/actionplan-backend/internal/domain"
	"github.com/avosuivi/actionplan-backend/internal/platform/apierr"
	"github.com/avosuivi/actionplan-backend/internal/platform/logger"
)

type SujetService interface {
	// CreateRoot is idempotent by content: an existing root sujet with the
	// same (conversation_id, label) pair is returned instead of a duplicate.
	CreateRoot(ctx context.Context, conversationID int64, label string) (*domain.Sujet, error)
	CreateChild(ctx context.Context, parentID int64, label string) (*domain.Sujet, error)
	Forest(ctx context.Context, conversationID int64) ([]*domain.SujetNode, error)
	Subtree(ctx context.Context, rootID int64) (*domain.SujetNode, error)
}

type sujetService struct {
	db        *gorm.DB
	log       *logger.Logger
	sujetRepo plan.SujetRepo
	convRepo  conversation.Repo
}

func NewSujetService(gormDB *gorm.DB, log *logger.Logger, sujetRepo plan.SujetRepo, convRepo conversation.Repo) SujetService {
	return &sujetService{
		db:        gormDB,
		log:       log.With("service", "SujetService"),
		sujetRepo: sujetRepo,
		convRepo:  convRepo,
	}
}

func (s *sujetService) CreateRoot(ctx context.Context, conversationID int64, label string) (*domain.Sujet, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, apierr.Unprocessable("empty_label", fmt.Errorf("label is required"))
	}

	var out *domain.Sujet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.convRepo.Exists(ctx, tx, conversationID)
		if err != nil {
			return apierr.Store(err)
		}
		if !exists {
			return apierr.NotFound("conversation_not_found", fmt.Errorf("conversation %d does not exist", conversationID))
		}

		existing, err := s.sujetRepo.FindRootByLabel(ctx, tx, conversationID, label)
		if err != nil {
			return apierr.Store(err)
		}
		if existing != nil {
			out = existing
			return nil
		}

		created, err := s.sujetRepo.Create(ctx, tx, &domain.Sujet{
			ConversationID: conversationID,
			Label:          label,
		})
		if err != nil {
			return apierr.Store(err)
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *sujetService) CreateChild(ctx context.Context, parentID int64, label string) (*domain.Sujet, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, apierr.Unprocessable("empty_label", fmt.Errorf("label is required"))
	}

	var out *domain.Sujet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parent, err := s.sujetRepo.GetByID(ctx, tx, parentID)
		if err != nil {
			return apierr.Store(err)
		}
		if parent == nil {
			return apierr.NotFound("parent_not_found", fmt.Errorf("sujet %d does not exist", parentID))
		}

		created, err := s.sujetRepo.Create(ctx, tx, &domain.Sujet{
			ConversationID: parent.ConversationID,
			ParentID:       &parent.ID,
			Label:          label,
		})
		if err != nil {
			return apierr.Store(err)
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *sujetService) Forest(ctx context.Context, conversationID int64) ([]*domain.SujetNode, error) {
	exists, err := s.convRepo.Exists(ctx, nil, conversationID)
	if err != nil {
		return nil, apierr.Store(err)
	}
	if !exists {
		return nil, apierr.NotFound("conversation_not_found", fmt.Errorf("conversation %d does not exist", conversationID))
	}

	rows, err := s.sujetRepo.ListByConversation(ctx, nil, conversationID)
	if err != nil {
		return nil, apierr.Store(err)
	}
	roots, _ := buildSujetForest(rows, s.log)
	return roots, nil
}

func (s *sujetService) Subtree(ctx context.Context, rootID int64) (*domain.SujetNode, error) {
	root, err := s.sujetRepo.GetByID(ctx, nil, rootID)
	if err != nil {
		return nil, apierr.Store(err)
	}
	if root == nil {
		return nil, apierr.NotFound("sujet_not_found", fmt.Errorf("sujet %d does not exist", rootID))
	}

	rows, err := s.sujetRepo.ListByConversation(ctx, nil, root.ConversationID)
	if err != nil {
		return nil, apierr.Store(err)
	}
	_, index := buildSujetForest(rows, s.log)
	return index[rootID], nil
}
