package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/avosuivi/actionplan-backend/internal/data/repos/plan"
	"github.com/avosuivi/actionplan-backend/internal/domain"
	"github.com/avosuivi/actionplan-backend/internal/platform/apierr"
	"github.com/avosuivi/actionplan-backend/internal/platform/logger"
)

// ActionFields is the caller-supplied part of a single action node. DueDate
// uses YYYY-MM-DD; Status defaults to "new" when empty.
type ActionFields struct {
	Task        string `json:"task"`
	Responsible string `json:"responsible"`
	DueDate     string `json:"due_date"`
	Status      string `json:"status"`
	ProductLine string `json:"product_line"`
	PlantSite   string `json:"plant_site"`
}

type CreateActionInput struct {
	SujetID  int64
	ParentID *int64
	Fields   ActionFields
}

// ActionTreeInput is a nested payload for the bulk insert; parent links are
// implied by the nesting, to unbounded depth.
type ActionTreeInput struct {
	ActionFields
	Children []ActionTreeInput `json:"children"`
}

type ActionService interface {
	Create(ctx context.Context, in CreateActionInput) (*domain.Action, error)
	// InsertTree persists one nested payload depth-first in a single
	// transaction; on any failure at any depth nothing is committed.
	InsertTree(ctx context.Context, sujetID int64, payload ActionTreeInput) (*domain.ActionNode, error)
	Forest(ctx context.Context, sujetID int64) ([]*domain.ActionNode, error)
	Subtree(ctx context.Context, rootID int64) (*domain.ActionNode, error)
}

type actionService struct {
	db         *gorm.DB
	log        *logger.Logger
	actionRepo plan.ActionRepo
	sujetRepo  plan.SujetRepo
}

func NewActionService(gormDB *gorm.DB, log *logger.Logger, actionRepo plan.ActionRepo, sujetRepo plan.SujetRepo) ActionService {
	return &actionService{
		db:         gormDB,
		log:        log.With("service", "ActionService"),
		actionRepo: actionRepo,
		sujetRepo:  sujetRepo,
	}
}

// buildActionRow validates the caller-supplied fields before any insert is
// issued for the node.
func buildActionRow(sujetID int64, parentID *int64, fields ActionFields) (*domain.Action, error) {
	task := strings.TrimSpace(fields.Task)
	if task == "" {
		return nil, apierr.Unprocessable("empty_task", fmt.Errorf("task is required"))
	}

	status := domain.ActionStatus(strings.TrimSpace(fields.Status))
	if status == "" {
		status = domain.ActionStatusNew
	}
	if !domain.ValidActionStatus(status) {
		return nil, apierr.Unprocessable("invalid_status", fmt.Errorf("status %q is not one of new, in_progress, blocked, done, cancelled", fields.Status))
	}

	var dueDate *datatypes.Date
	if raw := strings.TrimSpace(fields.DueDate); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, apierr.Unprocessable("invalid_due_date", fmt.Errorf("due_date must be YYYY-MM-DD: %w", err))
		}
		d := datatypes.Date(parsed)
		dueDate = &d
	}

	return &domain.Action{
		SujetID:     sujetID,
		ParentID:    parentID,
		Task:        task,
		Responsible: strings.TrimSpace(fields.Responsible),
		DueDate:     dueDate,
		Status:      status,
		ProductLine: strings.TrimSpace(fields.ProductLine),
		PlantSite:   strings.TrimSpace(fields.PlantSite),
	}, nil
}

// checkScope verifies the sujet exists and is a root subject; actions are
// always scoped to root sujets.
func (s *actionService) checkScope(ctx context.Context, tx *gorm.DB, sujetID int64) error {
	sujet, err := s.sujetRepo.GetByID(ctx, tx, sujetID)
	if err != nil {
		return apierr.Store(err)
	}
	if sujet == nil {
		return apierr.NotFound("sujet_not_found", fmt.Errorf("sujet %d does not exist", sujetID))
	}
	if sujet.ParentID != nil {
		return apierr.Unprocessable("sujet_not_root", fmt.Errorf("sujet %d is not a root subject", sujetID))
	}
	return nil
}

func (s *actionService) Create(ctx context.Context, in CreateActionInput) (*domain.Action, error) {
	var out *domain.Action
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkScope(ctx, tx, in.SujetID); err != nil {
			return err
		}
		if in.ParentID != nil {
			parent, err := s.actionRepo.GetByID(ctx, tx, *in.ParentID)
			if err != nil {
				return apierr.Store(err)
			}
			if parent == nil {
				return apierr.NotFound("parent_not_found", fmt.Errorf("action %d does not exist", *in.ParentID))
			}
			if parent.SujetID != in.SujetID {
				return apierr.Conflict("parent_scope_mismatch",
					fmt.Errorf("action %d belongs to sujet %d, not %d", parent.ID, parent.SujetID, in.SujetID))
			}
		}

		row, err := buildActionRow(in.SujetID, in.ParentID, in.Fields)
		if err != nil {
			return err
		}
		if _, err := s.actionRepo.Create(ctx, tx, row); err != nil {
			return apierr.Store(err)
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *actionService) InsertTree(ctx context.Context, sujetID int64, payload ActionTreeInput) (*domain.ActionNode, error) {
	var out *domain.ActionNode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkScope(ctx, tx, sujetID); err != nil {
			return err
		}
		node, err := s.insertNode(ctx, tx, sujetID, nil, payload)
		if err != nil {
			return err
		}
		out = node
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// insertNode is the depth-first pre-order walk: the row is inserted first so
// its server-assigned id can be handed to the children, which are processed
// in payload order.
func (s *actionService) insertNode(ctx context.Context, tx *gorm.DB, sujetID int64, parentID *int64, in ActionTreeInput) (*domain.ActionNode, error) {
	row, err := buildActionRow(sujetID, parentID, in.ActionFields)
	if err != nil {
		return nil, err
	}
	if _, err := s.actionRepo.Create(ctx, tx, row); err != nil {
		return nil, apierr.Store(err)
	}

	node := &domain.ActionNode{Action: *row, Children: []*domain.ActionNode{}}
	for _, child := range in.Children {
		childNode, err := s.insertNode(ctx, tx, sujetID, &row.ID, child)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}

func (s *actionService) Forest(ctx context.Context, sujetID int64) ([]*domain.ActionNode, error) {
	if err := s.checkScope(ctx, nil, sujetID); err != nil {
		return nil, err
	}
	rows, err := s.actionRepo.ListBySujet(ctx, nil, sujetID)
	if err != nil {
		return nil, apierr.Store(err)
	}
	roots, _ := buildActionForest(rows, s.log)
	return roots, nil
}

func (s *actionService) Subtree(ctx context.Context, rootID int64) (*domain.ActionNode, error) {
	root, err := s.actionRepo.GetByID(ctx, nil, rootID)
	if err != nil {
		return nil, apierr.Store(err)
	}
	if root == nil {
		return nil, apierr.NotFound("action_not_found", fmt.Errorf("action %d does not exist", rootID))
	}

	rows, err := s.actionRepo.ListBySujet(ctx, nil, root.SujetID)
	if err != nil {
		return nil, apierr.Store(err)
	}
	_, index := buildActionForest(rows, s.log)
	return index[rootID], nil
}
