package services

import (
	"github.com/avosuivi/actionplan-backend/internal/domain"
	"github.com/avosuivi/actionplan-backend/internal/platform/logger"
)

// The builders below turn scope-filtered adjacency rows into nested node
// forests. Rows must arrive in ascending-id order; children sequences then
// come out in ascending-id order without any extra sorting.
//
// A parent_id that does not resolve inside the loaded scope promotes the row
// to a root instead of failing the whole read. That situation only arises
// from out-of-band writes (the API rejects cross-scope parents at creation),
// so it is logged at Warn to stay visible.

func buildSujetForest(rows []*domain.Sujet, log *logger.Logger) ([]*domain.SujetNode, map[int64]*domain.SujetNode) {
	index := make(map[int64]*domain.SujetNode, len(rows))
	for _, row := range rows {
		index[row.ID] = &domain.SujetNode{Sujet: *row, Children: []*domain.SujetNode{}}
	}

	roots := []*domain.SujetNode{}
	for _, row := range rows {
		node := index[row.ID]
		if row.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := index[*row.ParentID]
		if !ok || *row.ParentID == row.ID {
			if log != nil {
				log.Warn("orphaned parent reference promoted to root",
					"table", "sujets", "id", row.ID, "parent_id", *row.ParentID)
			}
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots, index
}

func buildActionForest(rows []*domain.Action, log *logger.Logger) ([]*domain.ActionNode, map[int64]*domain.ActionNode) {
	index := make(map[int64]*domain.ActionNode, len(rows))
	for _, row := range rows {
		index[row.ID] = &domain.ActionNode{Action: *row, Children: []*domain.ActionNode{}}
	}

	roots := []*domain.ActionNode{}
	for _, row := range rows {
		node := index[row.ID]
		if row.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := index[*row.ParentID]
		if !ok || *row.ParentID == row.ID {
			if log != nil {
				log.Warn("orphaned parent reference promoted to root",
					"table", "actions", "id", row.ID, "parent_id", *row.ParentID)
			}
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots, index
}
