package services

import (
	"context"
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/avosuivi/actionplan-backend/internal/data/repos/conversation"
	"github.com/avosuivi/actionplan-backend/internal/data/repos/plan"
	"github.com/avosuivi/actionplan-backend/internal/data/repos/testutil"
	"github.com/avosuivi/actionplan-backend/internal/domain"
)

func newSujetService(t *testing.T) (SujetService, *gorm.DB) {
	t.Helper()
	gormDB := testutil.DB(t)
	log := testutil.Logger(t)
	return NewSujetService(gormDB, log, plan.NewSujetRepo(gormDB, log), conversation.NewRepo(gormDB, log)), gormDB
}

func TestCreateRootIsIdempotentByContent(t *testing.T) {
	ctx := context.Background()
	svc, gormDB := newSujetService(t)
	conv := testutil.SeedConversation(t, ctx, gormDB, "majed")

	first, err := svc.CreateRoot(ctx, conv.ID, "  Qualité ligne 2 ")
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	if first.Label != "Qualité ligne 2" {
		t.Fatalf("label not trimmed: %q", first.Label)
	}

	second, err := svc.CreateRoot(ctx, conv.ID, "Qualité ligne 2")
	if err != nil {
		t.Fatalf("create root again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same row back, got %d and %d", first.ID, second.ID)
	}

	var count int64
	if err := gormDB.Model(&domain.Sujet{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 sujet row, got %d", count)
	}
}

func TestCreateRootRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc, gormDB := newSujetService(t)
	conv := testutil.SeedConversation(t, ctx, gormDB, "majed")

	_, err := svc.CreateRoot(ctx, conv.ID, "   ")
	wantAPIError(t, err, http.StatusUnprocessableEntity, "empty_label")

	_, err = svc.CreateRoot(ctx, conv.ID+99, "Sécurité")
	wantAPIError(t, err, http.StatusNotFound, "conversation_not_found")

	var count int64
	if err := gormDB.Model(&domain.Sujet{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed creates must leave no rows, got %d", count)
	}
}

func TestCreateChildInheritsConversation(t *testing.T) {
	ctx := context.Background()
	svc, gormDB := newSujetService(t)
	conv := testutil.SeedConversation(t, ctx, gormDB, "majed")
	root := testutil.SeedSujet(t, ctx, gormDB, conv.ID, nil, "Maintenance")

	child, err := svc.CreateChild(ctx, root.ID, "Lubrification")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if child.ConversationID != conv.ID {
		t.Fatalf("child must inherit the parent conversation, got %d", child.ConversationID)
	}
	if child.ParentID == nil || *child.ParentID != root.ID {
		t.Fatalf("child parent wrong: %+v", child.ParentID)
	}

	// Children can parent further children, to any depth.
	grandchild, err := svc.CreateChild(ctx, child.ID, "Graissage hebdo")
	if err != nil {
		t.Fatalf("create grandchild: %v", err)
	}
	if grandchild.ParentID == nil || *grandchild.ParentID != child.ID {
		t.Fatalf("grandchild parent wrong: %+v", grandchild.ParentID)
	}

	_, err = svc.CreateChild(ctx, grandchild.ID+99, "x")
	wantAPIError(t, err, http.StatusNotFound, "parent_not_found")
}

func TestSujetForestAndSubtree(t *testing.T) {
	ctx := context.Background()
	svc, gormDB := newSujetService(t)
	conv := testutil.SeedConversation(t, ctx, gormDB, "majed")

	a := testutil.SeedSujet(t, ctx, gormDB, conv.ID, nil, "A")
	a1 := testutil.SeedSujet(t, ctx, gormDB, conv.ID, &a.ID, "A1")
	testutil.SeedSujet(t, ctx, gormDB, conv.ID, &a1.ID, "A1a")
	b := testutil.SeedSujet(t, ctx, gormDB, conv.ID, nil, "B")

	roots, err := svc.Forest(ctx, conv.ID)
	if err != nil {
		t.Fatalf("forest: %v", err)
	}
	if len(roots) != 2 || roots[0].ID != a.ID || roots[1].ID != b.ID {
		t.Fatalf("forest roots wrong: %+v", roots)
	}
	if len(roots[0].Children) != 1 || len(roots[0].Children[0].Children) != 1 {
		t.Fatalf("nesting wrong: %+v", roots[0])
	}

	sub, err := svc.Subtree(ctx, a1.ID)
	if err != nil {
		t.Fatalf("subtree: %v", err)
	}
	if sub.ID != a1.ID || len(sub.Children) != 1 {
		t.Fatalf("subtree wrong: %+v", sub)
	}

	_, err = svc.Subtree(ctx, b.ID+99)
	wantAPIError(t, err, http.StatusNotFound, "sujet_not_found")

	_, err = svc.Forest(ctx, conv.ID+99)
	wantAPIError(t, err, http.StatusNotFound, "conversation_not_found")
}

func TestSujetForestPromotesDanglingParent(t *testing.T) {
	ctx := context.Background()
	svc, gormDB := newSujetService(t)
	conv := testutil.SeedConversation(t, ctx, gormDB, "majed")

	// Simulate an out-of-band write pointing at a row that never existed.
	dangling := int64(9999)
	testutil.SeedSujet(t, ctx, gormDB, conv.ID, &dangling, "orphelin")

	roots, err := svc.Forest(ctx, conv.ID)
	if err != nil {
		t.Fatalf("forest: %v", err)
	}
	if len(roots) != 1 || roots[0].Label != "orphelin" {
		t.Fatalf("expected dangling row promoted to root, got %+v", roots)
	}
}
