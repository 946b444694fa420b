package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/avosuivi/actionplan-backend/internal/domain"
)

func SeedConversation(tb testing.TB, ctx context.Context, tx *gorm.DB, userName string) *domain.Conversation {
	tb.Helper()
	conv := &domain.Conversation{
		UserName:         userName,
		Body:             "Q: status?||R: en cours",
		DateConversation: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	if err := tx.WithContext(ctx).Create(conv).Error; err != nil {
		tb.Fatalf("seed conversation: %v", err)
	}
	return conv
}

func SeedSujet(tb testing.TB, ctx context.Context, tx *gorm.DB, conversationID int64, parentID *int64, label string) *domain.Sujet {
	tb.Helper()
	sujet := &domain.Sujet{
		ConversationID: conversationID,
		ParentID:       parentID,
		Label:          label,
	}
	if err := tx.WithContext(ctx).Create(sujet).Error; err != nil {
		tb.Fatalf("seed sujet: %v", err)
	}
	return sujet
}

func SeedAction(tb testing.TB, ctx context.Context, tx *gorm.DB, sujetID int64, parentID *int64, task string) *domain.Action {
	tb.Helper()
	action := &domain.Action{
		SujetID:  sujetID,
		ParentID: parentID,
		Task:     task,
		Status:   domain.ActionStatusNew,
	}
	if err := tx.WithContext(ctx).Create(action).Error; err != nil {
		tb.Fatalf("seed action: %v", err)
	}
	return action
}
