package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/avosuivi/actionplan-backend/internal/data/repos/conversation"
	"github.com/avosuivi/actionplan-backend/internal/domain"
	"github.com/avosuivi/actionplan-backend/internal/platform/apierr"
	"github.com/avosuivi/actionplan-backend/internal/platform/logger"
)

const (
	// MaxImageBytes bounds the decoded image size; exactly this many bytes
	// is still accepted.
	MaxImageBytes = 10 << 20

	// exportSeparator is the token stored between turns in the conversation
	// body; the export endpoint expands it back to newlines.
	exportSeparator = "||"
)

type SaveConversationInput struct {
	UserName         string
	Body             string
	DateConversation *time.Time
	ImageBase64      string
	ImageMime        string
	ImageName        string
}

type ConversationListInput struct {
	Date   string
	Author string
	Limit  int
	Offset int
}

type ConversationPage struct {
	Total         int64                         `json:"total"`
	Limit         int                           `json:"limit"`
	Offset        int                           `json:"offset"`
	Conversations []*domain.ConversationSummary `json:"conversations"`
}

type ConversationService interface {
	Save(ctx context.Context, in SaveConversationInput) (*domain.Conversation, error)
	List(ctx context.Context, in ConversationListInput) (*ConversationPage, error)
	Get(ctx context.Context, id int64) (*domain.Conversation, error)
	Image(ctx context.Context, id int64) (*domain.Conversation, error)
	ExportText(ctx context.Context, id int64) (string, error)
}

type conversationService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo conversation.Repo
}

func NewConversationService(gormDB *gorm.DB, log *logger.Logger, repo conversation.Repo) ConversationService {
	return &conversationService{
		db:   gormDB,
		log:  log.With("service", "ConversationService"),
		repo: repo,
	}
}

func (s *conversationService) Save(ctx context.Context, in SaveConversationInput) (*domain.Conversation, error) {
	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		return nil, apierr.Unprocessable("empty_user_name", fmt.Errorf("user_name is required"))
	}
	if len(userName) > 200 {
		return nil, apierr.Unprocessable("user_name_too_long", fmt.Errorf("user_name exceeds 200 characters"))
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, apierr.Unprocessable("empty_conversation", fmt.Errorf("conversation is required"))
	}

	var (
		imageData []byte
		err       error
	)
	if in.ImageBase64 != "" {
		imageData, err = base64.StdEncoding.DecodeString(in.ImageBase64)
		if err != nil {
			return nil, apierr.Unprocessable("invalid_image_base64", fmt.Errorf("image is not valid base64: %w", err))
		}
		if len(imageData) > MaxImageBytes {
			return nil, apierr.PayloadTooLarge("image_too_large",
				fmt.Errorf("decoded image is %d bytes, limit is %d", len(imageData), MaxImageBytes))
		}
	}

	dateConv := time.Now().UTC()
	if in.DateConversation != nil {
		dateConv = *in.DateConversation
	}

	conv := &domain.Conversation{
		UserName:         userName,
		Body:             in.Body,
		DateConversation: dateConv,
		ImageData:        imageData,
		ImageMime:        strings.TrimSpace(in.ImageMime),
		ImageName:        strings.TrimSpace(in.ImageName),
	}
	if _, err := s.repo.Create(ctx, nil, conv); err != nil {
		s.log.Error("conversation insert failed", "error", err)
		return nil, apierr.Store(err)
	}
	return conv, nil
}

func (s *conversationService) List(ctx context.Context, in ConversationListInput) (*ConversationPage, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	date := strings.TrimSpace(in.Date)
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, apierr.Unprocessable("invalid_date", fmt.Errorf("date must be YYYY-MM-DD: %w", err))
		}
	}

	results, total, err := s.repo.List(ctx, nil, conversation.ListFilter{
		Date:   date,
		Author: in.Author,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, apierr.Store(err)
	}
	if results == nil {
		results = []*domain.ConversationSummary{}
	}
	return &ConversationPage{
		Total:         total,
		Limit:         limit,
		Offset:        offset,
		Conversations: results,
	}, nil
}

func (s *conversationService) Get(ctx context.Context, id int64) (*domain.Conversation, error) {
	conv, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.Store(err)
	}
	if conv == nil {
		return nil, apierr.NotFound("conversation_not_found", fmt.Errorf("conversation %d does not exist", id))
	}
	return conv, nil
}

func (s *conversationService) Image(ctx context.Context, id int64) (*domain.Conversation, error) {
	conv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conv.HasImage() {
		return nil, apierr.NotFound("image_not_found", fmt.Errorf("conversation %d has no image", id))
	}
	return conv, nil
}

func (s *conversationService) ExportText(ctx context.Context, id int64) (string, error) {
	conv, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(conv.Body, exportSeparator, "\n"), nil
}
