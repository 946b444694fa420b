package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avosuivi/actionplan-backend/internal/http/response"
	"github.com/avosuivi/actionplan-backend/internal/platform/logger"
	"github.com/avosuivi/actionplan-backend/internal/services"
)

type ConversationHandler struct {
	log                 *logger.Logger
	conversationService services.ConversationService
}

func NewConversationHandler(log *logger.Logger, svc services.ConversationService) *ConversationHandler {
	return &ConversationHandler{
		log:                 log.With("handler", "ConversationHandler"),
		conversationService: svc,
	}
}

type saveConversationRequest struct {
	UserName         string `json:"user_name"`
	Conversation     string `json:"conversation"`
	DateConversation string `json:"date_conversation"`
	ImageBase64      string `json:"image_base64"`
	ImageMime        string `json:"image_mime"`
	ImageName        string `json:"image_name"`
}

// POST /save-conversation
func (h *ConversationHandler) Save(c *gin.Context) {
	var req saveConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	var dateConv *time.Time
	if raw := strings.TrimSpace(req.DateConversation); raw != "" {
		parsed, ok := parseTimestamp(raw)
		if !ok {
			response.RespondError(c, http.StatusUnprocessableEntity, "invalid_date_conversation", nil)
			return
		}
		dateConv = &parsed
	}

	conv, err := h.conversationService.Save(c.Request.Context(), services.SaveConversationInput{
		UserName:         req.UserName,
		Body:             req.Conversation,
		DateConversation: dateConv,
		ImageBase64:      req.ImageBase64,
		ImageMime:        req.ImageMime,
		ImageName:        req.ImageName,
	})
	if err != nil {
		respondServiceError(c, "save_conversation_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"id": conv.ID, "status": "ok"})
}

// parseTimestamp accepts RFC3339 and the offset-less ISO form that older
// clients send.
func parseTimestamp(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// GET /conversations
func (h *ConversationHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	page, err := h.conversationService.List(c.Request.Context(), services.ConversationListInput{
		Date:   c.Query("date"),
		Author: c.Query("author"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondServiceError(c, "list_conversations_failed", err)
		return
	}
	response.RespondOK(c, page)
}

// GET /conversations/:id
func (h *ConversationHandler) Get(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", nil)
		return
	}
	conv, err := h.conversationService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, "get_conversation_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"id":                conv.ID,
		"user_name":         conv.UserName,
		"conversation":      conv.Body,
		"date_conversation": conv.DateConversation,
		"has_image":         conv.HasImage(),
		"image_mime":        conv.ImageMime,
		"image_name":        conv.ImageName,
		"created_at":        conv.CreatedAt,
	})
}

// GET /conversations/:id/image
func (h *ConversationHandler) Image(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", nil)
		return
	}
	conv, err := h.conversationService.Image(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, "get_image_failed", err)
		return
	}
	mime := conv.ImageMime
	if mime == "" {
		mime = "application/octet-stream"
	}
	c.Data(http.StatusOK, mime, conv.ImageData)
}

// GET /conversations/:id/export.txt
func (h *ConversationHandler) Export(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", nil)
		return
	}
	text, err := h.conversationService.ExportText(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, "export_conversation_failed", err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}
