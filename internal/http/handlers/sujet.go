package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avosuivi/actionplan-backend/internal/http/response"
	"github.com/avosuivi/actionplan-backend/internal/platform/logger"
	"github.com/avosuivi/actionplan-backend/internal/services"
)

type SujetHandler struct {
	log          *logger.Logger
	sujetService services.SujetService
}

func NewSujetHandler(log *logger.Logger, svc services.SujetService) *SujetHandler {
	return &SujetHandler{
		log:          log.With("handler", "SujetHandler"),
		sujetService: svc,
	}
}

// POST /sujets
func (h *SujetHandler) Create(c *gin.Context) {
	var req struct {
		ConversationID int64  `json:"conversation_id"`
		Label          string `json:"label"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	sujet, err := h.sujetService.CreateRoot(c.Request.Context(), req.ConversationID, req.Label)
	if err != nil {
		respondServiceError(c, "create_sujet_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"sujet": sujet})
}

// POST /sous-sujets
func (h *SujetHandler) CreateChild(c *gin.Context) {
	var req struct {
		ParentID int64  `json:"parent_id"`
		Label    string `json:"label"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	sujet, err := h.sujetService.CreateChild(c.Request.Context(), req.ParentID, req.Label)
	if err != nil {
		respondServiceError(c, "create_sous_sujet_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"sujet": sujet})
}

// GET /sujets/tree?conversation_id=N or ?root_id=M
func (h *SujetHandler) Tree(c *gin.Context) {
	if raw := c.Query("root_id"); raw != "" {
		rootID, ok := parseID(raw)
		if !ok {
			response.RespondError(c, http.StatusBadRequest, "invalid_root_id", nil)
			return
		}
		node, err := h.sujetService.Subtree(c.Request.Context(), rootID)
		if err != nil {
			respondServiceError(c, "sujet_tree_failed", err)
			return
		}
		response.RespondOK(c, gin.H{"sujet": node})
		return
	}

	conversationID, ok := parseID(c.Query("conversation_id"))
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "missing_scope", nil)
		return
	}
	roots, err := h.sujetService.Forest(c.Request.Context(), conversationID)
	if err != nil {
		respondServiceError(c, "sujet_tree_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"sujets": roots})
}
