package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avosuivi/actionplan-backend/internal/http/response"
	"github.com/avosuivi/actionplan-backend/internal/platform/logger"
	"github.com/avosuivi/actionplan-backend/internal/services"
)

type ActionHandler struct {
	log           *logger.Logger
	actionService services.ActionService
}

func NewActionHandler(log *logger.Logger, svc services.ActionService) *ActionHandler {
	return &ActionHandler{
		log:           log.With("handler", "ActionHandler"),
		actionService: svc,
	}
}

type createActionRequest struct {
	SujetID  int64  `json:"sujet_id"`
	ParentID *int64 `json:"parent_id"`
	services.ActionFields
}

// POST /actions
func (h *ActionHandler) Create(c *gin.Context) {
	var req createActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	action, err := h.actionService.Create(c.Request.Context(), services.CreateActionInput{
		SujetID:  req.SujetID,
		ParentID: req.ParentID,
		Fields:   req.ActionFields,
	})
	if err != nil {
		respondServiceError(c, "create_action_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"action": action})
}

type insertActionTreeRequest struct {
	SujetID int64                    `json:"sujet_id"`
	Tree    services.ActionTreeInput `json:"tree"`
}

// POST /actions/tree
func (h *ActionHandler) InsertTree(c *gin.Context) {
	var req insertActionTreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	node, err := h.actionService.InsertTree(c.Request.Context(), req.SujetID, req.Tree)
	if err != nil {
		respondServiceError(c, "insert_action_tree_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"tree": node})
}

// GET /actions/tree?sujet_id=N or ?root_id=M
func (h *ActionHandler) Tree(c *gin.Context) {
	if raw := c.Query("root_id"); raw != "" {
		rootID, ok := parseID(raw)
		if !ok {
			response.RespondError(c, http.StatusBadRequest, "invalid_root_id", nil)
			return
		}
		node, err := h.actionService.Subtree(c.Request.Context(), rootID)
		if err != nil {
			respondServiceError(c, "action_tree_failed", err)
			return
		}
		response.RespondOK(c, gin.H{"action": node})
		return
	}

	sujetID, ok := parseID(c.Query("sujet_id"))
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "missing_scope", nil)
		return
	}
	roots, err := h.actionService.Forest(c.Request.Context(), sujetID)
	if err != nil {
		respondServiceError(c, "action_tree_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"actions": roots})
}
