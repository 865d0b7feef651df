package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chatmultimodel/backend/internal/common"
)

type createConversationReq struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
}

// CreateConversation registers a conversation for the runtime's session. If
// the runtime did not mint a session id of its own, a UUID v4 is assigned.
func (h *Handler) CreateConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createConversationReq
	_ = c.ShouldBindJSON(&req) // empty body means mint everything

	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	conv, err := h.ConvSvc.Create(c.Request.Context(), uid, req.SessionID, req.Title)
	if err != nil {
		failFromErr(c, err)
		return
	}

	common.OK(c, gin.H{
		"id":         conv.ID,
		"session_id": conv.SessionID,
		"title":      conv.Title,
		"created_at": conv.CreatedAt,
	})
}

func (h *Handler) ListConversations(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	cursor := c.Query("cursor")

	items, next, err := h.ConvSvc.List(c.Request.Context(), uid, cursor, pageSize)
	if err != nil {
		failFromErr(c, err)
		return
	}

	common.OK(c, gin.H{
		"conversations": items,
		"next_cursor":   next,
	})
}

func (h *Handler) GetConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	conv, msgs, err := h.ConvSvc.Get(c.Request.Context(), c.Param("session_id"), uid)
	if err != nil {
		failFromErr(c, err)
		return
	}

	common.OK(c, gin.H{
		"id":         conv.ID,
		"session_id": conv.SessionID,
		"title":      conv.Title,
		"messages":   msgs,
	})
}

// ResumeConversation rebuilds the two session-start views: the full display
// history and the bounded context window for the inference call.
func (h *Handler) ResumeConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	resumed, err := h.ConvSvc.Resume(c.Request.Context(), c.Param("session_id"), uid)
	if err != nil {
		failFromErr(c, err)
		return
	}

	common.OK(c, resumed)
}

type renameReq struct {
	Title string `json:"title" binding:"required"`
}

func (h *Handler) RenameConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req renameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	conv, err := h.ConvSvc.Resolve(c.Request.Context(), c.Param("session_id"), uid)
	if err != nil {
		failFromErr(c, err)
		return
	}
	if err := h.ConvSvc.Rename(c.Request.Context(), conv.ID, req.Title); err != nil {
		failFromErr(c, err)
		return
	}

	common.OK(c, gin.H{"id": conv.ID, "title": req.Title})
}

func (h *Handler) DeleteConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	if err := h.ConvSvc.Delete(c.Request.Context(), c.Param("session_id"), uid); err != nil {
		failFromErr(c, err)
		return
	}

	common.OK(c, gin.H{"deleted": true})
}

type appendMessageReq struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// AppendMessage records one user/assistant/system turn.
func (h *Handler) AppendMessage(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req appendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	conv, err := h.ConvSvc.Resolve(c.Request.Context(), c.Param("session_id"), uid)
	if err != nil {
		failFromErr(c, err)
		return
	}

	msg, err := h.ConvSvc.Append(c.Request.Context(), conv.ID, req.Role, req.Content)
	if err != nil {
		failFromErr(c, err)
		return
	}

	common.OK(c, msg)
}
