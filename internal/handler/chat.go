package handler

import (
	"errors"
	"net/http"
	"time"

	"bedrock-chat/internal/model"
	"bedrock-chat/internal/service"
	"bedrock-chat/internal/utils"
	"bedrock-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

const heartbeatInterval = 30 * time.Second

// ChatHandler serves the chat API and page.
type ChatHandler struct {
	chatService *service.ChatService
	cartURL     string
	heartbeat   time.Duration
}

// NewChatHandler creates a ChatHandler over chatService.
func NewChatHandler(chatService *service.ChatService, cartURL string) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		cartURL:     cartURL,
		heartbeat:   heartbeatInterval,
	}
}

// GetState returns all sessions, the current session ID and the settings.
func (h *ChatHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, model.NewStateResponse(h.chatService.Snapshot()))
}

// SubmitPrompt adds a prompt to the current session and starts fetching its answer.
func (h *ChatHandler) SubmitPrompt(c *gin.Context) {
	var req model.SubmitPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.chatService.SubmitPrompt(c.Request.Context(), req.Prompt)
	switch {
	case errors.Is(err, service.ErrEmptyPrompt):
		c.Status(http.StatusNoContent)
		return
	case errors.Is(err, service.ErrPromptPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		logger.Errorf("Failed to submit prompt: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, model.SubmitPromptResponse{
		SessionID:      sub.SessionID,
		UserMessage:    sub.UserMessage,
		PendingMessage: sub.PendingMessage,
	})
}

// CreateSession creates a new session and makes it current.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	c.JSON(http.StatusCreated, h.chatService.CreateSession())
}

// GetSession returns one session.
func (h *ChatHandler) GetSession(c *gin.Context) {
	session, err := h.chatService.GetSession(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

// DeleteSession removes a session.
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	if err := h.chatService.RemoveSession(c.Param("session_id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Session deleted successfully",
		"currentSessionId": h.chatService.CurrentSession().ID,
	})
}

// ClearSessions replaces every session with a single empty one.
func (h *ChatHandler) ClearSessions(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatService.ClearSessions())
}

// SetCurrentSession selects the session shown to the user.
func (h *ChatHandler) SetCurrentSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	if err := h.chatService.SetCurrentSession(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"currentSessionId": sessionID})
}

// GetSettings returns the current settings.
func (h *ChatHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatService.Settings())
}

// UpdateSettings applies a partial settings update.
func (h *ChatHandler) UpdateSettings(c *gin.Context) {
	var req model.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.chatService.PatchSettings(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// Events streams state change notifications until the client goes away.
func (h *ChatHandler) Events(c *gin.Context) {
	events, cancel := h.chatService.Subscribe()
	defer cancel()

	sseWriter := utils.NewSSEWriter(c.Writer)
	ctx := c.Request.Context()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	if err := sseWriter.WriteJSON("ready", gin.H{
		"currentSessionId": h.chatService.CurrentSession().ID,
	}); err != nil {
		return
	}

	for {
		select {
		case event, ok := <-events:
			if !ok {
				sseWriter.Close()
				return
			}
			if err := sseWriter.WriteJSON(string(event.Type), event); err != nil {
				logger.Warnf("Failed to write SSE event: %v", err)
				return
			}

		case <-heartbeat.C:
			if err := sseWriter.Comment("heartbeat"); err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
