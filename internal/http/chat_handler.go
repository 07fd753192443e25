package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/girmmy/gimmyai/internal/domain"
	"github.com/girmmy/gimmyai/internal/llm"
	"github.com/girmmy/gimmyai/internal/markdown"
	"github.com/girmmy/gimmyai/internal/repository"
	"github.com/girmmy/gimmyai/internal/service"
	"github.com/girmmy/gimmyai/internal/upload"
)

// ChatHandler mantiene dependencias para endpoints de sesiones, conversaciones
// y mensajes.
type ChatHandler struct {
	logger   *zap.Logger
	chats    *service.ChatService
	sessions *service.SessionRegistry
	stream   *service.StreamService
	renderer *markdown.Renderer
}

func NewChatHandler(
	logger *zap.Logger,
	chats *service.ChatService,
	sessions *service.SessionRegistry,
	stream *service.StreamService,
	renderer *markdown.Renderer,
) *ChatHandler {
	return &ChatHandler{
		logger:   logger,
		chats:    chats,
		sessions: sessions,
		stream:   stream,
		renderer: renderer,
	}
}

// messageView es un mensaje más su HTML listo para mostrar.
type messageView struct {
	domain.Message
	HTML string `json:"html"`
}

func (h *ChatHandler) renderMessages(messages []domain.Message) []messageView {
	views := make([]messageView, 0, len(messages))
	for _, msg := range messages {
		html, err := h.renderer.Render(msg.Content)
		if err != nil {
			h.logger.Warn("render message failed", zap.Error(err), zap.String("message_id", msg.ID))
			html = ""
		}
		views = append(views, messageView{Message: msg, HTML: html})
	}
	return views
}

// OpenSession maneja POST /sessions.
func (h *ChatHandler) OpenSession(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
		return
	}
	sess := h.sessions.Open(claims.UserID)
	c.JSON(http.StatusCreated, gin.H{"session": gin.H{
		"id":         sess.ID,
		"user_id":    sess.UserID,
		"created_at": sess.CreatedAt(),
	}})
}

// CloseSession maneja DELETE /sessions/:id. Cualquier operación en vuelo se
// abandona; no hay cancelación explícita.
func (h *ChatHandler) CloseSession(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	if _, err := h.sessions.Get(c.Param("id"), claims.UserID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	h.sessions.Close(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// SelectConversation maneja PUT /sessions/:id/conversation.
func (h *ChatHandler) SelectConversation(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	sess, err := h.sessions.Get(c.Param("id"), claims.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	var req struct {
		ConversationID string `json:"conversation_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.chats.SelectConversation(c.Request.Context(), sess, req.ConversationID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListConversations maneja GET /conversations.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	conversations, err := h.chats.ListConversations(c.Request.Context(), claims.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if conversations == nil {
		conversations = []domain.Conversation{}
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// CreateConversation maneja POST /conversations ("New Chat").
func (h *ChatHandler) CreateConversation(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	conv, err := h.chats.NewConversation(c.Request.Context(), claims.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"conversation": conv})
}

// DeleteConversation maneja DELETE /conversations/:id.
func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	if err := h.chats.DeleteConversation(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMessages maneja GET /conversations/:id/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	messages, err := h.chats.Messages(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": h.renderMessages(messages)})
}

// StreamMessages maneja GET /conversations/:id/stream como server-sent events:
// un evento con la lista completa ordenada en cada cambio.
func (h *ChatHandler) StreamMessages(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	conversationID := c.Param("id")
	if _, err := h.chats.Conversation(c.Request.Context(), claims.UserID, conversationID); err != nil {
		h.respondError(c, err)
		return
	}

	ch, err := h.stream.Stream(c.Request.Context(), conversationID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		snapshot, ok := <-ch
		if !ok {
			return false
		}
		c.SSEvent("messages", h.renderMessages(snapshot))
		return true
	})
}

// SubmitMessage maneja POST /messages. Acepta multipart (texto + imagen
// opcional) o JSON plano con solo texto.
func (h *ChatHandler) SubmitMessage(c *gin.Context) {
	claims, _ := GetAuthClaims(c)

	var (
		sessionID  string
		text       string
		attachment *service.Attachment
	)

	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") {
		sessionID = c.PostForm("session_id")
		text = c.PostForm("text")
		fileHeader, err := c.FormFile("image")
		if err == nil && fileHeader != nil {
			file, openErr := fileHeader.Open()
			if openErr != nil {
				h.logger.Warn("open attachment failed", zap.Error(openErr))
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment"})
				return
			}
			defer file.Close()
			attachment = &service.Attachment{
				Filename:    fileHeader.Filename,
				ContentType: fileHeader.Header.Get("Content-Type"),
				Reader:      file,
				Size:        fileHeader.Size,
			}
		}
	} else {
		var req struct {
			SessionID string `json:"session_id" binding:"required"`
			Text      string `json:"text"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		sessionID = req.SessionID
		text = req.Text
	}

	sess, err := h.sessions.Get(sessionID, claims.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	result, err := h.chats.Submit(c.Request.Context(), sess, text, attachment)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"conversation_id":   result.ConversationID,
		"user_message":      messageView{Message: result.UserMessage, HTML: h.mustRender(result.UserMessage.Content)},
		"assistant_message": messageView{Message: result.AssistantMessage, HTML: h.mustRender(result.AssistantMessage.Content)},
	})
}

func (h *ChatHandler) mustRender(content string) string {
	html, err := h.renderer.Render(content)
	if err != nil {
		return ""
	}
	return html
}

// respondError traduce errores del flujo de chat a status + mensaje amigable.
// Nada del error crudo llega al cliente.
func (h *ChatHandler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var apiErr *llm.APIError
	switch {
	case errors.Is(err, service.ErrEmptySubmission):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, service.ErrConversationLimit):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUploadQuota):
		status = http.StatusTooManyRequests
	case errors.Is(err, service.ErrNotOwner), errors.Is(err, repository.ErrConversationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, upload.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, upload.ErrUploadFailed), errors.Is(err, upload.ErrNotConfigured):
		status = http.StatusBadGateway
	case errors.As(err, &apiErr):
		if apiErr.Kind == llm.FailureRateLimit || apiErr.Kind == llm.FailureDailyLimit {
			status = http.StatusTooManyRequests
		} else {
			status = http.StatusBadGateway
		}
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("chat request failed", zap.Error(err))
	} else {
		h.logger.Warn("chat request rejected", zap.Error(err), zap.Int("status", status))
	}
	c.JSON(status, gin.H{"error": service.UserMessageFor(err)})
}
