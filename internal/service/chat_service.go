package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/girmmy/gimmyai/internal/domain"
	"github.com/girmmy/gimmyai/internal/llm"
	"github.com/girmmy/gimmyai/internal/repository"
	"github.com/girmmy/gimmyai/internal/upload"
)

// Attachment es un archivo adjunto todavía no subido.
type Attachment struct {
	Filename    string
	ContentType string
	Reader      io.Reader
	Size        int64
}

// SubmitResult devuelve los mensajes persistidos por una submission.
type SubmitResult struct {
	ConversationID   string         `json:"conversation_id"`
	UserMessage      domain.Message `json:"user_message"`
	AssistantMessage domain.Message `json:"assistant_message"`
}

// ChatService orquesta el flujo de envío: subida opcional, persistencia del
// mensaje del usuario, llamada al LLM y persistencia de la respuesta.
type ChatService struct {
	logger        *zap.Logger
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	completion    llm.CompletionClient
	uploader      upload.Uploader
	usage         UploadUsageLimiter
	feed          ChangeFeed
	persona       string
	now           func() time.Time
}

func NewChatService(
	logger *zap.Logger,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	completion llm.CompletionClient,
	uploader upload.Uploader,
	usage UploadUsageLimiter,
	feed ChangeFeed,
	persona string,
) *ChatService {
	return &ChatService{
		logger:        logger,
		conversations: conversations,
		messages:      messages,
		completion:    completion,
		uploader:      uploader,
		usage:         usage,
		feed:          feed,
		persona:       persona,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// NewConversation crea una conversación vacía respetando el tope por usuario.
func (s *ChatService) NewConversation(ctx context.Context, userID string) (domain.Conversation, error) {
	count, err := s.conversations.CountByUserID(ctx, userID)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("count conversations: %w", err)
	}
	if count >= domain.MaxConversationsPerUser {
		return domain.Conversation{}, ErrConversationLimit
	}

	now := s.now()
	conv := domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     domain.DefaultConversationTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// Conversation devuelve una conversación validando que pertenezca al usuario.
func (s *ChatService) Conversation(ctx context.Context, userID, conversationID string) (domain.Conversation, error) {
	return s.ownedConversation(ctx, userID, conversationID)
}

// ListConversations devuelve el sidebar del usuario, más reciente primero.
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return s.conversations.ListByUserID(ctx, userID)
}

// DeleteConversation elimina una conversación del usuario y sus mensajes.
// La eliminación es irreversible.
func (s *ChatService) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	if _, err := s.ownedConversation(ctx, userID, conversationID); err != nil {
		return err
	}
	if err := s.conversations.Delete(ctx, conversationID); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if err := s.feed.Publish(ctx, conversationID); err != nil {
		s.logger.Warn("publish delete notification failed", zap.Error(err))
	}
	return nil
}

// Messages devuelve los mensajes ordenados con el saludo sintético al frente.
func (s *ChatService) Messages(ctx context.Context, userID, conversationID string) ([]domain.Message, error) {
	if _, err := s.ownedConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	stored, err := s.messages.ListByConversationID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	out := make([]domain.Message, 0, len(stored)+1)
	out = append(out, domain.WelcomeMessage(conversationID))
	out = append(out, stored...)
	return out, nil
}

// SelectConversation apunta la sesión a otra conversación del usuario y
// recarga el historial local desde el almacén. Devuelve ErrBusy si hay una
// submission en vuelo; el cambio nunca se encola.
func (s *ChatService) SelectConversation(ctx context.Context, sess *ChatSession, conversationID string) error {
	if _, err := s.ownedConversation(ctx, sess.UserID, conversationID); err != nil {
		return err
	}
	stored, err := s.messages.ListByConversationID(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	history := make([]llm.Turn, 0, len(stored))
	for _, m := range stored {
		history = append(history, llm.Turn{Role: m.Role, Content: m.Content})
	}
	return sess.switchConversation(conversationID, history)
}

// Submit ejecuta la máquina de estados de envío:
// idle -> (uploading) -> sending -> idle. Una submission en vuelo hace que las
// siguientes se ignoren, nunca se encolan. El flag de ocupado se limpia en
// todos los caminos de salida.
func (s *ChatService) Submit(ctx context.Context, sess *ChatSession, text string, attachment *Attachment) (SubmitResult, error) {
	text = strings.TrimSpace(text)
	if text == "" && attachment == nil {
		return SubmitResult{}, ErrEmptySubmission
	}
	if !sess.tryAcquire() {
		return SubmitResult{}, ErrBusy
	}
	defer sess.release()

	conversationID := sess.ConversationID()
	if conversationID == "" {
		conv, err := s.NewConversation(ctx, sess.UserID)
		if err != nil {
			return SubmitResult{}, err
		}
		conversationID = conv.ID
		sess.bindConversation(conversationID)
	}

	var imageURL string
	if attachment != nil {
		if s.usage != nil && !s.usage.Allow(sess.UserID) {
			return SubmitResult{}, ErrUploadQuota
		}
		url, err := s.uploader.Upload(ctx, attachment.Filename, attachment.ContentType, attachment.Reader, attachment.Size)
		if err != nil {
			// Aborta la submission completa: nada se persiste y el borrador
			// del caller queda intacto.
			s.logger.Warn("upload failed", zap.Error(err), zap.String("user_id", sess.UserID))
			return SubmitResult{}, err
		}
		imageURL = url
	}

	// Historial previo desde el estado local, no releído del almacén.
	history := sess.History()
	firstUserMessage := !hasUserTurn(history)

	userMsg := domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           domain.RoleUser,
		Content:        text,
		ImageURL:       imageURL,
		CreatedAt:      s.now(),
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		return SubmitResult{}, fmt.Errorf("persist user message: %w", err)
	}
	sess.appendTurn(domain.RoleUser, text)
	s.afterAppend(ctx, conversationID, userMsg.CreatedAt)

	if firstUserMessage {
		if err := s.conversations.UpdateTitle(ctx, conversationID, domain.DeriveTitle(text), s.now()); err != nil {
			// Titulo desactualizado no bloquea la conversación.
			s.logger.Warn("update title failed", zap.Error(err), zap.String("conversation_id", conversationID))
		}
	}

	assistantText, err := s.completion.Complete(ctx, s.persona, history, text)
	if err != nil {
		s.logger.Warn("completion failed", zap.Error(err), zap.String("conversation_id", conversationID))
		return SubmitResult{ConversationID: conversationID, UserMessage: userMsg}, err
	}

	assistantMsg := domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           domain.RoleAssistant,
		Content:        assistantText,
		CreatedAt:      s.now(),
	}
	if err := s.messages.Create(ctx, assistantMsg); err != nil {
		return SubmitResult{ConversationID: conversationID, UserMessage: userMsg}, fmt.Errorf("persist assistant message: %w", err)
	}
	sess.appendTurn(domain.RoleAssistant, assistantText)
	s.afterAppend(ctx, conversationID, assistantMsg.CreatedAt)

	return SubmitResult{
		ConversationID:   conversationID,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
	}, nil
}

// afterAppend refresca updated_at y notifica a los suscriptores. Entre el
// append y el touch no hay transacción: un corte en el medio solo deja el
// orden del sidebar desactualizado.
func (s *ChatService) afterAppend(ctx context.Context, conversationID string, at time.Time) {
	if err := s.conversations.Touch(ctx, conversationID, at); err != nil {
		s.logger.Warn("touch conversation failed", zap.Error(err), zap.String("conversation_id", conversationID))
	}
	if err := s.feed.Publish(ctx, conversationID); err != nil {
		s.logger.Warn("publish change failed", zap.Error(err), zap.String("conversation_id", conversationID))
	}
}

func (s *ChatService) ownedConversation(ctx context.Context, userID, conversationID string) (domain.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return domain.Conversation{}, err
	}
	if conv.UserID != userID {
		return domain.Conversation{}, ErrNotOwner
	}
	return conv, nil
}

func hasUserTurn(history []llm.Turn) bool {
	for _, t := range history {
		if t.Role == domain.RoleUser {
			return true
		}
	}
	return false
}
