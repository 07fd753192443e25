package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/girmmy/gimmyai/internal/llm"
)

// ChatSession es el estado efímero de una vista abierta: conversación actual,
// historial local y flag de envío en vuelo. Una sola submission a la vez.
type ChatSession struct {
	ID     string
	UserID string

	mu             sync.Mutex
	conversationID string
	history        []llm.Turn
	busy           bool
	createdAt      time.Time
}

// ConversationID devuelve la conversación activa, "" si aún no se creó.
func (s *ChatSession) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// History devuelve una copia del historial local.
func (s *ChatSession) History() []llm.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// CreatedAt devuelve el instante de apertura de la sesión. Inmutable.
func (s *ChatSession) CreatedAt() time.Time {
	return s.createdAt
}

// Busy indica si hay una submission en vuelo.
func (s *ChatSession) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// tryAcquire marca la sesión ocupada; false si ya había un envío en vuelo.
func (s *ChatSession) tryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *ChatSession) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *ChatSession) bindConversation(conversationID string) {
	s.mu.Lock()
	s.conversationID = conversationID
	s.mu.Unlock()
}

// switchConversation cambia la conversación activa y reemplaza el historial
// local con los turnos dados. Rechaza el cambio mientras hay un envío en
// vuelo: los turnos de esa submission pertenecen a la conversación anterior y
// no deben aterrizar en el historial recién cargado.
func (s *ChatSession) switchConversation(conversationID string, history []llm.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.conversationID = conversationID
	s.history = history
	return nil
}

func (s *ChatSession) appendTurn(role, content string) {
	s.mu.Lock()
	s.history = append(s.history, llm.Turn{Role: role, Content: content})
	s.mu.Unlock()
}

// SessionRegistry guarda las sesiones abiertas en memoria.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*ChatSession
}

var ErrSessionNotFound = errors.New("session not found")

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*ChatSession)}
}

// Open crea y registra una nueva sesión para el usuario.
func (r *SessionRegistry) Open(userID string) *ChatSession {
	sess := &ChatSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		createdAt: time.Now().UTC(),
	}
	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()
	return sess
}

// Get busca una sesión por id, validando que pertenezca al usuario.
func (r *SessionRegistry) Get(sessionID, userID string) (*ChatSession, error) {
	r.mu.Lock()
	sess, ok := r.sessions[sessionID]
	r.mu.Unlock()
	if !ok || sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Close descarta la sesión; cualquier operación en vuelo queda abandonada.
func (r *SessionRegistry) Close(sessionID string) {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
}
