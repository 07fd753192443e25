package domain

import (
	"strings"
	"time"
)

// MaxConversationsPerUser limita cuantas conversaciones simultaneas puede tener un usuario.
const MaxConversationsPerUser = 8

// DefaultConversationTitle es el titulo inicial antes del primer mensaje del usuario.
const DefaultConversationTitle = "New Chat"

// TitleMaxLen es el largo máximo del titulo derivado del primer mensaje.
const TitleMaxLen = 50

type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeriveTitle construye el titulo de una conversación a partir del primer mensaje
// del usuario: primeros 50 caracteres, con "..." si hubo truncado.
func DeriveTitle(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return DefaultConversationTitle
	}
	runes := []rune(content)
	if len(runes) <= TitleMaxLen {
		return content
	}
	return string(runes[:TitleMaxLen]) + "..."
}
