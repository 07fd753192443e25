package domain

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// WelcomeMessageID identifica al mensaje de bienvenida sintético que se antepone
// en cada lectura. Nunca se persiste.
const WelcomeMessageID = "welcome"

// WelcomeMessageContent es el saludo inicial del asistente.
const WelcomeMessageContent = "How may I help you today?"

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	ImageURL       string    `json:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// WelcomeMessage devuelve el mensaje sintético de bienvenida para una conversación.
func WelcomeMessage(conversationID string) Message {
	return Message{
		ID:             WelcomeMessageID,
		ConversationID: conversationID,
		Role:           RoleAssistant,
		Content:        WelcomeMessageContent,
	}
}
