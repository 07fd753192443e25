package llm

import "context"

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response string
	Err      error

	LastPersona string
	LastHistory []Turn
	LastUser    string
	Calls       int
}

func (m *MockClient) Complete(_ context.Context, persona string, history []Turn, userText string) (string, error) {
	m.Calls++
	m.LastPersona = persona
	m.LastHistory = history
	m.LastUser = userText
	return m.Response, m.Err
}
