package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Turn es una entrada del transcript enviado al proveedor.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionClient define la interfaz para generar respuestas del asistente.
type CompletionClient interface {
	Complete(ctx context.Context, persona string, history []Turn, userText string) (string, error)
}

type logger interface {
	Printf(format string, v ...interface{})
}

// HTTPClient implementa CompletionClient contra una API chat-completions
// compatible con OpenAI.
type HTTPClient struct {
	baseURL       string
	apiKey        string
	model         string
	historyWindow int
	client        *http.Client
	logger        logger
}

// NewHTTPClient construye un cliente HTTP apuntando a la API de chat completions.
// historyWindow limita cuántos turnos previos se envían; 0 envía el historial completo.
func NewHTTPClient(baseURL, apiKey, model string, historyWindow int, log any) *HTTPClient {
	l, _ := log.(logger)
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if historyWindow < 0 {
		historyWindow = 0
	}
	return &HTTPClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		model:         model,
		historyWindow: historyWindow,
		client:        &http.Client{Timeout: 60 * time.Second},
		logger:        l,
	}
}

// Complete arma el transcript [persona, historial, mensaje nuevo] y devuelve la
// primera respuesta candidata del proveedor.
func (c *HTTPClient) Complete(ctx context.Context, persona string, history []Turn, userText string) (string, error) {
	messages := BuildTranscript(persona, history, userText, c.historyWindow)

	reqBody := chatRequest{
		Model:    c.model,
		Messages: messages,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &APIError{Kind: FailureNetwork, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &APIError{Kind: FailureNetwork, Err: err}
	}

	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Printf("llm error status %d: %s", resp.StatusCode, string(respBody))
		}
		return "", classifyHTTPError(resp.StatusCode, respBody)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if cr.Error != nil {
		return "", &APIError{Kind: FailureGeneric, Message: cr.Error.Message}
	}

	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return "", &APIError{Kind: FailureGeneric, Message: "empty response"}
	}

	return cr.Choices[0].Message.Content, nil
}

// BuildTranscript construye el transcript final: persona como system, luego el
// historial (recortado a window turnos si window > 0) y el mensaje nuevo.
func BuildTranscript(persona string, history []Turn, userText string, window int) []Turn {
	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}

	messages := make([]Turn, 0, len(history)+2)
	messages = append(messages, Turn{Role: "system", Content: persona})
	messages = append(messages, history...)
	messages = append(messages, Turn{Role: "user", Content: userText})
	return messages
}

type chatRequest struct {
	Model    string `json:"model"`
	Messages []Turn `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Turn `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}
