package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FailureKind clasifica los fallos del proveedor de completions.
type FailureKind string

const (
	FailureAuth       FailureKind = "auth"
	FailureQuota      FailureKind = "quota"
	FailureDailyLimit FailureKind = "daily_limit"
	FailureRateLimit  FailureKind = "rate_limit"
	FailureServer     FailureKind = "server"
	FailureNetwork    FailureKind = "network"
	FailureGeneric    FailureKind = "generic"
)

// APIError es el error tipado que el cliente expone al orquestador.
type APIError struct {
	Kind    FailureKind
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm %s failure: %v", e.Kind, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("llm %s failure: status=%d code=%s", e.Kind, e.Status, e.Code)
	}
	return fmt.Sprintf("llm %s failure: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// UserMessage devuelve el texto amigable que ve el usuario final.
func (e *APIError) UserMessage() string {
	switch e.Kind {
	case FailureAuth:
		return "Service authentication issue. Please try again later."
	case FailureQuota:
		return "Service quota exceeded. Please try again later!"
	case FailureDailyLimit:
		return "Daily usage limit reached. Please try again tomorrow!"
	case FailureRateLimit:
		return "Too many requests! Please wait a moment and try again."
	case FailureServer:
		return "Service temporarily unavailable. Please try again in a few moments."
	case FailureNetwork:
		return "Network error. Please check your connection and try again."
	default:
		return "Sorry, something went wrong. Please try again."
	}
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Type    string `json:"type"`
	} `json:"error"`
}

// classifyHTTPError mapea status + cuerpo de error a un APIError tipado.
// El caso delicado es 429: insufficient_quota significa limite diario agotado,
// rate_limit_exceeded es transitorio, y los mensajes de billing cuentan como quota.
func classifyHTTPError(status int, body []byte) *APIError {
	var parsed apiErrorBody
	_ = json.Unmarshal(body, &parsed)
	code := parsed.Error.Code
	message := parsed.Error.Message
	lower := strings.ToLower(message)

	apiErr := &APIError{Status: status, Code: code, Message: message}

	switch {
	case status == 401:
		apiErr.Kind = FailureAuth
	case status == 402:
		apiErr.Kind = FailureQuota
	case status == 429:
		switch {
		case strings.Contains(lower, "billing") || strings.Contains(lower, "account is not active"):
			apiErr.Kind = FailureQuota
		case code == "insufficient_quota" || strings.Contains(lower, "quota"):
			apiErr.Kind = FailureDailyLimit
		case code == "rate_limit_exceeded" || strings.Contains(lower, "rate limit"):
			apiErr.Kind = FailureRateLimit
		default:
			apiErr.Kind = FailureRateLimit
		}
	case status >= 500:
		apiErr.Kind = FailureServer
	default:
		apiErr.Kind = FailureGeneric
	}

	return apiErr
}
