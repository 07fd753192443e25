package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/girmmy/gimmyai/internal/llm"
	"github.com/girmmy/gimmyai/internal/repository"
	"github.com/girmmy/gimmyai/internal/upload"
)

// Errores de validación locales: se detectan antes de tocar la red.
var (
	ErrEmptySubmission   = errors.New("empty submission")
	ErrBusy              = errors.New("submission already in flight")
	ErrConversationLimit = errors.New("conversation limit reached")
	ErrUploadQuota       = errors.New("daily upload allowance exhausted")
	ErrNotOwner          = errors.New("conversation belongs to another user")
)

// UserMessageFor traduce cualquier error del flujo de chat al texto que ve el
// usuario final. Ningún error sale crudo hacia la capa de vista.
func UserMessageFor(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrEmptySubmission):
		return "Type a message or attach an image first."
	case errors.Is(err, ErrBusy):
		return "Hold on, your previous message is still being sent."
	case errors.Is(err, ErrConversationLimit):
		return "You've reached the maximum limit of 8 conversations. Please delete an existing conversation to create a new one."
	case errors.Is(err, ErrUploadQuota):
		return "You've used all your uploads for today. Please try again tomorrow."
	case errors.Is(err, ErrNotOwner), errors.Is(err, repository.ErrConversationNotFound):
		return "That conversation is no longer available."
	case errors.Is(err, upload.ErrFileTooLarge):
		return "File must be smaller than 4MB"
	case errors.Is(err, upload.ErrUploadFailed), errors.Is(err, upload.ErrNotConfigured):
		return "Upload functionality is currently unavailable."
	}

	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}

	return storeUserMessage(err)
}

// storeUserMessage mapea errores del almacén por clase de error de Postgres.
func storeUserMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out. Please try again."
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "42":
			// 42501 insufficient_privilege y parientes.
			return "You don't have permission to perform this action."
		case "28":
			return "Please sign in again to continue."
		case "53":
			// 53xxx insufficient resources.
			return "Service quota exceeded. Please try again later."
		case "57":
			// 57014 query_canceled, 57P03 cannot_connect_now.
			return "Service temporarily unavailable. Please try again later."
		case "08":
			return "Service temporarily unavailable. Please try again later."
		}
	}

	return "Something went wrong. Please try again."
}
