package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// MaxFileBytes es el tope por defecto para archivos subidos (4 MiB).
const MaxFileBytes = 4 * 1024 * 1024

var (
	// ErrFileTooLarge indica que el archivo supera el tope; no se toca la red.
	ErrFileTooLarge = errors.New("file too large")
	// ErrUploadFailed agrupa fallos de red o del backend de blobs.
	ErrUploadFailed = errors.New("upload failed")
	// ErrNotConfigured indica que no hay endpoint de blobs configurado.
	ErrNotConfigured = errors.New("uploader not configured")
)

// Uploader define el adaptador hacia el blob store externo.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error)
}

// HTTPUploader sube archivos vía multipart a un endpoint de blobs que devuelve
// una URL pública estable. No reintenta.
type HTTPUploader struct {
	endpoint string
	apiKey   string
	maxBytes int64
	client   *http.Client
}

func NewHTTPUploader(endpoint, apiKey string, maxBytes int64) *HTTPUploader {
	if maxBytes <= 0 {
		maxBytes = MaxFileBytes
	}
	return &HTTPUploader{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		maxBytes: maxBytes,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload transfiere el archivo y devuelve la URL pública. Los archivos que
// superan el tope se rechazan localmente, sin llamada de red.
func (u *HTTPUploader) Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	if u == nil || u.endpoint == "" {
		return "", ErrNotConfigured
	}
	if size > u.maxBytes {
		return "", fmt.Errorf("%w: %d bytes over %d limit", ErrFileTooLarge, size, u.maxBytes)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	// LimitReader por si el tamaño declarado no coincide con el stream real.
	copied, err := io.Copy(part, io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if copied > u.maxBytes {
		return "", ErrFileTooLarge
	}
	if contentType != "" {
		_ = writer.WriteField("content_type", contentType)
	}
	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: status=%d", ErrUploadFailed, resp.StatusCode)
	}

	var parsed struct {
		URL string `json:"url"`
	}
	if err = json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("%w: no url in response", ErrUploadFailed)
	}

	return parsed.URL, nil
}
