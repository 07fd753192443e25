package upload

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestUpload_RejectsOversizedWithoutNetworkCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"url":"https://blobs/x"}`))
	}))
	defer srv.Close()

	u := NewHTTPUploader(srv.URL, "key", MaxFileBytes)
	_, err := u.Upload(context.Background(), "big.png", "image/png", strings.NewReader("x"), 6*1024*1024)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no network call for oversized file")
	}
}

func TestUpload_ReturnsURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(MaxFileBytes); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("expected file part: %v", err)
		}
		w.Write([]byte(`{"url":"https://blobs/abc.png"}`))
	}))
	defer srv.Close()

	u := NewHTTPUploader(srv.URL, "key", MaxFileBytes)
	url, err := u.Upload(context.Background(), "a.png", "image/png", strings.NewReader("bytes"), 5)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if url != "https://blobs/abc.png" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestUpload_BackendRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	u := NewHTTPUploader(srv.URL, "key", MaxFileBytes)
	_, err := u.Upload(context.Background(), "a.png", "image/png", strings.NewReader("bytes"), 5)
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
}

func TestUpload_MissingURLInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	u := NewHTTPUploader(srv.URL, "key", MaxFileBytes)
	_, err := u.Upload(context.Background(), "a.png", "image/png", strings.NewReader("bytes"), 5)
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
}

func TestUpload_NotConfigured(t *testing.T) {
	u := NewHTTPUploader("", "", 0)
	_, err := u.Upload(context.Background(), "a.png", "image/png", strings.NewReader("bytes"), 5)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestUpload_StreamBiggerThanDeclared(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	u := NewHTTPUploader(srv.URL, "key", 8)
	_, err := u.Upload(context.Background(), "a.png", "image/png", strings.NewReader("way more than eight bytes"), 5)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no network call when stream exceeds cap")
	}
}
