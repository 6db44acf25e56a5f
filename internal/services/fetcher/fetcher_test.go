package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phambaophuc/face-detection/internal/config"
)

func newFetcher(maxBytes int64) *HTTPFetcher {
	return New(config.FetchConfig{Timeout: 5 * time.Second, MaxBytes: maxBytes, UserAgent: "test-agent"})
}

func TestFetchReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	data, err := newFetcher(1024).Fetch(context.Background(), server.URL+"/cat.jpg")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestFetchNon2xxIsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := newFetcher(1024).Fetch(context.Background(), server.URL)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status %d", statusErr.StatusCode)
	}
	if err.Error() != "unexpected status 404 Not Found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestFetchEmptyBodyIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	data, err := newFetcher(1024).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty body, got %d bytes", len(data))
	}
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 32))
	}))
	defer server.Close()

	if _, err := newFetcher(16).Fetch(context.Background(), server.URL); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, err := newFetcher(32).Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("body at the limit should pass, got %v", err)
	}
}

func TestFetchRejectsInvalidURLs(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://example.com/a.jpg", "file:///etc/passwd", "http://"} {
		if _, err := newFetcher(1024).Fetch(context.Background(), raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestFetchNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	if _, err := newFetcher(1024).Fetch(context.Background(), addr); err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestFetchHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newFetcher(1024).Fetch(ctx, server.URL); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
