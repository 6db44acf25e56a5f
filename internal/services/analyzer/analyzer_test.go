package analyzer

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/phambaophuc/face-detection/internal/config"
	"github.com/phambaophuc/face-detection/internal/services/decoder"
	"github.com/phambaophuc/face-detection/internal/services/fetcher"
)

type stubFetcher struct {
	data  []byte
	err   error
	calls int
}

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	s.calls++
	return s.data, s.err
}

type stubDetector struct {
	found  bool
	err    error
	calls  int
	bounds image.Rectangle
}

func (s *stubDetector) Name() string { return "stub" }

func (s *stubDetector) Detect(ctx context.Context, img image.Image) (bool, error) {
	s.calls++
	s.bounds = img.Bounds()
	return s.found, s.err
}

type memoryCache struct {
	entries map[string]bool
	getErr  error
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]bool{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) (bool, bool, error) {
	if m.getErr != nil {
		return false, false, m.getErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, verdict bool) error {
	m.sets++
	m.entries[key] = verdict
	return nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestAnalyzeFaceDetected(t *testing.T) {
	det := &stubDetector{found: true}
	a := New(&stubFetcher{data: pngBytes(t, 4, 4)}, det, nil, decoder.Limits{}, nil)

	result, err := a.Analyze(context.Background(), "https://example.com/face.png", "req-1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !result.FaceDetected {
		t.Fatal("expected face_detected true")
	}
	if det.calls != 1 {
		t.Fatalf("expected one detector call, got %d", det.calls)
	}
}

func TestAnalyzeNoFace(t *testing.T) {
	a := New(&stubFetcher{data: pngBytes(t, 4, 4)}, &stubDetector{found: false}, nil, decoder.Limits{}, nil)

	result, err := a.Analyze(context.Background(), "https://example.com/landscape.png", "")
	if err != nil || result.FaceDetected {
		t.Fatalf("expected no face, got %+v %v", result, err)
	}
}

func TestAnalyzeFetchError(t *testing.T) {
	det := &stubDetector{}
	cause := &fetcher.StatusError{StatusCode: http.StatusNotFound, Status: "404 Not Found"}
	a := New(&stubFetcher{err: cause}, det, nil, decoder.Limits{}, nil)

	_, err := a.Analyze(context.Background(), "https://example.com/missing.png", "")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %T %v", err, err)
	}
	if det.calls != 0 {
		t.Fatal("detector must not run after a fetch failure")
	}

	status, detail := StatusFor(err)
	if status != http.StatusBadRequest || detail != "Failed to fetch image: unexpected status 404 Not Found" {
		t.Fatalf("unexpected mapping %d %q", status, detail)
	}
}

func TestAnalyzeDecodeError(t *testing.T) {
	det := &stubDetector{}
	a := New(&stubFetcher{data: []byte("<html></html>")}, det, nil, decoder.Limits{}, nil)

	_, err := a.Analyze(context.Background(), "https://example.com/page", "")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %T %v", err, err)
	}
	if det.calls != 0 {
		t.Fatal("detector must not run on undecodable bytes")
	}

	status, detail := StatusFor(err)
	if status != http.StatusBadRequest || !strings.HasPrefix(detail, "Failed to decode image: ") {
		t.Fatalf("unexpected mapping %d %q", status, detail)
	}
}

func TestAnalyzeEmptyBodyIsDecodeError(t *testing.T) {
	a := New(&stubFetcher{data: []byte{}}, &stubDetector{}, nil, decoder.Limits{}, nil)

	_, err := a.Analyze(context.Background(), "https://example.com/empty", "")
	if !errors.Is(err, decoder.ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
	if status, _ := StatusFor(err); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestAnalyzeDetectionError(t *testing.T) {
	a := New(&stubFetcher{data: pngBytes(t, 4, 4)}, &stubDetector{err: errors.New("model crashed")}, nil, decoder.Limits{}, nil)

	_, err := a.Analyze(context.Background(), "https://example.com/face.png", "")
	var detErr *DetectionError
	if !errors.As(err, &detErr) {
		t.Fatalf("expected DetectionError, got %T %v", err, err)
	}

	status, detail := StatusFor(err)
	if status != http.StatusInternalServerError || detail != "Failed to process image: model crashed" {
		t.Fatalf("unexpected mapping %d %q", status, detail)
	}
}

func TestStatusForUnknownError(t *testing.T) {
	status, detail := StatusFor(errors.New("boom"))
	if status != http.StatusInternalServerError || detail != "Failed to process image: boom" {
		t.Fatalf("unexpected mapping %d %q", status, detail)
	}
}

func TestAnalyzeDownscalesLargeImages(t *testing.T) {
	det := &stubDetector{found: true}
	a := New(&stubFetcher{data: pngBytes(t, 200, 100)}, det, nil, decoder.Limits{MaxDimension: 50}, nil)

	if _, err := a.Analyze(context.Background(), "https://example.com/big.png", ""); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if det.bounds.Dx() != 50 || det.bounds.Dy() != 25 {
		t.Fatalf("expected detector to see 50x25, got %v", det.bounds)
	}
}

func TestAnalyzeUsesVerdictCache(t *testing.T) {
	data := pngBytes(t, 4, 4)
	f := &stubFetcher{data: data}
	det := &stubDetector{found: true}
	verdicts := newMemoryCache()
	a := New(f, det, verdicts, decoder.Limits{}, nil)

	for i := 0; i < 2; i++ {
		result, err := a.Analyze(context.Background(), "https://example.com/face.png", "")
		if err != nil || !result.FaceDetected {
			t.Fatalf("run %d: unexpected result %+v %v", i, result, err)
		}
	}

	if f.calls != 2 {
		t.Fatalf("expected the image to be fetched on every call, got %d", f.calls)
	}
	if det.calls != 1 {
		t.Fatalf("expected second call to be served from cache, got %d detector calls", det.calls)
	}
	if verdicts.sets != 1 {
		t.Fatalf("expected one cache write, got %d", verdicts.sets)
	}
}

func TestAnalyzeDoesNotCacheFailures(t *testing.T) {
	verdicts := newMemoryCache()
	a := New(&stubFetcher{data: pngBytes(t, 4, 4)}, &stubDetector{err: errors.New("boom")}, verdicts, decoder.Limits{}, nil)

	if _, err := a.Analyze(context.Background(), "https://example.com/face.png", ""); err == nil {
		t.Fatal("expected error")
	}
	if verdicts.sets != 0 {
		t.Fatal("failed detections must not be cached")
	}
}

func TestAnalyzeIgnoresCacheErrors(t *testing.T) {
	verdicts := newMemoryCache()
	verdicts.getErr = errors.New("redis down")
	det := &stubDetector{found: true}
	a := New(&stubFetcher{data: pngBytes(t, 4, 4)}, det, verdicts, decoder.Limits{}, nil)

	result, err := a.Analyze(context.Background(), "https://example.com/face.png", "")
	if err != nil || !result.FaceDetected {
		t.Fatalf("expected cache errors to be ignored, got %+v %v", result, err)
	}
	if det.calls != 1 {
		t.Fatal("expected detector to run when cache lookup fails")
	}
}

func TestAnalyzeWithHTTPFetcherAndDecoder(t *testing.T) {
	face := pngBytes(t, 16, 16)
	huge := pngBytes(t, 1, 1)
	binary.BigEndian.PutUint32(huge[16:20], 20000)
	binary.BigEndian.PutUint32(huge[20:24], 20000)
	binary.BigEndian.PutUint32(huge[29:33], crc32.ChecksumIEEE(huge[12:29]))

	mux := http.NewServeMux()
	mux.HandleFunc("/face.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(face)
	})
	mux.HandleFunc("/notes.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("just some text"))
	})
	mux.HandleFunc("/huge.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(huge)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	httpFetcher := fetcher.New(config.FetchConfig{Timeout: 5 * time.Second, MaxBytes: 1 << 20, UserAgent: "test-agent"})
	det := &stubDetector{found: true}
	a := New(httpFetcher, det, nil, decoder.Limits{}, nil)

	result, err := a.Analyze(context.Background(), server.URL+"/face.png", "")
	if err != nil || !result.FaceDetected {
		t.Fatalf("expected face, got %+v %v", result, err)
	}

	tests := []struct {
		path   string
		prefix string
	}{
		{"/missing.png", "Failed to fetch image: unexpected status 404"},
		{"/notes.txt", "Failed to decode image: "},
		{"/huge.png", "Failed to decode image: "},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := a.Analyze(context.Background(), server.URL+tt.path, "")
			status, detail := StatusFor(err)
			if status != http.StatusBadRequest || !strings.HasPrefix(detail, tt.prefix) {
				t.Fatalf("expected 400 %q, got %d %q", tt.prefix, status, detail)
			}
		})
	}

	if det.calls != 1 {
		t.Fatalf("detector must only run for the decodable image, got %d calls", det.calls)
	}
}
