package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newTestPublisher(t *testing.T, endpoint string) *S3Publisher {
	t.Helper()
	p, err := NewS3Publisher(S3Config{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		Endpoint:        endpoint,
		AccessKeyID:     "test-access",
		SecretAccessKey: "test-secret",
	})
	if err != nil {
		t.Fatalf("create publisher: %v", err)
	}
	return p
}

func TestPublish_MirrorsArtifact(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("fake video bytes"))
	}))
	defer source.Close()

	var uploaded atomic.Value
	s3Server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			body, _ := io.ReadAll(r.Body)
			uploaded.Store(r.URL.Path + "|" + string(body))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer s3Server.Close()

	p := newTestPublisher(t, s3Server.URL)
	url, err := p.Publish(context.Background(), source.URL, "task-123.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(url, "test-bucket") || !strings.HasSuffix(url, "task-123.mp4") {
		t.Errorf("unexpected published url %q", url)
	}
	got, _ := uploaded.Load().(string)
	if !strings.Contains(got, "task-123.mp4") || !strings.Contains(got, "fake video bytes") {
		t.Errorf("expected uploaded object with body, got %q", got)
	}
}

func TestPublish_SourceFetchFailure(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer source.Close()

	s3Server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer s3Server.Close()

	p := newTestPublisher(t, s3Server.URL)
	_, err := p.Publish(context.Background(), source.URL, "task-123.mp4")
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestPublish_RejectsNonHTTPSource(t *testing.T) {
	s3Server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer s3Server.Close()

	p := newTestPublisher(t, s3Server.URL)
	_, err := p.Publish(context.Background(), "file:///etc/passwd", "task-123.mp4")
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("expected ErrUnsupportedSource, got %v", err)
	}
}
