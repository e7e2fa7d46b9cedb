package proxy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/nurie/internal/model"
)

// allowAllGuard は検証を行わないテスト用ガード。
// httptestサーバーはループバックで動くため、本物のガードでは到達できない。
type allowAllGuard struct{}

func (allowAllGuard) NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client {
	return http.DefaultClient
}
func (allowAllGuard) ValidateURL(rawURL string) error { return nil }

// denyAllGuard は全URLを拒否するテスト用ガード。
type denyAllGuard struct{}

func (denyAllGuard) NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client {
	return http.DefaultClient
}
func (denyAllGuard) ValidateURL(rawURL string) error { return errors.New("blocked") }

type fixedResolver struct {
	ip string
}

func (f fixedResolver) ClientIP(ctx context.Context) string { return f.ip }

func assertAPIErrorCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != wantCode {
		t.Errorf("error code = %s, want %s", apiErr.Code, wantCode)
	}
}

func newTestService(client *http.Client, allowedHosts []string, maxSize int64) *Service {
	return NewService(client, allowAllGuard{}, fixedResolver{ip: "203.0.113.10"}, allowedHosts, maxSize, nil)
}

func TestFetch_Success(t *testing.T) {
	var gotClientIP, gotForwardedFor string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClientIP = r.Header.Get("X-Client-IP")
		gotForwardedFor = r.Header.Get("X-Forwarded-For")
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer upstream.Close()

	svc := newTestService(upstream.Client(), nil, 1024)
	img, err := svc.Fetch(context.Background(), upstream.URL+"/mickey.png")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if img.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", img.StatusCode)
	}
	if img.ContentType != "image/png" {
		t.Errorf("contentType = %s, want image/png", img.ContentType)
	}
	if string(img.Data) != "png-bytes" {
		t.Errorf("data = %q, want png-bytes", img.Data)
	}
	if gotClientIP != "203.0.113.10" || gotForwardedFor != "203.0.113.10" {
		t.Errorf("forwarded IP headers = %q/%q, want 203.0.113.10", gotClientIP, gotForwardedFor)
	}
}

func TestFetch_UnknownIPOmitsHeaders(t *testing.T) {
	var sawHeader bool
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawHeader = r.Header.Get("X-Client-IP") != "" || r.Header.Get("X-Forwarded-For") != ""
		w.Write([]byte("ok"))
	}))
	defer upstream.Close()

	svc := NewService(upstream.Client(), allowAllGuard{}, fixedResolver{ip: "unknown"}, nil, 1024, nil)
	if _, err := svc.Fetch(context.Background(), upstream.URL); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if sawHeader {
		t.Error("IP headers should be omitted when resolver returns unknown")
	}
}

func TestFetch_EmptyURL(t *testing.T) {
	svc := newTestService(http.DefaultClient, nil, 1024)

	_, err := svc.Fetch(context.Background(), "   ")
	assertAPIErrorCode(t, err, model.ErrCodeInvalidURL)
}

func TestFetch_InvalidScheme(t *testing.T) {
	svc := newTestService(http.DefaultClient, nil, 1024)

	_, err := svc.Fetch(context.Background(), "ftp://images.example.com/mickey.png")
	assertAPIErrorCode(t, err, model.ErrCodeInvalidURL)
}

func TestFetch_GuardRejection(t *testing.T) {
	svc := NewService(http.DefaultClient, denyAllGuard{}, fixedResolver{ip: "unknown"}, nil, 1024, nil)

	_, err := svc.Fetch(context.Background(), "http://169.254.169.254/latest/meta-data")
	assertAPIErrorCode(t, err, model.ErrCodeInvalidURL)
}

func TestFetch_HostNotAllowed(t *testing.T) {
	svc := newTestService(http.DefaultClient, []string{"images.example.com"}, 1024)

	_, err := svc.Fetch(context.Background(), "https://evil.example.org/mickey.png")
	assertAPIErrorCode(t, err, model.ErrCodeHostNotAllowed)
}

func TestFetch_HostAllowListIsCaseInsensitive(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer upstream.Close()

	svc := newTestService(upstream.Client(), []string{"127.0.0.1"}, 1024)
	if _, err := svc.Fetch(context.Background(), upstream.URL+"/a.png"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
}

func TestFetch_UpstreamStatusPassedThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer upstream.Close()

	svc := newTestService(upstream.Client(), nil, 1024)
	img, err := svc.Fetch(context.Background(), upstream.URL+"/missing.png")
	if err != nil {
		t.Fatalf("Fetch should not fail on upstream 404: %v", err)
	}
	if img.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", img.StatusCode)
	}
}

func TestFetch_NetworkError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // 即座に閉じて接続エラーを起こす

	svc := newTestService(http.DefaultClient, nil, 1024)
	_, err := svc.Fetch(context.Background(), upstream.URL)
	assertAPIErrorCode(t, err, model.ErrCodeUpstreamFetch)
}

func TestFetch_ResponseTooLarge(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer upstream.Close()

	svc := newTestService(upstream.Client(), nil, 50)
	_, err := svc.Fetch(context.Background(), upstream.URL)
	assertAPIErrorCode(t, err, model.ErrCodeUpstreamFetch)
}
