package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hitoshi/nurie/internal/proxy"
)

// ProxyServiceInterface は画像プロキシハンドラーが必要とするサービスインターフェース。
type ProxyServiceInterface interface {
	Fetch(ctx context.Context, rawURL string) (*proxy.Image, error)
}

// ProxyHandler は外部画像中継のHTTPハンドラー。
type ProxyHandler struct {
	service ProxyServiceInterface
}

// NewProxyHandler はProxyHandlerを生成する。
func NewProxyHandler(service ProxyServiceInterface) *ProxyHandler {
	return &ProxyHandler{service: service}
}

// Fetch は許可されたホストの画像を取得してそのまま返す。
// 上流のステータスコードとContent-Typeを引き継ぐ。
// GET /api/proxy-image?url=...
func (h *ProxyHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	image, err := h.service.Fetch(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if image.ContentType != "" {
		w.Header().Set("Content-Type", image.ContentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(image.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(image.StatusCode)
	w.Write(image.Data)
}
