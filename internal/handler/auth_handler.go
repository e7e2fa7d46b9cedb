package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/nurie/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*model.AdminSession, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler は管理者認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse はログイン成功時のデータ部。
type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login は管理者の資格情報を検証し、Bearerトークンを発行する。
// POST /api/admin/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout はAuthorizationヘッダーのトークンに対応するセッションを破棄する。
// 既に失効したトークンでも200を返す。
// POST /api/admin/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := logoutToken(r)

	if err := h.service.Logout(r.Context(), token); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessMessage(w, http.StatusOK, "ログアウトしました")
}

// logoutToken はAuthorizationヘッダーからBearerトークンを取り出す。
// 認証ミドルウェアはメールアドレスしかコンテキストに載せないため、ここで再解析する。
func logoutToken(r *http.Request) string {
	value := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(value) < len(prefix) || !strings.EqualFold(value[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(value[len(prefix):])
}
