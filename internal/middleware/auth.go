// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/nurie/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// adminEmailContextKey はリクエストコンテキストに管理者メールアドレスを格納するためのキー。
var adminEmailContextKey = contextKey("admin_email")

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByToken(ctx context.Context, token string) (*model.AdminSession, error)
}

// NewAdminAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証する
// ミドルウェアを返す。有効なセッションの管理者メールアドレスを
// リクエストコンテキストに注入する。未認証リクエストには401を返す。
func NewAdminAuthMiddleware(sessionFinder SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. AuthorizationヘッダーからBearerトークンを取得
			token := bearerToken(r)
			if token == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 2. セッションの有効性を検証（期限切れはFindByTokenがnilを返す）
			session, err := sessionFinder.FindByToken(r.Context(), token)
			if err != nil {
				slog.Error("failed to find session",
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			if session == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 3. 認証済み管理者をコンテキストに注入
			ctx := context.WithValue(r.Context(), adminEmailContextKey, session.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// 形式が異なる場合は空文字列を返す。
func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(authz) <= len(prefix) || !strings.EqualFold(authz[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(authz[len(prefix):])
}

// AdminEmailFromContext はリクエストコンテキストから管理者メールアドレスを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func AdminEmailFromContext(ctx context.Context) (string, error) {
	email, ok := ctx.Value(adminEmailContextKey).(string)
	if !ok || email == "" {
		return "", fmt.Errorf("admin email not found in context")
	}
	return email, nil
}

// ContextWithAdminEmail はコンテキストに管理者メールアドレスを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithAdminEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, adminEmailContextKey, email)
}
