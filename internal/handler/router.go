package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/nurie/internal/metrics"
	"github.com/hitoshi/nurie/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	Collector         metrics.MetricsCollector
	Gatherer          prometheus.Gatherer

	// サービス層
	AuthService     AuthServiceInterface
	PageService     PageServiceInterface
	ParkService     ParkServiceInterface
	CategoryService CategoryServiceInterface
	KeywordService  KeywordServiceInterface
	ProxyService    ProxyServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Metrics → Logging
//
// その内側で公開ルートと管理ルートがそれぞれのレート制限を持ち、
// 管理ルートにはさらにBearerトークン認証が掛かる。
// /healthz と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewMetricsMiddleware(deps.Collector))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	authHandler := NewAuthHandler(deps.AuthService)
	pageHandler := NewPageHandler(deps.PageService)
	parkHandler := NewParkHandler(deps.ParkService)
	categoryHandler := NewCategoryHandler(deps.CategoryService)
	keywordHandler := NewKeywordHandler(deps.KeywordService)
	proxyHandler := NewProxyHandler(deps.ProxyService)

	// 死活監視とメトリクス（レート制限なし）
	r.Get("/healthz", Health)
	r.Handle("/metrics", metrics.SetupMetricsRoute(deps.Gatherer))

	// --- 公開ルート ---
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.PublicMiddleware())

		// 塗り絵ページ
		r.Route("/api/pages", func(r chi.Router) {
			r.Get("/", pageHandler.ListPublic)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", pageHandler.GetPublic)
				r.Post("/like", pageHandler.Like)
				r.Delete("/like", pageHandler.Unlike)
				r.Post("/download", pageHandler.Download)
			})
		})

		// テーマパーク・カテゴリ・キーワード
		r.Get("/api/theme-parks", parkHandler.ListPublic)
		r.Get("/api/categories", categoryHandler.ListPublic)
		r.Route("/api/keywords", func(r chi.Router) {
			r.Get("/", keywordHandler.ListPublic)
			r.Post("/click", keywordHandler.Click)
		})

		// 画像プロキシ
		r.Get("/api/proxy-image", proxyHandler.Fetch)

		// ログインは認証前なので公開側のレート制限を受ける
		r.Post("/api/admin/login", authHandler.Login)
	})

	// --- 管理ルート ---
	// ミドルウェアスタック: AdminAuth → RateLimit(Admin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAdminAuthMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.AdminMiddleware())

		r.Post("/api/admin/logout", authHandler.Logout)

		r.Route("/api/admin/pages", func(r chi.Router) {
			r.Get("/", pageHandler.ListAdmin)
			r.Post("/", pageHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", pageHandler.GetAdmin)
				r.Put("/", pageHandler.Update)
				r.Delete("/", pageHandler.Delete)
			})
		})

		r.Route("/api/admin/theme-parks", func(r chi.Router) {
			r.Get("/", parkHandler.ListAdmin)
			r.Post("/", parkHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", parkHandler.GetAdmin)
				r.Put("/", parkHandler.Update)
				r.Delete("/", parkHandler.Delete)
			})
		})

		r.Route("/api/admin/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.ListAdmin)
			r.Post("/", categoryHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", categoryHandler.GetAdmin)
				r.Put("/", categoryHandler.Update)
				r.Delete("/", categoryHandler.Delete)
			})
		})

		r.Route("/api/admin/keywords", func(r chi.Router) {
			r.Get("/", keywordHandler.ListAdmin)
			r.Post("/", keywordHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", keywordHandler.GetAdmin)
				r.Put("/", keywordHandler.Update)
				r.Delete("/", keywordHandler.Delete)
			})
		})
	})

	return r
}

// Health は死活監視用のエンドポイント。
// GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
