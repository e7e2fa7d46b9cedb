// Package app はアプリケーションの初期化と起動を行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/nurie/internal/auth"
	"github.com/hitoshi/nurie/internal/category"
	"github.com/hitoshi/nurie/internal/clientip"
	"github.com/hitoshi/nurie/internal/config"
	"github.com/hitoshi/nurie/internal/database"
	"github.com/hitoshi/nurie/internal/handler"
	"github.com/hitoshi/nurie/internal/keyword"
	"github.com/hitoshi/nurie/internal/logger"
	"github.com/hitoshi/nurie/internal/metrics"
	"github.com/hitoshi/nurie/internal/middleware"
	"github.com/hitoshi/nurie/internal/page"
	"github.com/hitoshi/nurie/internal/park"
	"github.com/hitoshi/nurie/internal/proxy"
	"github.com/hitoshi/nurie/internal/repository"
	"github.com/hitoshi/nurie/internal/security"
	"github.com/hitoshi/nurie/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// stores は永続化層のリポジトリ一式。
// インメモリ実装とPostgreSQL実装のどちらかで埋められる。
type stores struct {
	pages      repository.PageRepository
	parks      repository.ParkRepository
	keywords   repository.KeywordRepository
	categories repository.CategoryRepository
	sessions   repository.SessionRepository
}

// openStores はDATABASE_URLの有無に応じて永続化層を初期化する。
// 未設定の場合はシード済みインメモリストアで起動する（開発用）。
// closeFnはDB接続のクローズ処理で、インメモリの場合はnilを返す。
func openStores(cfg *config.Config) (*stores, func() error, error) {
	if cfg.UseMemoryStore() {
		slog.Warn("DATABASE_URL is not set, using seeded in-memory stores")
		mem := repository.NewSeededMemoryStores()
		return &stores{
			pages:      mem.Pages,
			parks:      mem.Parks,
			keywords:   mem.Keywords,
			categories: mem.Categories,
			sessions:   mem.Sessions,
		}, nil, nil
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	return &stores{
		pages:      repository.NewPostgresPageRepo(db),
		parks:      repository.NewPostgresParkRepo(db),
		keywords:   repository.NewPostgresKeywordRepo(db),
		categories: repository.NewPostgresCategoryRepo(db),
		sessions:   repository.NewPostgresSessionRepo(db),
	}, db.Close, nil
}

// runServe はAPIサーバーモードで起動する。
// 永続化層を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. 永続化層
	st, closeDB, err := openStores(cfg)
	if err != nil {
		return err
	}
	if closeDB != nil {
		defer closeDB()
	}

	// 2. メトリクスとセキュリティサービス
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewContentSanitizer()

	// 3. ドメインサービス
	authService := auth.NewService(st.sessions, auth.ServiceConfig{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		SessionMaxAge: cfg.SessionMaxAge,
	})
	pageService := page.NewService(st.pages, st.parks, sanitizer, collector)
	parkService := park.NewService(st.parks, sanitizer)
	categoryService := category.NewService(st.categories, sanitizer)
	keywordService := keyword.NewService(st.keywords, collector)

	// 4. 画像プロキシ
	ipResolver := clientip.NewResolver(
		ssrfGuard.NewSafeClient(cfg.IPEchoTimeout, clientip.MaxEchoResponseSize),
		cfg.IPEchoPrimaryURL,
		cfg.IPEchoSecondaryURL,
	)
	proxyClient := ssrfGuard.NewSafeClient(cfg.ProxyTimeout, cfg.ProxyMaxSize)
	proxyService := proxy.NewService(
		proxyClient, ssrfGuard, ipResolver,
		cfg.ProxyAllowedHosts, cfg.ProxyMaxSize, collector,
	)

	// 5. ルーター
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		PublicRate:  rate.Limit(float64(cfg.RateLimitPublic) / 60),
		PublicBurst: cfg.RateLimitPublic,
		AdminRate:   rate.Limit(float64(cfg.RateLimitAdmin) / 60),
		AdminBurst:  cfg.RateLimitAdmin,
	})
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		SessionFinder:     st.sessions,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),
		Collector:         collector,
		Gatherer:          registry,

		AuthService:     authService,
		PageService:     pageService,
		ParkService:     parkService,
		CategoryService: categoryService,
		KeywordService:  keywordService,
		ProxyService:    proxyService,
	})

	// 6. 期限切れセッションのクリーンアップをバックグラウンドで実行
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanupJob := cleanup.NewCleanupJob(st.sessions, slog.Default())
	cleanupJob.Interval = cfg.SessionCleanupInterval
	go cleanupJob.Start(ctx)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.UseMemoryStore() {
		return fmt.Errorf("DATABASE_URL is required for migrations")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
