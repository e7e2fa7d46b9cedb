package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/nurie/internal/model"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	PublicRate      rate.Limit    // 公開API全般のレート（req/sec）。120/60 = 2 req/sec
	PublicBurst     int           // 公開APIのバーストサイズ
	AdminRate       rate.Limit    // 管理APIのレート（req/sec）。60/60 = 1 req/sec
	AdminBurst      int           // 管理APIのバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// 公開API 120 req/min/IP、管理API 60 req/min/IP。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		PublicRate:      rate.Limit(120.0 / 60.0), // 2 req/sec
		PublicBurst:     120,
		AdminRate:       rate.Limit(60.0 / 60.0), // 1 req/sec
		AdminBurst:      60,
		CleanupInterval: 5 * time.Minute,
	}
}

// ipLimiter はクライアントIPごとのレートリミッターとアクセス時刻を保持する。
type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter はクライアントIPごとのレート制限を管理する。
// 公開APIのレート制限と管理APIのレート制限の2種類を提供する。
type RateLimiter struct {
	config RateLimiterConfig

	publicMu       sync.RWMutex
	publicLimiters map[string]*ipLimiter

	adminMu       sync.RWMutex
	adminLimiters map[string]*ipLimiter

	stopCh chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:         config,
		publicLimiters: make(map[string]*ipLimiter),
		adminLimiters:  make(map[string]*ipLimiter),
		stopCh:         make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// PublicMiddleware は公開APIのレート制限ミドルウェアを返す。
// クライアントIPをキーとして制限する。
func (rl *RateLimiter) PublicMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := RequestClientIP(r)
			limiter := rl.getOrCreateLimiter(&rl.publicMu, rl.publicLimiters, ip, rl.config.PublicRate, rl.config.PublicBurst)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.PublicRate)
				slog.Warn("rate limit exceeded",
					slog.String("client_ip", ip),
					slog.String("limit_type", "public"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminMiddleware は管理APIのレート制限ミドルウェアを返す。
// 公開APIのレート制限とは独立に動作する。
func (rl *RateLimiter) AdminMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := RequestClientIP(r)
			limiter := rl.getOrCreateLimiter(&rl.adminMu, rl.adminLimiters, ip, rl.config.AdminRate, rl.config.AdminBurst)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.AdminRate)
				slog.Warn("rate limit exceeded",
					slog.String("client_ip", ip),
					slog.String("limit_type", "admin"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PublicLimiterCount は現在管理されている公開APIリミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) PublicLimiterCount() int {
	rl.publicMu.RLock()
	defer rl.publicMu.RUnlock()
	return len(rl.publicLimiters)
}

// AdminLimiterCount は現在管理されている管理APIリミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) AdminLimiterCount() int {
	rl.adminMu.RLock()
	defer rl.adminMu.RUnlock()
	return len(rl.adminLimiters)
}

// getOrCreateLimiter は指定IPのリミッターを取得または作成する。
func (rl *RateLimiter) getOrCreateLimiter(mu *sync.RWMutex, limiters map[string]*ipLimiter, ip string, r rate.Limit, burst int) *rate.Limiter {
	mu.RLock()
	il, exists := limiters[ip]
	mu.RUnlock()

	if exists {
		mu.Lock()
		il.lastAccess = time.Now()
		mu.Unlock()
		return il.limiter
	}

	mu.Lock()
	defer mu.Unlock()

	// ダブルチェック
	if il, exists := limiters[ip]; exists {
		il.lastAccess = time.Now()
		return il.limiter
	}

	limiter := rate.NewLimiter(r, burst)
	limiters[ip] = &ipLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2

	now := time.Now()

	rl.publicMu.Lock()
	for ip, il := range rl.publicLimiters {
		if now.Sub(il.lastAccess) > ttl {
			delete(rl.publicLimiters, ip)
		}
	}
	rl.publicMu.Unlock()

	rl.adminMu.Lock()
	for ip, il := range rl.adminLimiters {
		if now.Sub(il.lastAccess) > ttl {
			delete(rl.adminLimiters, ip)
		}
	}
	rl.adminMu.Unlock()
}

// RequestClientIP はリクエストからクライアントIPアドレスを取り出す。
// リバースプロキシ経由を想定してX-Forwarded-Forの先頭、次にX-Real-IPを参照し、
// どちらもなければRemoteAddrのホスト部を返す。
func RequestClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
// Retry-Afterヘッダーにはトークンが補充されるまでの推定秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	// Retry-Afterの算出: 1トークンが補充されるまでの秒数
	retryAfterSec := int(math.Ceil(1.0 / float64(r)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))

	WriteErrorResponse(w, http.StatusTooManyRequests, &model.APIError{
		Code:     "RATE_LIMIT_EXCEEDED",
		Message:  "リクエストが多すぎます。しばらく待ってから再度お試しください。",
		Category: "system",
		Action:   "Retry-Afterヘッダーの秒数だけ待ってから再試行してください。",
	})
}
