package middleware

import (
	"net/http"

	"github.com/hitoshi/nurie/internal/metrics"
)

// NewMetricsMiddleware はレスポンスのステータスコードをメトリクスに記録する
// ミドルウェアを返す。
func NewMetricsMiddleware(collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			collector.RecordHTTPStatus(rec.statusCode)
		})
	}
}
