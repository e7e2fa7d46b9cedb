// Package proxy は外部ホストの画像をブラウザに中継する画像プロキシを提供する。
//
// 印刷用画像はCORS制約のある外部CDNに置かれているため、サーバー側で取得して
// 返す。取得先はSSRF防止機能付きクライアントとホスト許可リストで制限する。
package proxy

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hitoshi/nurie/internal/clientip"
	"github.com/hitoshi/nurie/internal/metrics"
	"github.com/hitoshi/nurie/internal/model"
	"github.com/hitoshi/nurie/internal/security"
)

// IPResolver はプロキシ転送時に付与する自身のIPアドレスを解決する。
type IPResolver interface {
	ClientIP(ctx context.Context) string
}

// Image は取得した画像の中継用データ。
// 上流のステータスコードはそのまま呼び出し元に返す。
type Image struct {
	StatusCode  int
	ContentType string
	Data        []byte
}

// Service は画像プロキシのサービス層。
type Service struct {
	client       *http.Client
	guard        security.SSRFGuardService
	resolver     IPResolver
	allowedHosts []string
	maxSize      int64
	collector    metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
// clientにはSSRF防止機能付きのHTTPクライアントを渡すこと。
// allowedHostsが空の場合はガードを通過する全ホストを許可する。
// collectorはnilでもよく、その場合メトリクスは記録しない。
func NewService(
	client *http.Client,
	guard security.SSRFGuardService,
	resolver IPResolver,
	allowedHosts []string,
	maxSize int64,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		client:       client,
		guard:        guard,
		resolver:     resolver,
		allowedHosts: allowedHosts,
		maxSize:      maxSize,
		collector:    collector,
	}
}

// Fetch は指定URLの画像を取得して返す。
// URLが不正な場合はINVALID_URL、許可リスト外のホストはHOST_NOT_ALLOWED、
// 上流への接続失敗はUPSTREAM_FETCH_FAILEDを返す。
// 上流が200以外を返した場合はエラーにせず、そのステータスを中継する。
func (s *Service) Fetch(ctx context.Context, rawURL string) (*Image, error) {
	// 1. URL形式とSSRFの事前検証
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, s.failValidation(model.NewInvalidURLError("urlパラメータが指定されていません"))
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return nil, s.failValidation(model.NewInvalidURLError(trimmed))
	}

	if err := s.guard.ValidateURL(trimmed); err != nil {
		return nil, s.failValidation(model.NewInvalidURLError(trimmed))
	}

	// 2. ホスト許可リストの照合
	if !s.hostAllowed(parsed.Hostname()) {
		if s.collector != nil {
			s.collector.RecordProxyFetchFailure("host_not_allowed")
		}
		return nil, model.NewHostNotAllowedError(parsed.Hostname())
	}

	// 3. 自身のIPを付与して上流へ転送
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trimmed, nil)
	if err != nil {
		return nil, s.failValidation(model.NewInvalidURLError(trimmed))
	}
	if ip := s.resolver.ClientIP(ctx); ip != clientip.UnknownIP {
		req.Header.Set("X-Client-IP", ip)
		req.Header.Set("X-Forwarded-For", ip)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if s.collector != nil {
			s.collector.RecordProxyFetchFailure("network")
		}
		return nil, model.NewUpstreamFetchError("接続できませんでした")
	}
	defer resp.Body.Close()

	// 4. サイズ上限付きで読み取り
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		if s.collector != nil {
			s.collector.RecordProxyFetchFailure("read")
		}
		return nil, model.NewUpstreamFetchError("応答の読み取りに失敗しました")
	}
	if int64(len(data)) > s.maxSize {
		if s.collector != nil {
			s.collector.RecordProxyFetchFailure("too_large")
		}
		return nil, model.NewUpstreamFetchError("画像サイズが上限を超えています")
	}

	if s.collector != nil {
		if resp.StatusCode == http.StatusOK {
			s.collector.RecordProxyFetchSuccess()
		} else {
			s.collector.RecordProxyFetchFailure("upstream_status")
		}
	}

	return &Image{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// hostAllowed はホストが許可リストに含まれるかを返す。比較は大文字小文字を無視する。
func (s *Service) hostAllowed(host string) bool {
	if len(s.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range s.allowedHosts {
		if strings.EqualFold(host, allowed) {
			return true
		}
	}
	return false
}

func (s *Service) failValidation(apiErr *model.APIError) error {
	if s.collector != nil {
		s.collector.RecordProxyFetchFailure("invalid_url")
	}
	return apiErr
}
