// Package clientip はサーバー自身のグローバルIPアドレスの解決とキャッシュを提供する。
//
// 画像プロキシが外部ホストへ転送するリクエストに自身のIPを付与するため、
// 外部のIPエコーサービスから自身のグローバルIPを取得する。
// 取得結果はプロセス内にキャッシュし、失敗しても呼び出し側にはエラーを返さない。
package clientip

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
)

// UnknownIP はIPアドレスを解決できなかった場合のフォールバック値。
const UnknownIP = "unknown"

// MaxEchoResponseSize はIPエコーサービス応答の読み取り上限（バイト）。
// IPv6アドレスでも45文字に収まるため余裕を持たせた値。
const MaxEchoResponseSize int64 = 64

// Resolver はIPエコーサービスへの問い合わせ結果をキャッシュするリゾルバー。
// プライマリが失敗した場合のみセカンダリに問い合わせる。
type Resolver struct {
	client       *http.Client
	primaryURL   string
	secondaryURL string

	mu     sync.Mutex
	cached string
}

// NewResolver はResolverの新しいインスタンスを生成する。
// clientにはSSRF防止機能付きのHTTPクライアントを渡すこと。
func NewResolver(client *http.Client, primaryURL, secondaryURL string) *Resolver {
	return &Resolver{
		client:       client,
		primaryURL:   primaryURL,
		secondaryURL: secondaryURL,
	}
}

// ClientIP はサーバー自身のグローバルIPアドレスを返す。
// キャッシュがあればそれを返し、なければエコーサービスに問い合わせる。
// 両方のエコーサービスが失敗した場合は "unknown" を返し、エラーにはしない。
// 失敗結果はキャッシュしないため、次回呼び出しで再試行される。
func (r *Resolver) ClientIP(ctx context.Context) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != "" {
		return r.cached
	}

	for _, echoURL := range []string{r.primaryURL, r.secondaryURL} {
		if echoURL == "" {
			continue
		}
		ip, err := r.fetch(ctx, echoURL)
		if err != nil {
			slog.Warn("IPエコーサービスへの問い合わせに失敗しました",
				slog.String("url", echoURL),
				slog.String("error", err.Error()))
			continue
		}
		r.cached = ip
		return ip
	}

	return UnknownIP
}

// Reset はキャッシュ済みのIPアドレスを破棄する。
// 次回のClientIP呼び出しでエコーサービスへの問い合わせが再実行される。
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = ""
}

// fetch は単一のエコーサービスからIPアドレスを取得する。
// 応答がIPアドレスとしてパースできない場合はエラーを返す。
func (r *Resolver) fetch(ctx context.Context, echoURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, echoURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &echoStatusError{status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxEchoResponseSize))
	if err != nil {
		return "", err
	}

	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return "", &echoParseError{body: ip}
	}

	return ip, nil
}

type echoStatusError struct {
	status int
}

func (e *echoStatusError) Error() string {
	return "unexpected status from echo service: " + http.StatusText(e.status)
}

type echoParseError struct {
	body string
}

func (e *echoParseError) Error() string {
	return "echo service response is not an IP address: " + e.body
}
