// Package auth は管理者認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/nurie/internal/model"
	"github.com/hitoshi/nurie/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	AdminEmail    string        // 管理者メールアドレス
	AdminPassword string        // 管理者パスワード
	SessionMaxAge time.Duration // セッション有効期間
}

// Service は管理者認証に関するビジネスロジックを提供する。
// 認証情報は環境変数で設定された単一の管理者アカウントと照合し、
// 成功時にBearerトークンとして使うセッションを発行する。
type Service struct {
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(sessionRepo repository.SessionRepository, config ServiceConfig) *Service {
	return &Service{
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// Login は認証情報を検証し、新しいセッションを発行する。
// メールアドレスとパスワードの照合は定数時間比較で行い、
// どちらが誤っていても同じエラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*model.AdminSession, error) {
	emailMatch := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(email))),
		[]byte(strings.ToLower(s.config.AdminEmail)),
	)
	passwordMatch := subtle.ConstantTimeCompare([]byte(password), []byte(s.config.AdminPassword))

	// 短絡評価を避けるため両方の比較結果をビット積で結合する
	if emailMatch&passwordMatch != 1 {
		return nil, model.NewInvalidCredentialsError()
	}

	now := time.Now()
	session := &model.AdminSession{
		Token:     uuid.NewString(),
		Email:     s.config.AdminEmail,
		ExpiresAt: now.Add(s.config.SessionMaxAge),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("セッションの作成に失敗しました: %w", err)
	}

	return session, nil
}

// Logout は指定トークンのセッションを破棄する。
// トークンが存在しない場合もエラーにはしない。
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}
	return nil
}

// Validate は指定トークンのセッションを検証する。
// 有効なセッションがない場合はnilを返す。
func (s *Service) Validate(ctx context.Context, token string) (*model.AdminSession, error) {
	if token == "" {
		return nil, nil
	}
	session, err := s.sessionRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("セッションの検証に失敗しました: %w", err)
	}
	return session, nil
}
