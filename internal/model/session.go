package model

import "time"

// AdminSession は管理者のログインセッションを表す。
// Tokenは不透明なBearerトークンとしてAuthorizationヘッダーで送信される。
type AdminSession struct {
	Token     string
	Email     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired は指定時刻の時点でセッションが期限切れかを返す。
func (s *AdminSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
