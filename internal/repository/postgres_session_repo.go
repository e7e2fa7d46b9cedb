package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/nurie/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用した管理者セッションリポジトリ。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Create はセッションを作成する。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.AdminSession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_sessions (token, email, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)`,
		session.Token, session.Email, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("セッションの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByToken は指定トークンのセッションを取得する。
// 見つからない場合と期限切れの場合はnilを返す。
func (r *PostgresSessionRepo) FindByToken(ctx context.Context, token string) (*model.AdminSession, error) {
	session := &model.AdminSession{}
	err := r.db.QueryRowContext(ctx,
		`SELECT token, email, expires_at, created_at
		 FROM admin_sessions
		 WHERE token = $1 AND expires_at > now()`,
		token,
	).Scan(&session.Token, &session.Email, &session.ExpiresAt, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}
	return session, nil
}

// DeleteByToken は指定トークンのセッションを削除する。
func (r *PostgresSessionRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM admin_sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れセッションを全て削除し、削除件数を返す。
func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM admin_sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("期限切れセッションの削除に失敗しました: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	return deleted, nil
}
