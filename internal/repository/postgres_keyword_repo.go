package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/nurie/internal/model"
)

// PostgresKeywordRepo はPostgreSQLを使用したプロモーションキーワードリポジトリ。
type PostgresKeywordRepo struct {
	db *sql.DB
}

// NewPostgresKeywordRepo はPostgresKeywordRepoを生成する。
func NewPostgresKeywordRepo(db *sql.DB) *PostgresKeywordRepo {
	return &PostgresKeywordRepo{db: db}
}

const keywordColumns = `id, keyword, click_count, is_active, display_order,
	start_date, end_date, created_at, updated_at`

// scanKeyword は1行分のキーワードをスキャンする。
func scanKeyword(row interface{ Scan(...any) error }) (*model.PromoKeyword, error) {
	keyword := &model.PromoKeyword{}
	var startDate, endDate sql.NullTime
	err := row.Scan(
		&keyword.ID, &keyword.Keyword, &keyword.ClickCount, &keyword.IsActive,
		&keyword.DisplayOrder, &startDate, &endDate,
		&keyword.CreatedAt, &keyword.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startDate.Valid {
		keyword.StartDate = &startDate.Time
	}
	if endDate.Valid {
		keyword.EndDate = &endDate.Time
	}
	return keyword, nil
}

// List は全キーワードを返す。
func (r *PostgresKeywordRepo) List(ctx context.Context) ([]model.PromoKeyword, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+keywordColumns+` FROM promo_keywords`)
	if err != nil {
		return nil, fmt.Errorf("キーワード一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var keywords []model.PromoKeyword
	for rows.Next() {
		keyword, err := scanKeyword(rows)
		if err != nil {
			return nil, fmt.Errorf("キーワードのスキャンに失敗しました: %w", err)
		}
		keywords = append(keywords, *keyword)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("キーワード一覧の読み取りに失敗しました: %w", err)
	}
	return keywords, nil
}

// FindByID は指定IDのキーワードを取得する。見つからない場合はnilを返す。
func (r *PostgresKeywordRepo) FindByID(ctx context.Context, id int64) (*model.PromoKeyword, error) {
	keyword, err := scanKeyword(r.db.QueryRowContext(ctx,
		`SELECT `+keywordColumns+` FROM promo_keywords WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("キーワードの取得に失敗しました: %w", err)
	}
	return keyword, nil
}

// FindByKeyword はキーワード文字列で検索する。比較はトリム後の小文字同士で行う。
func (r *PostgresKeywordRepo) FindByKeyword(ctx context.Context, kw string) (*model.PromoKeyword, error) {
	keyword, err := scanKeyword(r.db.QueryRowContext(ctx,
		`SELECT `+keywordColumns+` FROM promo_keywords
		 WHERE LOWER(BTRIM(keyword)) = LOWER(BTRIM($1))`, kw))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("キーワードの検索に失敗しました: %w", err)
	}
	return keyword, nil
}

// Create はキーワードを作成し、採番したIDをkeyword.IDに設定する。
func (r *PostgresKeywordRepo) Create(ctx context.Context, keyword *model.PromoKeyword) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO promo_keywords
		 (keyword, click_count, is_active, display_order, start_date, end_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		keyword.Keyword, keyword.ClickCount, keyword.IsActive, keyword.DisplayOrder,
		keyword.StartDate, keyword.EndDate, keyword.CreatedAt, keyword.UpdatedAt,
	).Scan(&keyword.ID)
	if err != nil {
		return fmt.Errorf("キーワードの作成に失敗しました: %w", err)
	}
	return nil
}

// Update は既存キーワードを全フィールド上書きで更新する。
func (r *PostgresKeywordRepo) Update(ctx context.Context, keyword *model.PromoKeyword) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE promo_keywords
		 SET keyword = $2, click_count = $3, is_active = $4, display_order = $5,
		     start_date = $6, end_date = $7, updated_at = $8
		 WHERE id = $1`,
		keyword.ID, keyword.Keyword, keyword.ClickCount, keyword.IsActive,
		keyword.DisplayOrder, keyword.StartDate, keyword.EndDate, keyword.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("キーワードの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのキーワードを削除する。
func (r *PostgresKeywordRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM promo_keywords WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("キーワードの削除に失敗しました: %w", err)
	}
	return nil
}

// MaxDisplayOrder は表示順の最大値を返す。レコードがない場合は0。
func (r *PostgresKeywordRepo) MaxDisplayOrder(ctx context.Context) (int, error) {
	var max int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order), 0) FROM promo_keywords`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("表示順最大値の取得に失敗しました: %w", err)
	}
	return max, nil
}

// IncrementClickCount は指定IDのクリック数を1増やす。
func (r *PostgresKeywordRepo) IncrementClickCount(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE promo_keywords
		 SET click_count = click_count + 1, updated_at = now()
		 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("クリック数の更新に失敗しました: %w", err)
	}
	return nil
}
