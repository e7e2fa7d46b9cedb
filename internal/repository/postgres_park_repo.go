package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/nurie/internal/model"
)

// PostgresParkRepo はPostgreSQLを使用したテーマパークリポジトリ。
type PostgresParkRepo struct {
	db *sql.DB
}

// NewPostgresParkRepo はPostgresParkRepoを生成する。
func NewPostgresParkRepo(db *sql.DB) *PostgresParkRepo {
	return &PostgresParkRepo{db: db}
}

const parkColumns = `id, name, slug, description, theme, page_count,
	is_active, display_order, created_at, updated_at`

// scanPark は1行分のテーマパークをスキャンする。
func scanPark(row interface{ Scan(...any) error }) (*model.ThemePark, error) {
	park := &model.ThemePark{}
	err := row.Scan(
		&park.ID, &park.Name, &park.Slug, &park.Description, &park.Theme,
		&park.PageCount, &park.IsActive, &park.DisplayOrder,
		&park.CreatedAt, &park.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return park, nil
}

// List は全テーマパークを返す。
func (r *PostgresParkRepo) List(ctx context.Context) ([]model.ThemePark, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+parkColumns+` FROM theme_parks`)
	if err != nil {
		return nil, fmt.Errorf("テーマパーク一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var parks []model.ThemePark
	for rows.Next() {
		park, err := scanPark(rows)
		if err != nil {
			return nil, fmt.Errorf("テーマパークのスキャンに失敗しました: %w", err)
		}
		parks = append(parks, *park)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("テーマパーク一覧の読み取りに失敗しました: %w", err)
	}
	return parks, nil
}

// FindByID は指定IDのテーマパークを取得する。見つからない場合はnilを返す。
func (r *PostgresParkRepo) FindByID(ctx context.Context, id int64) (*model.ThemePark, error) {
	park, err := scanPark(r.db.QueryRowContext(ctx,
		`SELECT `+parkColumns+` FROM theme_parks WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("テーマパークの取得に失敗しました: %w", err)
	}
	return park, nil
}

// FindByName は名前でテーマパークを検索する。比較はトリム後の小文字同士で行う。
func (r *PostgresParkRepo) FindByName(ctx context.Context, name string) (*model.ThemePark, error) {
	park, err := scanPark(r.db.QueryRowContext(ctx,
		`SELECT `+parkColumns+` FROM theme_parks
		 WHERE LOWER(BTRIM(name)) = LOWER(BTRIM($1))`, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("名前によるテーマパークの検索に失敗しました: %w", err)
	}
	return park, nil
}

// FindBySlug はスラッグでテーマパークを検索する。比較はトリム後の小文字同士で行う。
func (r *PostgresParkRepo) FindBySlug(ctx context.Context, slug string) (*model.ThemePark, error) {
	park, err := scanPark(r.db.QueryRowContext(ctx,
		`SELECT `+parkColumns+` FROM theme_parks
		 WHERE LOWER(BTRIM(slug)) = LOWER(BTRIM($1))`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("スラッグによるテーマパークの検索に失敗しました: %w", err)
	}
	return park, nil
}

// Create はテーマパークを作成し、採番したIDをpark.IDに設定する。
func (r *PostgresParkRepo) Create(ctx context.Context, park *model.ThemePark) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO theme_parks
		 (name, slug, description, theme, page_count, is_active, display_order, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		park.Name, park.Slug, park.Description, park.Theme, park.PageCount,
		park.IsActive, park.DisplayOrder, park.CreatedAt, park.UpdatedAt,
	).Scan(&park.ID)
	if err != nil {
		return fmt.Errorf("テーマパークの作成に失敗しました: %w", err)
	}
	return nil
}

// Update は既存テーマパークを全フィールド上書きで更新する。
func (r *PostgresParkRepo) Update(ctx context.Context, park *model.ThemePark) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE theme_parks
		 SET name = $2, slug = $3, description = $4, theme = $5, page_count = $6,
		     is_active = $7, display_order = $8, updated_at = $9
		 WHERE id = $1`,
		park.ID, park.Name, park.Slug, park.Description, park.Theme,
		park.PageCount, park.IsActive, park.DisplayOrder, park.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("テーマパークの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのテーマパークを削除する。
func (r *PostgresParkRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM theme_parks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("テーマパークの削除に失敗しました: %w", err)
	}
	return nil
}

// MaxDisplayOrder は表示順の最大値を返す。レコードがない場合は0。
func (r *PostgresParkRepo) MaxDisplayOrder(ctx context.Context) (int, error) {
	var max int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order), 0) FROM theme_parks`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("表示順最大値の取得に失敗しました: %w", err)
	}
	return max, nil
}

// AdjustPageCount は指定スラッグのテーマパークの紐付きページ数をdeltaだけ増減する。
func (r *PostgresParkRepo) AdjustPageCount(ctx context.Context, slug string, delta int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE theme_parks
		 SET page_count = GREATEST(page_count + $2, 0), updated_at = now()
		 WHERE LOWER(BTRIM(slug)) = LOWER(BTRIM($1))`, slug, delta)
	if err != nil {
		return fmt.Errorf("紐付きページ数の更新に失敗しました: %w", err)
	}
	return nil
}
