package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/nurie/internal/model"
)

// PostgresPageRepo はPostgreSQLを使用したぬりえページリポジトリ。
type PostgresPageRepo struct {
	db *sql.DB
}

// NewPostgresPageRepo はPostgresPageRepoを生成する。
func NewPostgresPageRepo(db *sql.DB) *PostgresPageRepo {
	return &PostgresPageRepo{db: db}
}

const pageColumns = `id, title, slug, description, image_url, category, park_slug,
	difficulty, is_active, display_order, likes, downloads, created_at, updated_at`

// scanPage は1行分のページをスキャンする。
func scanPage(row interface{ Scan(...any) error }) (*model.ColoringPage, error) {
	page := &model.ColoringPage{}
	var difficulty string
	err := row.Scan(
		&page.ID, &page.Title, &page.Slug, &page.Description, &page.ImageURL,
		&page.Category, &page.ParkSlug, &difficulty, &page.IsActive,
		&page.DisplayOrder, &page.Likes, &page.Downloads,
		&page.CreatedAt, &page.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	page.Difficulty = model.Difficulty(difficulty)
	return page, nil
}

// List は全ページを返す。
func (r *PostgresPageRepo) List(ctx context.Context) ([]model.ColoringPage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+pageColumns+` FROM coloring_pages`)
	if err != nil {
		return nil, fmt.Errorf("ページ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var pages []model.ColoringPage
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("ページのスキャンに失敗しました: %w", err)
		}
		pages = append(pages, *page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ページ一覧の読み取りに失敗しました: %w", err)
	}
	return pages, nil
}

// FindByID は指定IDのページを取得する。見つからない場合はnilを返す。
func (r *PostgresPageRepo) FindByID(ctx context.Context, id int64) (*model.ColoringPage, error) {
	page, err := scanPage(r.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM coloring_pages WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ページの取得に失敗しました: %w", err)
	}
	return page, nil
}

// FindBySlug はスラッグでページを検索する。比較はトリム後の小文字同士で行う。
func (r *PostgresPageRepo) FindBySlug(ctx context.Context, slug string) (*model.ColoringPage, error) {
	page, err := scanPage(r.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM coloring_pages
		 WHERE LOWER(BTRIM(slug)) = LOWER(BTRIM($1))`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("スラッグによるページの検索に失敗しました: %w", err)
	}
	return page, nil
}

// Create はページを作成し、採番したIDをpage.IDに設定する。
func (r *PostgresPageRepo) Create(ctx context.Context, page *model.ColoringPage) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO coloring_pages
		 (title, slug, description, image_url, category, park_slug,
		  difficulty, is_active, display_order, likes, downloads, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id`,
		page.Title, page.Slug, page.Description, page.ImageURL, page.Category,
		page.ParkSlug, string(page.Difficulty), page.IsActive, page.DisplayOrder,
		page.Likes, page.Downloads, page.CreatedAt, page.UpdatedAt,
	).Scan(&page.ID)
	if err != nil {
		return fmt.Errorf("ページの作成に失敗しました: %w", err)
	}
	return nil
}

// Update は既存ページを全フィールド上書きで更新する。
func (r *PostgresPageRepo) Update(ctx context.Context, page *model.ColoringPage) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE coloring_pages
		 SET title = $2, slug = $3, description = $4, image_url = $5, category = $6,
		     park_slug = $7, difficulty = $8, is_active = $9, display_order = $10,
		     likes = $11, downloads = $12, updated_at = $13
		 WHERE id = $1`,
		page.ID, page.Title, page.Slug, page.Description, page.ImageURL,
		page.Category, page.ParkSlug, string(page.Difficulty), page.IsActive,
		page.DisplayOrder, page.Likes, page.Downloads, page.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ページの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのページを削除する。
func (r *PostgresPageRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM coloring_pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ページの削除に失敗しました: %w", err)
	}
	return nil
}

// MaxDisplayOrder は表示順の最大値を返す。レコードがない場合は0。
func (r *PostgresPageRepo) MaxDisplayOrder(ctx context.Context) (int, error) {
	var max int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order), 0) FROM coloring_pages`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("表示順最大値の取得に失敗しました: %w", err)
	}
	return max, nil
}

// AddLikes はいいね数をdeltaだけ増減する。結果は0未満にならない。
func (r *PostgresPageRepo) AddLikes(ctx context.Context, id int64, delta int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE coloring_pages
		 SET likes = GREATEST(likes + $2, 0), updated_at = now()
		 WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("いいね数の更新に失敗しました: %w", err)
	}
	return nil
}

// IncrementDownloads はダウンロード数を1増やす。
func (r *PostgresPageRepo) IncrementDownloads(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE coloring_pages
		 SET downloads = downloads + 1, updated_at = now()
		 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ダウンロード数の更新に失敗しました: %w", err)
	}
	return nil
}
