package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/nurie/internal/model"
)

// PostgresCategoryRepo はPostgreSQLを使用したカテゴリリポジトリ。
type PostgresCategoryRepo struct {
	db *sql.DB
}

// NewPostgresCategoryRepo はPostgresCategoryRepoを生成する。
func NewPostgresCategoryRepo(db *sql.DB) *PostgresCategoryRepo {
	return &PostgresCategoryRepo{db: db}
}

const categoryColumns = `id, name, slug, description, color,
	is_active, display_order, created_at, updated_at`

// scanCategory は1行分のカテゴリをスキャンする。
func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	category := &model.Category{}
	err := row.Scan(
		&category.ID, &category.Name, &category.Slug, &category.Description,
		&category.Color, &category.IsActive, &category.DisplayOrder,
		&category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return category, nil
}

// List は全カテゴリを返す。
func (r *PostgresCategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("カテゴリのスキャンに失敗しました: %w", err)
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の読み取りに失敗しました: %w", err)
	}
	return categories, nil
}

// FindByID は指定IDのカテゴリを取得する。見つからない場合はnilを返す。
func (r *PostgresCategoryRepo) FindByID(ctx context.Context, id int64) (*model.Category, error) {
	category, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	return category, nil
}

// FindByName は名前でカテゴリを検索する。比較はトリム後の小文字同士で行う。
func (r *PostgresCategoryRepo) FindByName(ctx context.Context, name string) (*model.Category, error) {
	category, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE LOWER(BTRIM(name)) = LOWER(BTRIM($1))`, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("名前によるカテゴリの検索に失敗しました: %w", err)
	}
	return category, nil
}

// FindBySlug はスラッグでカテゴリを検索する。比較はトリム後の小文字同士で行う。
func (r *PostgresCategoryRepo) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	category, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE LOWER(BTRIM(slug)) = LOWER(BTRIM($1))`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("スラッグによるカテゴリの検索に失敗しました: %w", err)
	}
	return category, nil
}

// Create はカテゴリを作成し、採番したIDをcategory.IDに設定する。
func (r *PostgresCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories
		 (name, slug, description, color, is_active, display_order, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		category.Name, category.Slug, category.Description, category.Color,
		category.IsActive, category.DisplayOrder, category.CreatedAt, category.UpdatedAt,
	).Scan(&category.ID)
	if err != nil {
		return fmt.Errorf("カテゴリの作成に失敗しました: %w", err)
	}
	return nil
}

// Update は既存カテゴリを全フィールド上書きで更新する。
func (r *PostgresCategoryRepo) Update(ctx context.Context, category *model.Category) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE categories
		 SET name = $2, slug = $3, description = $4, color = $5,
		     is_active = $6, display_order = $7, updated_at = $8
		 WHERE id = $1`,
		category.ID, category.Name, category.Slug, category.Description,
		category.Color, category.IsActive, category.DisplayOrder, category.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("カテゴリの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのカテゴリを削除する。
func (r *PostgresCategoryRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("カテゴリの削除に失敗しました: %w", err)
	}
	return nil
}

// MaxDisplayOrder は表示順の最大値を返す。レコードがない場合は0。
func (r *PostgresCategoryRepo) MaxDisplayOrder(ctx context.Context) (int, error) {
	var max int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order), 0) FROM categories`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("表示順最大値の取得に失敗しました: %w", err)
	}
	return max, nil
}
