// Package category はカテゴリ管理のドメインロジックを提供する。
package category

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hitoshi/nurie/internal/model"
	"github.com/hitoshi/nurie/internal/query"
	"github.com/hitoshi/nurie/internal/repository"
	"github.com/hitoshi/nurie/internal/security"
)

// CreateInput はカテゴリ作成のリクエスト。
type CreateInput struct {
	Name         string
	Slug         string
	Description  string
	Color        string
	IsActive     *bool
	DisplayOrder *int
}

// UpdateInput はカテゴリ部分更新のリクエスト。
// nilのフィールドは変更しない。
type UpdateInput struct {
	Name         *string
	Slug         *string
	Description  *string
	Color        *string
	IsActive     *bool
	DisplayOrder *int
}

// Service はカテゴリ管理のサービス層。
type Service struct {
	categoryRepo repository.CategoryRepository
	sanitizer    security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(categoryRepo repository.CategoryRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		categoryRepo: categoryRepo,
		sanitizer:    sanitizer,
	}
}

// categoryFields は検索エンジン用のフィールドアクセサを返す。
func categoryFields() query.Fields[model.Category] {
	return query.Fields[model.Category]{
		SearchText: func(c model.Category) []string {
			return []string{c.Name, c.Description, c.Slug}
		},
		GroupTag:  func(c model.Category) string { return c.Slug },
		Active:    func(c model.Category) bool { return c.IsActive },
		Title:     func(c model.Category) string { return c.Name },
		CreatedAt: func(c model.Category) time.Time { return c.CreatedAt },
	}
}

// Search は検索仕様に従ってカテゴリを絞り込み・ソート・ページネーションして返す。
func (s *Service) Search(ctx context.Context, spec query.Spec) (*query.Result[model.Category], error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗しました: %w", err)
	}

	result := query.Run(categories, spec, categoryFields())
	return &result, nil
}

// ListActive は有効なカテゴリを表示順の昇順で全件返す。
// 公開サイトのナビゲーション用で、ページネーションは行わない。
func (s *Service) ListActive(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗しました: %w", err)
	}

	active := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if c.IsActive {
			active = append(active, c)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].DisplayOrder < active[j].DisplayOrder
	})

	return active, nil
}

// Get は指定IDのカテゴリを返す。見つからない場合はnilを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	return category, nil
}

// Create は新しいカテゴリを作成する。
// 名前とスラッグはそれぞれ独立した一意キーで、比較はトリム後の小文字同士で行う。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, model.NewEmptyFieldError("名前")
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = model.Slugify(name)
	}
	if slug == "" {
		return nil, model.NewEmptyFieldError("スラッグ")
	}

	if err := s.checkUniqueness(ctx, name, slug, 0); err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	displayOrder := 0
	if input.DisplayOrder != nil {
		displayOrder = *input.DisplayOrder
	} else {
		max, err := s.categoryRepo.MaxDisplayOrder(ctx)
		if err != nil {
			return nil, fmt.Errorf("表示順の採番に失敗しました: %w", err)
		}
		displayOrder = max + 1
	}

	now := time.Now()
	category := &model.Category{
		Name:         name,
		Slug:         slug,
		Description:  s.sanitizer.Sanitize(input.Description),
		Color:        strings.TrimSpace(input.Color),
		IsActive:     isActive,
		DisplayOrder: displayOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("カテゴリの作成に失敗しました: %w", err)
	}

	return category, nil
}

// Update は既存カテゴリを部分更新する。
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	if category == nil {
		return nil, model.NewNotFoundError("カテゴリ", id)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, model.NewEmptyFieldError("名前")
		}
		category.Name = name
	}
	if input.Slug != nil {
		slug := strings.TrimSpace(*input.Slug)
		if slug == "" {
			return nil, model.NewEmptyFieldError("スラッグ")
		}
		category.Slug = slug
	}

	if err := s.checkUniqueness(ctx, category.Name, category.Slug, category.ID); err != nil {
		return nil, err
	}

	if input.Description != nil {
		category.Description = s.sanitizer.Sanitize(*input.Description)
	}
	if input.Color != nil {
		category.Color = strings.TrimSpace(*input.Color)
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if input.DisplayOrder != nil {
		category.DisplayOrder = *input.DisplayOrder
	}

	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("カテゴリの更新に失敗しました: %w", err)
	}

	return category, nil
}

// Delete は指定IDのカテゴリを削除し、削除したレコードを返す。
// カテゴリはページとスラッグ文字列で疎結合のため、削除ガードは行わない。
func (s *Service) Delete(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	if category == nil {
		return nil, model.NewNotFoundError("カテゴリ", id)
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("カテゴリの削除に失敗しました: %w", err)
	}

	return category, nil
}

// checkUniqueness は名前とスラッグの一意性を検証する。
// excludeIDが0以外の場合、そのIDのレコード自身との一致は重複とみなさない。
func (s *Service) checkUniqueness(ctx context.Context, name, slug string, excludeID int64) error {
	existing, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil {
		return fmt.Errorf("名前の重複確認に失敗しました: %w", err)
	}
	if existing != nil && existing.ID != excludeID {
		return model.NewDuplicateNameError(name)
	}

	existing, err = s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("スラッグの重複確認に失敗しました: %w", err)
	}
	if existing != nil && existing.ID != excludeID {
		return model.NewDuplicateSlugError(slug)
	}

	return nil
}
