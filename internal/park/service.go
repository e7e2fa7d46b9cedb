// Package park はテーマパーク管理のドメインロジックを提供する。
package park

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/nurie/internal/model"
	"github.com/hitoshi/nurie/internal/query"
	"github.com/hitoshi/nurie/internal/repository"
	"github.com/hitoshi/nurie/internal/security"
)

// CreateInput はテーマパーク作成のリクエスト。
type CreateInput struct {
	Name         string
	Slug         string
	Description  string
	Theme        string
	IsActive     *bool
	DisplayOrder *int
}

// UpdateInput はテーマパーク部分更新のリクエスト。
// nilのフィールドは変更しない。
type UpdateInput struct {
	Name         *string
	Slug         *string
	Description  *string
	Theme        *string
	IsActive     *bool
	DisplayOrder *int
}

// Service はテーマパーク管理のサービス層。
// 検索、CRUDバリデーション、依存ページによる削除ガードを提供する。
type Service struct {
	parkRepo  repository.ParkRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(parkRepo repository.ParkRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		parkRepo:  parkRepo,
		sanitizer: sanitizer,
	}
}

// parkFields は検索エンジン用のフィールドアクセサを返す。
// グルーピングタグにはテーマを使用する。
func parkFields() query.Fields[model.ThemePark] {
	return query.Fields[model.ThemePark]{
		SearchText: func(p model.ThemePark) []string {
			return []string{p.Name, p.Description, p.Slug}
		},
		GroupTag:  func(p model.ThemePark) string { return p.Theme },
		Active:    func(p model.ThemePark) bool { return p.IsActive },
		Title:     func(p model.ThemePark) string { return p.Name },
		CreatedAt: func(p model.ThemePark) time.Time { return p.CreatedAt },
	}
}

// Search は検索仕様に従ってテーマパークを絞り込み・ソート・ページネーションして返す。
func (s *Service) Search(ctx context.Context, spec query.Spec) (*query.Result[model.ThemePark], error) {
	parks, err := s.parkRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("テーマパーク一覧の取得に失敗しました: %w", err)
	}

	result := query.Run(parks, spec, parkFields())
	return &result, nil
}

// Get は指定IDのテーマパークを返す。見つからない場合はnilを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.ThemePark, error) {
	park, err := s.parkRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("テーマパークの取得に失敗しました: %w", err)
	}
	return park, nil
}

// Create は新しいテーマパークを作成する。
// 名前とスラッグはそれぞれ独立した一意キーで、比較はトリム後の小文字同士で行う。
// スラッグ省略時は名前から生成する。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.ThemePark, error) {
	// 1. 必須フィールドの検証
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

	// 2. 一意性の検証（名前・スラッグそれぞれ独立に判定）
	if err := s.checkUniqueness(ctx, name, slug, 0); err != nil {
		return nil, err
	}

	// 3. デフォルト値の補完
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	displayOrder := 0
	if input.DisplayOrder != nil {
		displayOrder = *input.DisplayOrder
	} else {
		max, err := s.parkRepo.MaxDisplayOrder(ctx)
		if err != nil {
			return nil, fmt.Errorf("表示順の採番に失敗しました: %w", err)
		}
		displayOrder = max + 1
	}

	now := time.Now()
	park := &model.ThemePark{
		Name:         name,
		Slug:         slug,
		Description:  s.sanitizer.Sanitize(input.Description),
		Theme:        strings.TrimSpace(input.Theme),
		PageCount:    0,
		IsActive:     isActive,
		DisplayOrder: displayOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.parkRepo.Create(ctx, park); err != nil {
		return nil, fmt.Errorf("テーマパークの作成に失敗しました: %w", err)
	}

	return park, nil
}

// Update は既存テーマパークを部分更新する。
// 名前・スラッグ変更時は自分自身を除外して一意性を再検証する。
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*model.ThemePark, error) {
	park, err := s.parkRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("テーマパークの取得に失敗しました: %w", err)
	}
	if park == nil {
		return nil, model.NewNotFoundError("テーマパーク", id)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, model.NewEmptyFieldError("名前")
		}
		park.Name = name
	}
	if input.Slug != nil {
		slug := strings.TrimSpace(*input.Slug)
		if slug == "" {
			return nil, model.NewEmptyFieldError("スラッグ")
		}
		park.Slug = slug
	}

	if err := s.checkUniqueness(ctx, park.Name, park.Slug, park.ID); err != nil {
		return nil, err
	}

	if input.Description != nil {
		park.Description = s.sanitizer.Sanitize(*input.Description)
	}
	if input.Theme != nil {
		park.Theme = strings.TrimSpace(*input.Theme)
	}
	if input.IsActive != nil {
		park.IsActive = *input.IsActive
	}
	if input.DisplayOrder != nil {
		park.DisplayOrder = *input.DisplayOrder
	}

	park.UpdatedAt = time.Now()

	if err := s.parkRepo.Update(ctx, park); err != nil {
		return nil, fmt.Errorf("テーマパークの更新に失敗しました: %w", err)
	}

	return park, nil
}

// Delete は指定IDのテーマパークを削除し、削除したレコードを返す。
// 紐付きページが1件以上ある場合は削除を拒否する。
func (s *Service) Delete(ctx context.Context, id int64) (*model.ThemePark, error) {
	park, err := s.parkRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("テーマパークの取得に失敗しました: %w", err)
	}
	if park == nil {
		return nil, model.NewNotFoundError("テーマパーク", id)
	}

	if park.PageCount > 0 {
		return nil, model.NewHasDependentPagesError(park.Name, park.PageCount)
	}

	if err := s.parkRepo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("テーマパークの削除に失敗しました: %w", err)
	}

	return park, nil
}

// checkUniqueness は名前とスラッグの一意性を検証する。
// excludeIDが0以外の場合、そのIDのレコード自身との一致は重複とみなさない。
func (s *Service) checkUniqueness(ctx context.Context, name, slug string, excludeID int64) error {
	existing, err := s.parkRepo.FindByName(ctx, name)
	if err != nil {
		return fmt.Errorf("名前の重複確認に失敗しました: %w", err)
	}
	if existing != nil && existing.ID != excludeID {
		return model.NewDuplicateNameError(name)
	}

	existing, err = s.parkRepo.FindBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("スラッグの重複確認に失敗しました: %w", err)
	}
	if existing != nil && existing.ID != excludeID {
		return model.NewDuplicateSlugError(slug)
	}

	return nil
}
