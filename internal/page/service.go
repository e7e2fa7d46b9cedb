// Package page はぬりえページ管理のドメインロジックを提供する。
package page

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/nurie/internal/metrics"
	"github.com/hitoshi/nurie/internal/model"
	"github.com/hitoshi/nurie/internal/query"
	"github.com/hitoshi/nurie/internal/repository"
	"github.com/hitoshi/nurie/internal/security"
)

// CreateInput はぬりえページ作成のリクエスト。
type CreateInput struct {
	Title        string
	Slug         string
	Description  string
	ImageURL     string
	Category     string
	ParkSlug     string
	Difficulty   string
	IsActive     *bool
	DisplayOrder *int
}

// UpdateInput はぬりえページ部分更新のリクエスト。
// nilのフィールドは変更しない。
type UpdateInput struct {
	Title        *string
	Slug         *string
	Description  *string
	ImageURL     *string
	Category     *string
	ParkSlug     *string
	Difficulty   *string
	IsActive     *bool
	DisplayOrder *int
}

// Service はぬりえページ管理のサービス層。
// カタログ検索、CRUDバリデーション、いいね・ダウンロード集計、
// テーマパークの紐付きページ数の整合維持を提供する。
type Service struct {
	pageRepo  repository.PageRepository
	parkRepo  repository.ParkRepository
	sanitizer security.ContentSanitizerService
	collector metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorはnilでもよく、その場合メトリクスは記録しない。
func NewService(
	pageRepo repository.PageRepository,
	parkRepo repository.ParkRepository,
	sanitizer security.ContentSanitizerService,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		pageRepo:  pageRepo,
		parkRepo:  parkRepo,
		sanitizer: sanitizer,
		collector: collector,
	}
}

// pageFields は検索エンジン用のフィールドアクセサを返す。
// グルーピングタグにはカテゴリを使用する。
func pageFields() query.Fields[model.ColoringPage] {
	return query.Fields[model.ColoringPage]{
		SearchText: func(p model.ColoringPage) []string {
			return []string{p.Title, p.Description, p.Slug}
		},
		GroupTag:  func(p model.ColoringPage) string { return p.Category },
		Active:    func(p model.ColoringPage) bool { return p.IsActive },
		Title:     func(p model.ColoringPage) string { return p.Title },
		CreatedAt: func(p model.ColoringPage) time.Time { return p.CreatedAt },
		DifficultyRank: func(p model.ColoringPage) int {
			return p.Difficulty.Rank()
		},
	}
}

// Search は検索仕様に従ってぬりえページを絞り込み・ソート・ページネーションして返す。
func (s *Service) Search(ctx context.Context, spec query.Spec) (*query.Result[model.ColoringPage], error) {
	start := time.Now()

	pages, err := s.pageRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ページ一覧の取得に失敗しました: %w", err)
	}

	result := query.Run(pages, spec, pageFields())

	if s.collector != nil {
		s.collector.RecordSearchLatency(time.Since(start))
	}

	return &result, nil
}

// Get は指定IDのページを返す。見つからない場合はnilを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.ColoringPage, error) {
	page, err := s.pageRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ページの取得に失敗しました: %w", err)
	}
	return page, nil
}

// Create は新しいぬりえページを作成する。
// スラッグが一意キーで、比較はトリム後の小文字同士で行う。
// テーマパークに紐付く場合は紐付きページ数を加算する。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.ColoringPage, error) {
	// 1. 必須フィールドの検証
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, model.NewEmptyFieldError("タイトル")
	}

	imageURL := strings.TrimSpace(input.ImageURL)
	if imageURL == "" {
		return nil, model.NewEmptyFieldError("画像URL")
	}
	if err := validateImageURL(imageURL); err != nil {
		return nil, err
	}

	// 2. 難易度の検証（省略時はeasy）
	difficulty := model.Difficulty(strings.TrimSpace(input.Difficulty))
	if difficulty == "" {
		difficulty = model.DifficultyEasy
	}
	if !difficulty.IsValid() {
		return nil, model.NewInvalidDifficultyError(string(difficulty))
	}

	// 3. スラッグの生成と一意性の検証
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = model.Slugify(title)
	}
	if slug == "" {
		return nil, model.NewEmptyFieldError("スラッグ")
	}

	existing, err := s.pageRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("スラッグの重複確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateSlugError(slug)
	}

	// 4. デフォルト値の補完
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	displayOrder := 0
	if input.DisplayOrder != nil {
		displayOrder = *input.DisplayOrder
	} else {
		max, err := s.pageRepo.MaxDisplayOrder(ctx)
		if err != nil {
			return nil, fmt.Errorf("表示順の採番に失敗しました: %w", err)
		}
		displayOrder = max + 1
	}

	now := time.Now()
	page := &model.ColoringPage{
		Title:        title,
		Slug:         slug,
		Description:  s.sanitizer.Sanitize(input.Description),
		ImageURL:     imageURL,
		Category:     strings.TrimSpace(input.Category),
		ParkSlug:     strings.TrimSpace(input.ParkSlug),
		Difficulty:   difficulty,
		IsActive:     isActive,
		DisplayOrder: displayOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.pageRepo.Create(ctx, page); err != nil {
		return nil, fmt.Errorf("ページの作成に失敗しました: %w", err)
	}

	// 5. テーマパークの紐付きページ数を加算
	if page.ParkSlug != "" {
		if err := s.parkRepo.AdjustPageCount(ctx, page.ParkSlug, 1); err != nil {
			return nil, fmt.Errorf("紐付きページ数の更新に失敗しました: %w", err)
		}
	}

	return page, nil
}

// Update は既存ページを部分更新する。
// テーマパークの紐付きが変わる場合は両パークのページ数を付け替える。
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*model.ColoringPage, error) {
	page, err := s.pageRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ページの取得に失敗しました: %w", err)
	}
	if page == nil {
		return nil, model.NewNotFoundError("ページ", id)
	}

	prevParkSlug := page.ParkSlug

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, model.NewEmptyFieldError("タイトル")
		}
		page.Title = title
	}
	if input.Slug != nil {
		slug := strings.TrimSpace(*input.Slug)
		if slug == "" {
			return nil, model.NewEmptyFieldError("スラッグ")
		}
		existing, err := s.pageRepo.FindBySlug(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("スラッグの重複確認に失敗しました: %w", err)
		}
		if existing != nil && existing.ID != page.ID {
			return nil, model.NewDuplicateSlugError(slug)
		}
		page.Slug = slug
	}
	if input.ImageURL != nil {
		imageURL := strings.TrimSpace(*input.ImageURL)
		if imageURL == "" {
			return nil, model.NewEmptyFieldError("画像URL")
		}
		if err := validateImageURL(imageURL); err != nil {
			return nil, err
		}
		page.ImageURL = imageURL
	}
	if input.Difficulty != nil {
		difficulty := model.Difficulty(strings.TrimSpace(*input.Difficulty))
		if !difficulty.IsValid() {
			return nil, model.NewInvalidDifficultyError(string(difficulty))
		}
		page.Difficulty = difficulty
	}
	if input.Description != nil {
		page.Description = s.sanitizer.Sanitize(*input.Description)
	}
	if input.Category != nil {
		page.Category = strings.TrimSpace(*input.Category)
	}
	if input.ParkSlug != nil {
		page.ParkSlug = strings.TrimSpace(*input.ParkSlug)
	}
	if input.IsActive != nil {
		page.IsActive = *input.IsActive
	}
	if input.DisplayOrder != nil {
		page.DisplayOrder = *input.DisplayOrder
	}

	page.UpdatedAt = time.Now()

	if err := s.pageRepo.Update(ctx, page); err != nil {
		return nil, fmt.Errorf("ページの更新に失敗しました: %w", err)
	}

	// テーマパークの紐付き変更時はページ数を付け替える
	if page.ParkSlug != prevParkSlug {
		if prevParkSlug != "" {
			if err := s.parkRepo.AdjustPageCount(ctx, prevParkSlug, -1); err != nil {
				return nil, fmt.Errorf("紐付きページ数の更新に失敗しました: %w", err)
			}
		}
		if page.ParkSlug != "" {
			if err := s.parkRepo.AdjustPageCount(ctx, page.ParkSlug, 1); err != nil {
				return nil, fmt.Errorf("紐付きページ数の更新に失敗しました: %w", err)
			}
		}
	}

	return page, nil
}

// Delete は指定IDのページを削除し、削除したレコードを返す。
// テーマパークに紐付いていた場合はページ数を減算する。
func (s *Service) Delete(ctx context.Context, id int64) (*model.ColoringPage, error) {
	page, err := s.pageRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ページの取得に失敗しました: %w", err)
	}
	if page == nil {
		return nil, model.NewNotFoundError("ページ", id)
	}

	if err := s.pageRepo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("ページの削除に失敗しました: %w", err)
	}

	if page.ParkSlug != "" {
		if err := s.parkRepo.AdjustPageCount(ctx, page.ParkSlug, -1); err != nil {
			return nil, fmt.Errorf("紐付きページ数の更新に失敗しました: %w", err)
		}
	}

	return page, nil
}

// Like は指定IDのページのいいね数を1増やす。
func (s *Service) Like(ctx context.Context, id int64) error {
	return s.addLikes(ctx, id, 1)
}

// Unlike は指定IDのページのいいね数を1減らす。結果は0未満にならない。
func (s *Service) Unlike(ctx context.Context, id int64) error {
	return s.addLikes(ctx, id, -1)
}

func (s *Service) addLikes(ctx context.Context, id int64, delta int) error {
	page, err := s.pageRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("ページの取得に失敗しました: %w", err)
	}
	if page == nil {
		return model.NewNotFoundError("ページ", id)
	}

	if err := s.pageRepo.AddLikes(ctx, id, delta); err != nil {
		return fmt.Errorf("いいね数の更新に失敗しました: %w", err)
	}
	return nil
}

// Download は指定IDのページのダウンロード数を1増やす。
func (s *Service) Download(ctx context.Context, id int64) error {
	page, err := s.pageRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("ページの取得に失敗しました: %w", err)
	}
	if page == nil {
		return model.NewNotFoundError("ページ", id)
	}

	if err := s.pageRepo.IncrementDownloads(ctx, id); err != nil {
		return fmt.Errorf("ダウンロード数の更新に失敗しました: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordPageDownload()
	}
	return nil
}

// validateImageURL は画像URLがhttpまたはhttpsの絶対URLであることを検証する。
func validateImageURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return model.NewInvalidURLError("URL形式が正しくありません")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return model.NewInvalidURLError("http:// または https:// で始まる必要があります")
	}
	if u.Host == "" {
		return model.NewInvalidURLError("ホストが指定されていません")
	}
	return nil
}
