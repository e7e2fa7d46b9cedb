// Package keyword はプロモーションキーワード管理のドメインロジックを提供する。
package keyword

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hitoshi/nurie/internal/metrics"
	"github.com/hitoshi/nurie/internal/model"
	"github.com/hitoshi/nurie/internal/query"
	"github.com/hitoshi/nurie/internal/repository"
)

// CreateInput はキーワード作成のリクエスト。
type CreateInput struct {
	Keyword      string
	IsActive     *bool
	DisplayOrder *int
	StartDate    *time.Time
	EndDate      *time.Time
}

// UpdateInput はキーワード部分更新のリクエスト。
// nilのフィールドは変更しない。日付はClearフラグで明示的にnullへ戻せる。
type UpdateInput struct {
	Keyword        *string
	IsActive       *bool
	DisplayOrder   *int
	StartDate      *time.Time
	EndDate        *time.Time
	ClearStartDate bool
	ClearEndDate   bool
}

// Service はプロモーションキーワード管理のサービス層。
// 公開期間による絞り込み、クリック集計、CRUDバリデーションを提供する。
type Service struct {
	keywordRepo repository.KeywordRepository
	collector   metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorはnilでもよく、その場合メトリクスは記録しない。
func NewService(keywordRepo repository.KeywordRepository, collector metrics.MetricsCollector) *Service {
	return &Service{
		keywordRepo: keywordRepo,
		collector:   collector,
	}
}

// keywordFields は検索エンジン用のフィールドアクセサを返す。
func keywordFields() query.Fields[model.PromoKeyword] {
	return query.Fields[model.PromoKeyword]{
		SearchText: func(k model.PromoKeyword) []string {
			return []string{k.Keyword}
		},
		GroupTag:  func(k model.PromoKeyword) string { return "" },
		Active:    func(k model.PromoKeyword) bool { return k.IsActive },
		Title:     func(k model.PromoKeyword) string { return k.Keyword },
		CreatedAt: func(k model.PromoKeyword) time.Time { return k.CreatedAt },
	}
}

// Search は検索仕様に従ってキーワードを絞り込み・ソート・ページネーションして返す。
// 管理画面の一覧用で、公開期間による絞り込みは行わない。
func (s *Service) Search(ctx context.Context, spec query.Spec) (*query.Result[model.PromoKeyword], error) {
	keywords, err := s.keywordRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("キーワード一覧の取得に失敗しました: %w", err)
	}

	result := query.Run(keywords, spec, keywordFields())
	return &result, nil
}

// ListActive は指定日に公開対象のキーワードを表示順の昇順で全件返す。
// 公開サイトのトップページ用で、ページネーションは行わない。
func (s *Service) ListActive(ctx context.Context, day time.Time) ([]model.PromoKeyword, error) {
	keywords, err := s.keywordRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("キーワード一覧の取得に失敗しました: %w", err)
	}

	active := make([]model.PromoKeyword, 0, len(keywords))
	for _, k := range keywords {
		if k.ActiveOn(day) {
			active = append(active, k)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].DisplayOrder < active[j].DisplayOrder
	})

	return active, nil
}

// Click はキーワードのクリックを記録する。
// トリム後の小文字同士で完全一致し、かつ現在公開対象のキーワードのみ
// クリック数を加算する。該当がない場合は何もせず正常終了する。
func (s *Service) Click(ctx context.Context, raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return model.NewEmptyFieldError("キーワード")
	}

	keyword, err := s.keywordRepo.FindByKeyword(ctx, trimmed)
	if err != nil {
		return fmt.Errorf("キーワードの検索に失敗しました: %w", err)
	}
	if keyword == nil || !keyword.ActiveOn(time.Now()) {
		return nil
	}

	if err := s.keywordRepo.IncrementClickCount(ctx, keyword.ID); err != nil {
		return fmt.Errorf("クリック数の更新に失敗しました: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordKeywordClick(keyword.Keyword)
	}

	return nil
}

// Get は指定IDのキーワードを返す。見つからない場合はnilを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.PromoKeyword, error) {
	keyword, err := s.keywordRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("キーワードの取得に失敗しました: %w", err)
	}
	return keyword, nil
}

// Create は新しいキーワードを作成する。
// キーワード文字列が一意キーで、比較はトリム後の小文字同士で行う。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.PromoKeyword, error) {
	text := strings.TrimSpace(input.Keyword)
	if text == "" {
		return nil, model.NewEmptyFieldError("キーワード")
	}

	if err := validateDateRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	existing, err := s.keywordRepo.FindByKeyword(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("キーワードの重複確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateNameError(text)
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	displayOrder := 0
	if input.DisplayOrder != nil {
		displayOrder = *input.DisplayOrder
	} else {
		max, err := s.keywordRepo.MaxDisplayOrder(ctx)
		if err != nil {
			return nil, fmt.Errorf("表示順の採番に失敗しました: %w", err)
		}
		displayOrder = max + 1
	}

	now := time.Now()
	keyword := &model.PromoKeyword{
		Keyword:      text,
		ClickCount:   0,
		IsActive:     isActive,
		DisplayOrder: displayOrder,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.keywordRepo.Create(ctx, keyword); err != nil {
		return nil, fmt.Errorf("キーワードの作成に失敗しました: %w", err)
	}

	return keyword, nil
}

// Update は既存キーワードを部分更新する。
// キーワード変更時は自分自身を除外して一意性を再検証する。
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*model.PromoKeyword, error) {
	keyword, err := s.keywordRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("キーワードの取得に失敗しました: %w", err)
	}
	if keyword == nil {
		return nil, model.NewNotFoundError("キーワード", id)
	}

	if input.Keyword != nil {
		text := strings.TrimSpace(*input.Keyword)
		if text == "" {
			return nil, model.NewEmptyFieldError("キーワード")
		}

		existing, err := s.keywordRepo.FindByKeyword(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("キーワードの重複確認に失敗しました: %w", err)
		}
		if existing != nil && existing.ID != keyword.ID {
			return nil, model.NewDuplicateNameError(text)
		}
		keyword.Keyword = text
	}

	if input.ClearStartDate {
		keyword.StartDate = nil
	} else if input.StartDate != nil {
		keyword.StartDate = input.StartDate
	}
	if input.ClearEndDate {
		keyword.EndDate = nil
	} else if input.EndDate != nil {
		keyword.EndDate = input.EndDate
	}
	if err := validateDateRange(keyword.StartDate, keyword.EndDate); err != nil {
		return nil, err
	}

	if input.IsActive != nil {
		keyword.IsActive = *input.IsActive
	}
	if input.DisplayOrder != nil {
		keyword.DisplayOrder = *input.DisplayOrder
	}

	keyword.UpdatedAt = time.Now()

	if err := s.keywordRepo.Update(ctx, keyword); err != nil {
		return nil, fmt.Errorf("キーワードの更新に失敗しました: %w", err)
	}

	return keyword, nil
}

// Delete は指定IDのキーワードを削除し、削除したレコードを返す。
func (s *Service) Delete(ctx context.Context, id int64) (*model.PromoKeyword, error) {
	keyword, err := s.keywordRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("キーワードの取得に失敗しました: %w", err)
	}
	if keyword == nil {
		return nil, model.NewNotFoundError("キーワード", id)
	}

	if err := s.keywordRepo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("キーワードの削除に失敗しました: %w", err)
	}

	return keyword, nil
}

// validateDateRange は公開期間の開始日が終了日以前であることを検証する。
func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return model.NewInvalidRequestError("開始日は終了日以前の日付を指定してください")
	}
	return nil
}
