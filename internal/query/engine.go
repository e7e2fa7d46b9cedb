package query

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Fields はエンジンがアイテム型から値を取り出すためのアクセサ群。
// 検索対象フィールドはアイテム型ごとに異なるため、呼び出し側が定義する。
// DifficultyRankがnilの場合、難易度ソートは作成日時の降順にフォールバックする。
type Fields[T any] struct {
	// SearchText は自由テキスト検索の対象となるフィールド値を返す。
	SearchText func(T) []string
	// GroupTag はカテゴリ/テーマ等のグルーピングタグを返す。
	GroupTag func(T) string
	// Active はアイテムの有効フラグを返す。
	Active func(T) bool
	// Title はタイトルソートに使用する文字列を返す。
	Title func(T) string
	// CreatedAt は作成日時ソートに使用する時刻を返す。
	CreatedAt func(T) time.Time
	// DifficultyRank は難易度の順序値を返す。難易度を持たない型ではnilのままでよい。
	DifficultyRank func(T) int
}

// Pagination はページネーションのメタデータ。
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	Limit       int  `json:"limit"`
}

// Result は1ページ分の検索結果とメタデータ。
type Result[T any] struct {
	Items      []T
	Pagination Pagination
}

// Run は検索仕様に従ってコレクションを絞り込み・ソート・ページネーションする。
// 入力スライスは変更しない純粋関数。Specの検証はParseSpecで済んでいる前提であり、
// Run自身はエラーを返さない。totalPagesを超えるページ指定は空スライスを返す。
//
// ソートは安定ソートを使用する。同値のアイテムは入力順を維持し、
// 同一コレクションへの同一クエリは常に同一の出力を返す。
func Run[T any](items []T, spec Spec, f Fields[T]) Result[T] {
	filtered := filter(items, spec, f)
	sortItems(filtered, spec.Sort, f)

	totalCount := len(filtered)
	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + spec.Limit - 1) / spec.Limit
	}

	start := (spec.Page - 1) * spec.Limit
	end := start + spec.Limit
	if start > totalCount {
		start = totalCount
	}
	if end > totalCount {
		end = totalCount
	}

	return Result[T]{
		Items: filtered[start:end],
		Pagination: Pagination{
			CurrentPage: spec.Page,
			TotalPages:  totalPages,
			TotalCount:  totalCount,
			HasNextPage: spec.Page < totalPages,
			HasPrevPage: spec.Page > 1,
			Limit:       spec.Limit,
		},
	}
}

// filter は全フィルタ条件を満たすアイテムを新しいスライスに集める。
func filter[T any](items []T, spec Spec, f Fields[T]) []T {
	term := strings.ToLower(strings.TrimSpace(spec.Term))
	groupActive := spec.Group != "" && spec.Group != GroupAll

	result := make([]T, 0, len(items))
	for _, item := range items {
		if term != "" && !matchesTerm(item, term, f) {
			continue
		}
		// グルーピングタグは保存値との完全一致（大文字小文字を区別する）
		if groupActive && f.GroupTag(item) != spec.Group {
			continue
		}
		if spec.Status != "" {
			wantActive := spec.Status == "active"
			if f.Active(item) != wantActive {
				continue
			}
		}
		result = append(result, item)
	}
	return result
}

// matchesTerm はいずれかの検索対象フィールドがtermを部分文字列として含むかを返す。
// 比較は小文字化した上で行う。
func matchesTerm[T any](item T, term string, f Fields[T]) bool {
	for _, field := range f.SearchText(item) {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// sortItems はソートキーに従ってスライスをin-placeで安定ソートする。
func sortItems[T any](items []T, key SortKey, f Fields[T]) {
	switch key {
	case SortOldest:
		sort.SliceStable(items, func(i, j int) bool {
			return f.CreatedAt(items[i]).Before(f.CreatedAt(items[j]))
		})
	case SortTitle:
		// タイトルはロケール対応の照合順序で比較する
		c := collate.New(language.Japanese)
		sort.SliceStable(items, func(i, j int) bool {
			return c.CompareString(f.Title(items[i]), f.Title(items[j])) < 0
		})
	case SortDifficulty:
		if f.DifficultyRank == nil {
			sortNewest(items, f)
			return
		}
		sort.SliceStable(items, func(i, j int) bool {
			return f.DifficultyRank(items[i]) < f.DifficultyRank(items[j])
		})
	default:
		sortNewest(items, f)
	}
}

// sortNewest は作成日時の降順ソート（デフォルト）。
func sortNewest[T any](items []T, f Fields[T]) {
	sort.SliceStable(items, func(i, j int) bool {
		return f.CreatedAt(items[i]).After(f.CreatedAt(items[j]))
	})
}
