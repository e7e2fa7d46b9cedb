// Package query はカタログ検索の絞り込み・ソート・ページネーションを提供する。
// 全ての一覧系エンドポイントが同一の契約を共有するため、
// エンドポイントごとの再実装を行わず本パッケージに集約する。
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hitoshi/nurie/internal/model"
)

// SortKey は一覧のソート順を表す。
type SortKey string

const (
	// SortNewest は作成日時の降順（デフォルト）。
	SortNewest SortKey = "newest"
	// SortOldest は作成日時の昇順。
	SortOldest SortKey = "oldest"
	// SortTitle はタイトルの昇順（ロケール対応の照合順序）。
	SortTitle SortKey = "title"
	// SortDifficulty は難易度の昇順（easy < medium < hard）。
	SortDifficulty SortKey = "difficulty"
)

// GroupAll はグルーピングフィルタを無効化する予約値。
const GroupAll = "all"

// ページネーションの境界値。
const (
	// MaxLimit は1ページあたりの最大取得件数。
	MaxLimit = 50
	// MinLimit は1ページあたりの最小取得件数。
	MinLimit = 1
)

// Spec は1回の検索リクエストを表す検索仕様。
// 全フィールドがゼロ値の場合は「絞り込みなし・デフォルトソート・1ページ目」を意味する。
type Spec struct {
	Term   string  // 自由テキスト検索。空白のみは「絞り込みなし」
	Group  string  // カテゴリ/テーマの完全一致フィルタ。""または"all"は無効
	Status string  // "active" | "inactive" | ""（無効）
	Sort   SortKey // 未知の値はSortNewestとして扱われる
	Page   int     // 1始まり
	Limit  int     // 1〜50
}

// ParseSpec はクエリ文字列から検索仕様を組み立て、境界値を検証する。
// groupParamにはエンドポイントごとのグルーピングパラメータ名（"category"や"theme"）を指定する。
// page/limitの範囲外はバリデーションエラーとして呼び出し元に返し、エンジンには渡さない。
func ParseSpec(values url.Values, groupParam string, defaultLimit int) (Spec, *model.APIError) {
	spec := Spec{
		Term:   strings.TrimSpace(values.Get("q")),
		Status: normalizeStatus(values.Get("status")),
		Sort:   NormalizeSort(values.Get("sort")),
		Page:   1,
		Limit:  defaultLimit,
	}

	if groupParam != "" {
		spec.Group = values.Get(groupParam)
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Spec{}, model.NewInvalidPaginationError(fmt.Sprintf("pageが数値ではありません: %s", raw))
		}
		spec.Page = page
	}
	if spec.Page < 1 {
		return Spec{}, model.NewInvalidPaginationError(fmt.Sprintf("pageは1以上を指定してください: %d", spec.Page))
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return Spec{}, model.NewInvalidPaginationError(fmt.Sprintf("limitが数値ではありません: %s", raw))
		}
		spec.Limit = limit
	}
	if spec.Limit < MinLimit || spec.Limit > MaxLimit {
		return Spec{}, model.NewInvalidPaginationError(fmt.Sprintf("limitは%d〜%dの範囲で指定してください: %d", MinLimit, MaxLimit, spec.Limit))
	}

	return spec, nil
}

// NormalizeSort はソートキー文字列を正規化する。未知の値はSortNewestに丸める。
func NormalizeSort(raw string) SortKey {
	switch SortKey(raw) {
	case SortNewest, SortOldest, SortTitle, SortDifficulty:
		return SortKey(raw)
	default:
		return SortNewest
	}
}

// normalizeStatus はステータスフィルタを正規化する。
// "active"/"inactive"以外は「絞り込みなし」に丸める。
func normalizeStatus(raw string) string {
	switch raw {
	case "active", "inactive":
		return raw
	default:
		return ""
	}
}
