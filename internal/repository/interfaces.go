// Package repository はデータ永続化のインターフェースを定義する。
//
// 検索エンジン（internal/query）とCRUDバリデーション（各ドメインサービス）を
// ストレージ非依存に保つため、コレクションの列挙と単純なCRUD操作のみを公開する。
// 実装はPostgreSQL版（本番）とインメモリ版（開発・テスト）の2種類。
package repository

import (
	"context"

	"github.com/hitoshi/nurie/internal/model"
)

// PageRepository はぬりえページの永続化インターフェース。
type PageRepository interface {
	// List は全ページを返す。順序は保証しない。
	List(ctx context.Context) ([]model.ColoringPage, error)

	// FindByID は指定IDのページを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.ColoringPage, error)

	// FindBySlug はスラッグでページを検索する。比較はトリム後の小文字同士で行う。
	// 見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.ColoringPage, error)

	// Create はページを作成し、ストアが採番したIDをpage.IDに設定する。
	// 採番済みIDは削除後も再利用されない。
	Create(ctx context.Context, page *model.ColoringPage) error

	// Update は既存ページを全フィールド上書きで更新する。
	// 部分更新のマージはサービス層の責務。
	Update(ctx context.Context, page *model.ColoringPage) error

	// Delete は指定IDのページを削除する。
	Delete(ctx context.Context, id int64) error

	// MaxDisplayOrder は表示順の最大値を返す。レコードがない場合は0。
	MaxDisplayOrder(ctx context.Context) (int, error)

	// AddLikes はいいね数をdeltaだけ増減する。結果は0未満にならない。
	AddLikes(ctx context.Context, id int64, delta int) error

	// IncrementDownloads はダウンロード数を1増やす。
	IncrementDownloads(ctx context.Context, id int64) error
}

// ParkRepository はテーマパークの永続化インターフェース。
type ParkRepository interface {
	// List は全テーマパークを返す。順序は保証しない。
	List(ctx context.Context) ([]model.ThemePark, error)

	// FindByID は指定IDのテーマパークを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.ThemePark, error)

	// FindByName は名前でテーマパークを検索する。比較はトリム後の小文字同士で行う。
	// 見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.ThemePark, error)

	// FindBySlug はスラッグでテーマパークを検索する。比較はトリム後の小文字同士で行う。
	// 見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.ThemePark, error)

	// Create はテーマパークを作成し、採番したIDをpark.IDに設定する。
	Create(ctx context.Context, park *model.ThemePark) error

	// Update は既存テーマパークを全フィールド上書きで更新する。
	Update(ctx context.Context, park *model.ThemePark) error

	// Delete は指定IDのテーマパークを削除する。
	// PageCountの事前チェックはサービス層の責務。
	Delete(ctx context.Context, id int64) error

	// MaxDisplayOrder は表示順の最大値を返す。レコードがない場合は0。
	MaxDisplayOrder(ctx context.Context) (int, error)

	// AdjustPageCount は指定スラッグのテーマパークの紐付きページ数をdeltaだけ増減する。
	// 結果は0未満にならない。該当スラッグがない場合は何もしない。
	AdjustPageCount(ctx context.Context, slug string, delta int) error
}

// KeywordRepository はプロモーションキーワードの永続化インターフェース。
type KeywordRepository interface {
	// List は全キーワードを返す。順序は保証しない。
	List(ctx context.Context) ([]model.PromoKeyword, error)

	// FindByID は指定IDのキーワードを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.PromoKeyword, error)

	// FindByKeyword はキーワード文字列で検索する。比較はトリム後の小文字同士で行う。
	// 見つからない場合はnilを返す。
	FindByKeyword(ctx context.Context, keyword string) (*model.PromoKeyword, error)

	// Create はキーワードを作成し、採番したIDをkeyword.IDに設定する。
	Create(ctx context.Context, keyword *model.PromoKeyword) error

	// Update は既存キーワードを全フィールド上書きで更新する。
	Update(ctx context.Context, keyword *model.PromoKeyword) error

	// Delete は指定IDのキーワードを削除する。
	Delete(ctx context.Context, id int64) error

	// MaxDisplayOrder は表示順の最大値を返す。レコードがない場合は0。
	MaxDisplayOrder(ctx context.Context) (int, error)

	// IncrementClickCount は指定IDのクリック数を1増やす。
	IncrementClickCount(ctx context.Context, id int64) error
}

// CategoryRepository はカテゴリの永続化インターフェース。
type CategoryRepository interface {
	// List は全カテゴリを返す。順序は保証しない。
	List(ctx context.Context) ([]model.Category, error)

	// FindByID は指定IDのカテゴリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Category, error)

	// FindByName は名前でカテゴリを検索する。比較はトリム後の小文字同士で行う。
	// 見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Category, error)

	// FindBySlug はスラッグでカテゴリを検索する。比較はトリム後の小文字同士で行う。
	// 見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)

	// Create はカテゴリを作成し、採番したIDをcategory.IDに設定する。
	Create(ctx context.Context, category *model.Category) error

	// Update は既存カテゴリを全フィールド上書きで更新する。
	Update(ctx context.Context, category *model.Category) error

	// Delete は指定IDのカテゴリを削除する。
	Delete(ctx context.Context, id int64) error

	// MaxDisplayOrder は表示順の最大値を返す。レコードがない場合は0。
	MaxDisplayOrder(ctx context.Context) (int, error)
}

// SessionRepository は管理者セッションの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.AdminSession) error

	// FindByToken は指定トークンのセッションを取得する。
	// 見つからない場合と期限切れの場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.AdminSession, error)

	// DeleteByToken は指定トークンのセッションを削除する。
	DeleteByToken(ctx context.Context, token string) error

	// DeleteExpired は期限切れセッションを全て削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
