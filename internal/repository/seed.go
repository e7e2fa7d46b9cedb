package repository

import (
	"context"
	"time"

	"github.com/hitoshi/nurie/internal/model"
)

// MemoryStores はインメモリ実装の全リポジトリをまとめた構造体。
// DATABASE_URL未設定での起動とテストで使用する。
type MemoryStores struct {
	Pages      *MemoryPageRepo
	Parks      *MemoryParkRepo
	Keywords   *MemoryKeywordRepo
	Categories *MemoryCategoryRepo
	Sessions   *MemorySessionRepo
}

// NewMemoryStores は空のインメモリリポジトリ一式を生成する。
func NewMemoryStores() *MemoryStores {
	return &MemoryStores{
		Pages:      NewMemoryPageRepo(),
		Parks:      NewMemoryParkRepo(),
		Keywords:   NewMemoryKeywordRepo(),
		Categories: NewMemoryCategoryRepo(),
		Sessions:   NewMemorySessionRepo(),
	}
}

// NewSeededMemoryStores はサンプルカタログを投入済みのインメモリリポジトリ一式を生成する。
// データベースなしでサービスを動かすための開発用シードで、本番では使用しない。
func NewSeededMemoryStores() *MemoryStores {
	stores := NewMemoryStores()
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	categories := []model.Category{
		{Name: "Animals", Slug: "animals", Description: "動物のぬりえ", Color: "#ff9800", IsActive: true, DisplayOrder: 1},
		{Name: "Vehicles", Slug: "vehicles", Description: "乗り物のぬりえ", Color: "#2196f3", IsActive: true, DisplayOrder: 2},
		{Name: "Princess", Slug: "princess", Description: "プリンセスのぬりえ", Color: "#e91e63", IsActive: true, DisplayOrder: 3},
	}
	for i := range categories {
		categories[i].CreatedAt = base.AddDate(0, 0, i)
		categories[i].UpdatedAt = categories[i].CreatedAt
		_ = stores.Categories.Create(ctx, &categories[i])
	}

	parks := []model.ThemePark{
		{Name: "Disney World", Slug: "disney-world", Theme: "fantasy", PageCount: 2, IsActive: true, DisplayOrder: 1},
		{Name: "Universal Studios", Slug: "universal-studios", Theme: "adventure", PageCount: 1, IsActive: true, DisplayOrder: 2},
	}
	for i := range parks {
		parks[i].CreatedAt = base.AddDate(0, 0, i)
		parks[i].UpdatedAt = parks[i].CreatedAt
		_ = stores.Parks.Create(ctx, &parks[i])
	}

	pages := []model.ColoringPage{
		{Title: "Mickey Mouse", Slug: "mickey-mouse", Category: "animals", ParkSlug: "disney-world", Difficulty: model.DifficultyEasy, IsActive: true, DisplayOrder: 1, Likes: 42, Downloads: 120},
		{Title: "Cinderella Castle", Slug: "cinderella-castle", Category: "princess", ParkSlug: "disney-world", Difficulty: model.DifficultyHard, IsActive: true, DisplayOrder: 2, Likes: 18, Downloads: 64},
		{Title: "Jurassic Park T-Rex", Slug: "jurassic-park-t-rex", Category: "animals", ParkSlug: "universal-studios", Difficulty: model.DifficultyMedium, IsActive: true, DisplayOrder: 3, Likes: 57, Downloads: 203},
		{Title: "Race Car", Slug: "race-car", Category: "vehicles", Difficulty: model.DifficultyEasy, IsActive: true, DisplayOrder: 4},
		{Title: "Old Steam Train", Slug: "old-steam-train", Category: "vehicles", Difficulty: model.DifficultyMedium, IsActive: false, DisplayOrder: 5},
	}
	for i := range pages {
		pages[i].CreatedAt = base.AddDate(0, 0, i)
		pages[i].UpdatedAt = pages[i].CreatedAt
		_ = stores.Pages.Create(ctx, &pages[i])
	}

	farFuture := time.Date(2027, 12, 31, 0, 0, 0, 0, time.UTC)
	keywords := []model.PromoKeyword{
		{Keyword: "きょうりゅう", IsActive: true, DisplayOrder: 1, ClickCount: 310},
		{Keyword: "プリンセス", IsActive: true, DisplayOrder: 2, ClickCount: 198, EndDate: &farFuture},
		{Keyword: "くるま", IsActive: false, DisplayOrder: 3, ClickCount: 75},
	}
	for i := range keywords {
		keywords[i].CreatedAt = base.AddDate(0, 0, i)
		keywords[i].UpdatedAt = keywords[i].CreatedAt
		_ = stores.Keywords.Create(ctx, &keywords[i])
	}

	return stores
}
