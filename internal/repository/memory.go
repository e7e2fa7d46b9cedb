package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/nurie/internal/model"
)

// インメモリ実装。
//
// 元のプロトタイプはプロセスローカルな可変配列をモジュールグローバルに
// 保持していたが、ここでは明示的に生成したストアインスタンスを注入する。
// テストごとに独立したストアを持てるようにし、ミューテックスで保護する。
// IDは単調増加のカウンタで採番し、削除後も再利用しない。

// normalizeKey は一意性判定用にトリムして小文字化する。
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// --- ページ ---

// MemoryPageRepo はインメモリのぬりえページリポジトリ。
type MemoryPageRepo struct {
	mu     sync.RWMutex
	pages  []model.ColoringPage
	nextID int64
}

// NewMemoryPageRepo は空のMemoryPageRepoを生成する。
func NewMemoryPageRepo() *MemoryPageRepo {
	return &MemoryPageRepo{nextID: 1}
}

// List は全ページのコピーを返す。
func (r *MemoryPageRepo) List(ctx context.Context) ([]model.ColoringPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.ColoringPage, len(r.pages))
	copy(result, r.pages)
	return result, nil
}

// FindByID は指定IDのページを取得する。見つからない場合はnilを返す。
func (r *MemoryPageRepo) FindByID(ctx context.Context, id int64) (*model.ColoringPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.pages {
		if r.pages[i].ID == id {
			page := r.pages[i]
			return &page, nil
		}
	}
	return nil, nil
}

// FindBySlug はスラッグでページを検索する。
func (r *MemoryPageRepo) FindBySlug(ctx context.Context, slug string) (*model.ColoringPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := normalizeKey(slug)
	for i := range r.pages {
		if normalizeKey(r.pages[i].Slug) == key {
			page := r.pages[i]
			return &page, nil
		}
	}
	return nil, nil
}

// Create はページを作成し、採番したIDをpage.IDに設定する。
func (r *MemoryPageRepo) Create(ctx context.Context, page *model.ColoringPage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	page.ID = r.nextID
	r.nextID++
	r.pages = append(r.pages, *page)
	return nil
}

// Update は既存ページを全フィールド上書きで更新する。
func (r *MemoryPageRepo) Update(ctx context.Context, page *model.ColoringPage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.pages {
		if r.pages[i].ID == page.ID {
			r.pages[i] = *page
			return nil
		}
	}
	return nil
}

// Delete は指定IDのページを削除する。
func (r *MemoryPageRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.pages {
		if r.pages[i].ID == id {
			r.pages = append(r.pages[:i], r.pages[i+1:]...)
			return nil
		}
	}
	return nil
}

// MaxDisplayOrder は表示順の最大値を返す。
func (r *MemoryPageRepo) MaxDisplayOrder(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	max := 0
	for i := range r.pages {
		if r.pages[i].DisplayOrder > max {
			max = r.pages[i].DisplayOrder
		}
	}
	return max, nil
}

// AddLikes はいいね数をdeltaだけ増減する。結果は0未満にならない。
func (r *MemoryPageRepo) AddLikes(ctx context.Context, id int64, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.pages {
		if r.pages[i].ID == id {
			r.pages[i].Likes += delta
			if r.pages[i].Likes < 0 {
				r.pages[i].Likes = 0
			}
			r.pages[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return nil
}

// IncrementDownloads はダウンロード数を1増やす。
func (r *MemoryPageRepo) IncrementDownloads(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.pages {
		if r.pages[i].ID == id {
			r.pages[i].Downloads++
			r.pages[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return nil
}

// --- テーマパーク ---

// MemoryParkRepo はインメモリのテーマパークリポジトリ。
type MemoryParkRepo struct {
	mu     sync.RWMutex
	parks  []model.ThemePark
	nextID int64
}

// NewMemoryParkRepo は空のMemoryParkRepoを生成する。
func NewMemoryParkRepo() *MemoryParkRepo {
	return &MemoryParkRepo{nextID: 1}
}

// List は全テーマパークのコピーを返す。
func (r *MemoryParkRepo) List(ctx context.Context) ([]model.ThemePark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.ThemePark, len(r.parks))
	copy(result, r.parks)
	return result, nil
}

// FindByID は指定IDのテーマパークを取得する。見つからない場合はnilを返す。
func (r *MemoryParkRepo) FindByID(ctx context.Context, id int64) (*model.ThemePark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.parks {
		if r.parks[i].ID == id {
			park := r.parks[i]
			return &park, nil
		}
	}
	return nil, nil
}

// FindByName は名前でテーマパークを検索する。
func (r *MemoryParkRepo) FindByName(ctx context.Context, name string) (*model.ThemePark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := normalizeKey(name)
	for i := range r.parks {
		if normalizeKey(r.parks[i].Name) == key {
			park := r.parks[i]
			return &park, nil
		}
	}
	return nil, nil
}

// FindBySlug はスラッグでテーマパークを検索する。
func (r *MemoryParkRepo) FindBySlug(ctx context.Context, slug string) (*model.ThemePark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := normalizeKey(slug)
	for i := range r.parks {
		if normalizeKey(r.parks[i].Slug) == key {
			park := r.parks[i]
			return &park, nil
		}
	}
	return nil, nil
}

// Create はテーマパークを作成し、採番したIDをpark.IDに設定する。
func (r *MemoryParkRepo) Create(ctx context.Context, park *model.ThemePark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	park.ID = r.nextID
	r.nextID++
	r.parks = append(r.parks, *park)
	return nil
}

// Update は既存テーマパークを全フィールド上書きで更新する。
func (r *MemoryParkRepo) Update(ctx context.Context, park *model.ThemePark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.parks {
		if r.parks[i].ID == park.ID {
			r.parks[i] = *park
			return nil
		}
	}
	return nil
}

// Delete は指定IDのテーマパークを削除する。
func (r *MemoryParkRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.parks {
		if r.parks[i].ID == id {
			r.parks = append(r.parks[:i], r.parks[i+1:]...)
			return nil
		}
	}
	return nil
}

// MaxDisplayOrder は表示順の最大値を返す。
func (r *MemoryParkRepo) MaxDisplayOrder(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	max := 0
	for i := range r.parks {
		if r.parks[i].DisplayOrder > max {
			max = r.parks[i].DisplayOrder
		}
	}
	return max, nil
}

// AdjustPageCount は指定スラッグのテーマパークの紐付きページ数を増減する。
func (r *MemoryParkRepo) AdjustPageCount(ctx context.Context, slug string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalizeKey(slug)
	for i := range r.parks {
		if normalizeKey(r.parks[i].Slug) == key {
			r.parks[i].PageCount += delta
			if r.parks[i].PageCount < 0 {
				r.parks[i].PageCount = 0
			}
			r.parks[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return nil
}

// --- キーワード ---

// MemoryKeywordRepo はインメモリのプロモーションキーワードリポジトリ。
type MemoryKeywordRepo struct {
	mu       sync.RWMutex
	keywords []model.PromoKeyword
	nextID   int64
}

// NewMemoryKeywordRepo は空のMemoryKeywordRepoを生成する。
func NewMemoryKeywordRepo() *MemoryKeywordRepo {
	return &MemoryKeywordRepo{nextID: 1}
}

// List は全キーワードのコピーを返す。
func (r *MemoryKeywordRepo) List(ctx context.Context) ([]model.PromoKeyword, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.PromoKeyword, len(r.keywords))
	copy(result, r.keywords)
	return result, nil
}

// FindByID は指定IDのキーワードを取得する。見つからない場合はnilを返す。
func (r *MemoryKeywordRepo) FindByID(ctx context.Context, id int64) (*model.PromoKeyword, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.keywords {
		if r.keywords[i].ID == id {
			keyword := r.keywords[i]
			return &keyword, nil
		}
	}
	return nil, nil
}

// FindByKeyword はキーワード文字列で検索する。
func (r *MemoryKeywordRepo) FindByKeyword(ctx context.Context, keyword string) (*model.PromoKeyword, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := normalizeKey(keyword)
	for i := range r.keywords {
		if normalizeKey(r.keywords[i].Keyword) == key {
			k := r.keywords[i]
			return &k, nil
		}
	}
	return nil, nil
}

// Create はキーワードを作成し、採番したIDをkeyword.IDに設定する。
func (r *MemoryKeywordRepo) Create(ctx context.Context, keyword *model.PromoKeyword) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	keyword.ID = r.nextID
	r.nextID++
	r.keywords = append(r.keywords, *keyword)
	return nil
}

// Update は既存キーワードを全フィールド上書きで更新する。
func (r *MemoryKeywordRepo) Update(ctx context.Context, keyword *model.PromoKeyword) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.keywords {
		if r.keywords[i].ID == keyword.ID {
			r.keywords[i] = *keyword
			return nil
		}
	}
	return nil
}

// Delete は指定IDのキーワードを削除する。
func (r *MemoryKeywordRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.keywords {
		if r.keywords[i].ID == id {
			r.keywords = append(r.keywords[:i], r.keywords[i+1:]...)
			return nil
		}
	}
	return nil
}

// MaxDisplayOrder は表示順の最大値を返す。
func (r *MemoryKeywordRepo) MaxDisplayOrder(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	max := 0
	for i := range r.keywords {
		if r.keywords[i].DisplayOrder > max {
			max = r.keywords[i].DisplayOrder
		}
	}
	return max, nil
}

// IncrementClickCount は指定IDのクリック数を1増やす。
func (r *MemoryKeywordRepo) IncrementClickCount(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.keywords {
		if r.keywords[i].ID == id {
			r.keywords[i].ClickCount++
			r.keywords[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return nil
}

// --- カテゴリ ---

// MemoryCategoryRepo はインメモリのカテゴリリポジトリ。
type MemoryCategoryRepo struct {
	mu         sync.RWMutex
	categories []model.Category
	nextID     int64
}

// NewMemoryCategoryRepo は空のMemoryCategoryRepoを生成する。
func NewMemoryCategoryRepo() *MemoryCategoryRepo {
	return &MemoryCategoryRepo{nextID: 1}
}

// List は全カテゴリのコピーを返す。
func (r *MemoryCategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.Category, len(r.categories))
	copy(result, r.categories)
	return result, nil
}

// FindByID は指定IDのカテゴリを取得する。見つからない場合はnilを返す。
func (r *MemoryCategoryRepo) FindByID(ctx context.Context, id int64) (*model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.categories {
		if r.categories[i].ID == id {
			category := r.categories[i]
			return &category, nil
		}
	}
	return nil, nil
}

// FindByName は名前でカテゴリを検索する。
func (r *MemoryCategoryRepo) FindByName(ctx context.Context, name string) (*model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := normalizeKey(name)
	for i := range r.categories {
		if normalizeKey(r.categories[i].Name) == key {
			category := r.categories[i]
			return &category, nil
		}
	}
	return nil, nil
}

// FindBySlug はスラッグでカテゴリを検索する。
func (r *MemoryCategoryRepo) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := normalizeKey(slug)
	for i := range r.categories {
		if normalizeKey(r.categories[i].Slug) == key {
			category := r.categories[i]
			return &category, nil
		}
	}
	return nil, nil
}

// Create はカテゴリを作成し、採番したIDをcategory.IDに設定する。
func (r *MemoryCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	category.ID = r.nextID
	r.nextID++
	r.categories = append(r.categories, *category)
	return nil
}

// Update は既存カテゴリを全フィールド上書きで更新する。
func (r *MemoryCategoryRepo) Update(ctx context.Context, category *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.categories {
		if r.categories[i].ID == category.ID {
			r.categories[i] = *category
			return nil
		}
	}
	return nil
}

// Delete は指定IDのカテゴリを削除する。
func (r *MemoryCategoryRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.categories {
		if r.categories[i].ID == id {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			return nil
		}
	}
	return nil
}

// MaxDisplayOrder は表示順の最大値を返す。
func (r *MemoryCategoryRepo) MaxDisplayOrder(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	max := 0
	for i := range r.categories {
		if r.categories[i].DisplayOrder > max {
			max = r.categories[i].DisplayOrder
		}
	}
	return max, nil
}

// --- 管理者セッション ---

// MemorySessionRepo はインメモリの管理者セッションリポジトリ。
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]model.AdminSession
}

// NewMemorySessionRepo は空のMemorySessionRepoを生成する。
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{sessions: make(map[string]model.AdminSession)}
}

// Create はセッションを作成する。
func (r *MemorySessionRepo) Create(ctx context.Context, session *model.AdminSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Token] = *session
	return nil
}

// FindByToken は指定トークンのセッションを取得する。
// 見つからない場合と期限切れの場合はnilを返す。
func (r *MemorySessionRepo) FindByToken(ctx context.Context, token string) (*model.AdminSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[token]
	if !ok || session.Expired(time.Now()) {
		return nil, nil
	}
	return &session, nil
}

// DeleteByToken は指定トークンのセッションを削除する。
func (r *MemorySessionRepo) DeleteByToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

// DeleteExpired は期限切れセッションを全て削除し、削除件数を返す。
func (r *MemorySessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var deleted int64
	for token, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}
