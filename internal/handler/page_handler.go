package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/nurie/internal/model"
	"github.com/hitoshi/nurie/internal/page"
	"github.com/hitoshi/nurie/internal/query"
)

// 一覧のデフォルト取得件数。公開ギャラリーはカード表示のため多め。
const (
	defaultPublicPageLimit = 24
	defaultAdminListLimit  = 10
)

// PageServiceInterface はページハンドラーが必要とするサービスインターフェース。
type PageServiceInterface interface {
	Search(ctx context.Context, spec query.Spec) (*query.Result[model.ColoringPage], error)
	Get(ctx context.Context, id int64) (*model.ColoringPage, error)
	Create(ctx context.Context, input page.CreateInput) (*model.ColoringPage, error)
	Update(ctx context.Context, id int64, input page.UpdateInput) (*model.ColoringPage, error)
	Delete(ctx context.Context, id int64) (*model.ColoringPage, error)
	Like(ctx context.Context, id int64) error
	Unlike(ctx context.Context, id int64) error
	Download(ctx context.Context, id int64) error
}

// PageHandler はぬりえページのHTTPハンドラー。
type PageHandler struct {
	service PageServiceInterface
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(service PageServiceInterface) *PageHandler {
	return &PageHandler{service: service}
}

// pageResponse はぬりえページのAPIレスポンス。
type pageResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"imageUrl"`
	Category     string    `json:"category"`
	ParkSlug     string    `json:"parkSlug,omitempty"`
	Difficulty   string    `json:"difficulty"`
	IsActive     bool      `json:"isActive"`
	DisplayOrder int       `json:"displayOrder"`
	Likes        int       `json:"likes"`
	Downloads    int       `json:"downloads"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// pageListData は一覧レスポンスのデータ部。
type pageListData struct {
	Items      []pageResponse   `json:"items"`
	Pagination query.Pagination `json:"pagination"`
}

func toPageResponse(p *model.ColoringPage) pageResponse {
	return pageResponse{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Description:  p.Description,
		ImageURL:     p.ImageURL,
		Category:     p.CategoryLabel(),
		ParkSlug:     p.ParkSlug,
		Difficulty:   string(p.Difficulty),
		IsActive:     p.IsActive,
		DisplayOrder: p.DisplayOrder,
		Likes:        p.Likes,
		Downloads:    p.Downloads,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toPageListData(result *query.Result[model.ColoringPage]) pageListData {
	items := make([]pageResponse, len(result.Items))
	for i := range result.Items {
		items[i] = toPageResponse(&result.Items[i])
	}
	return pageListData{Items: items, Pagination: result.Pagination}
}

// createPageRequest はページ作成リクエストのボディ。
type createPageRequest struct {
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	ImageURL     string `json:"imageUrl"`
	Category     string `json:"category"`
	ParkSlug     string `json:"parkSlug"`
	Difficulty   string `json:"difficulty"`
	IsActive     *bool  `json:"isActive"`
	DisplayOrder *int   `json:"displayOrder"`
}

// updatePageRequest はページ部分更新リクエストのボディ。
// 省略されたフィールドは変更しない。
type updatePageRequest struct {
	Title        *string `json:"title"`
	Slug         *string `json:"slug"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"imageUrl"`
	Category     *string `json:"category"`
	ParkSlug     *string `json:"parkSlug"`
	Difficulty   *string `json:"difficulty"`
	IsActive     *bool   `json:"isActive"`
	DisplayOrder *int    `json:"displayOrder"`
}

// ListPublic は公開ギャラリーのページ一覧を返す。有効なページのみが対象。
// GET /api/pages
func (h *PageHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	spec, apiErr := query.ParseSpec(r.URL.Query(), "category", defaultPublicPageLimit)
	if apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	// 公開側は常に有効ページのみ
	spec.Status = "active"

	result, err := h.service.Search(r.Context(), spec)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toPageListData(result))
}

// GetPublic は公開ギャラリーのページ詳細を返す。無効化されたページは404。
// GET /api/pages/{id}
func (h *PageHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if p == nil || !p.IsActive {
		writeAPIError(w, http.StatusNotFound, model.NewNotFoundError("ページ", id))
		return
	}

	writeSuccess(w, http.StatusOK, toPageResponse(p))
}

// Like はいいねを加算する。
// POST /api/pages/{id}/like
func (h *PageHandler) Like(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Like(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessMessage(w, http.StatusOK, "いいねしました")
}

// Unlike はいいねを取り消す。
// DELETE /api/pages/{id}/like
func (h *PageHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Unlike(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessMessage(w, http.StatusOK, "いいねを取り消しました")
}

// Download はダウンロード数を加算する。
// POST /api/pages/{id}/download
func (h *PageHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Download(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessMessage(w, http.StatusOK, "ダウンロードを記録しました")
}

// ListAdmin は管理画面のページ一覧を返す。無効ページも含む。
// GET /api/admin/pages
func (h *PageHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	spec, apiErr := query.ParseSpec(r.URL.Query(), "category", defaultAdminListLimit)
	if apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	result, err := h.service.Search(r.Context(), spec)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toPageListData(result))
}

// GetAdmin は管理画面のページ詳細を返す。
// GET /api/admin/pages/{id}
func (h *PageHandler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if p == nil {
		writeAPIError(w, http.StatusNotFound, model.NewNotFoundError("ページ", id))
		return
	}

	writeSuccess(w, http.StatusOK, toPageResponse(p))
}

// Create はページを新規作成する。
// POST /api/admin/pages
func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPageRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), page.CreateInput{
		Title:        req.Title,
		Slug:         req.Slug,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		Category:     req.Category,
		ParkSlug:     req.ParkSlug,
		Difficulty:   req.Difficulty,
		IsActive:     req.IsActive,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toPageResponse(created))
}

// Update はページを部分更新する。
// PUT /api/admin/pages/{id}
func (h *PageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updatePageRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, page.UpdateInput{
		Title:        req.Title,
		Slug:         req.Slug,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		Category:     req.Category,
		ParkSlug:     req.ParkSlug,
		Difficulty:   req.Difficulty,
		IsActive:     req.IsActive,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toPageResponse(updated))
}

// Delete はページを削除し、削除したレコードを返す。
// DELETE /api/admin/pages/{id}
func (h *PageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toPageResponse(deleted))
}
