package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/nurie/internal/category"
	"github.com/hitoshi/nurie/internal/model"
	"github.com/hitoshi/nurie/internal/query"
)

// CategoryServiceInterface はカテゴリハンドラーが必要とするサービスインターフェース。
type CategoryServiceInterface interface {
	Search(ctx context.Context, spec query.Spec) (*query.Result[model.Category], error)
	ListActive(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id int64) (*model.Category, error)
	Create(ctx context.Context, input category.CreateInput) (*model.Category, error)
	Update(ctx context.Context, id int64, input category.UpdateInput) (*model.Category, error)
	Delete(ctx context.Context, id int64) (*model.Category, error)
}

// CategoryHandler はカテゴリのHTTPハンドラー。
type CategoryHandler struct {
	service CategoryServiceInterface
}

// NewCategoryHandler はCategoryHandlerを生成する。
func NewCategoryHandler(service CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// categoryResponse はカテゴリのAPIレスポンス。
type categoryResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description,omitempty"`
	Color        string    `json:"color,omitempty"`
	IsActive     bool      `json:"isActive"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// categoryListData は管理画面一覧レスポンスのデータ部。
type categoryListData struct {
	Items      []categoryResponse `json:"items"`
	Pagination query.Pagination   `json:"pagination"`
}

func toCategoryResponse(c *model.Category) categoryResponse {
	return categoryResponse{
		ID:           c.ID,
		Name:         c.DisplayName(),
		Slug:         c.Slug,
		Description:  c.Description,
		Color:        c.Color,
		IsActive:     c.IsActive,
		DisplayOrder: c.DisplayOrder,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// createCategoryRequest はカテゴリ作成リクエストのボディ。
type createCategoryRequest struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	Color        string `json:"color"`
	IsActive     *bool  `json:"isActive"`
	DisplayOrder *int   `json:"displayOrder"`
}

// updateCategoryRequest はカテゴリ部分更新リクエストのボディ。
type updateCategoryRequest struct {
	Name         *string `json:"name"`
	Slug         *string `json:"slug"`
	Description  *string `json:"description"`
	Color        *string `json:"color"`
	IsActive     *bool   `json:"isActive"`
	DisplayOrder *int    `json:"displayOrder"`
}

// ListPublic は有効なカテゴリを表示順で返す。ナビゲーション用でページネーションはしない。
// GET /api/categories
func (h *CategoryHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListActive(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]categoryResponse, len(categories))
	for i := range categories {
		items[i] = toCategoryResponse(&categories[i])
	}

	writeSuccess(w, http.StatusOK, items)
}

// ListAdmin は管理画面のカテゴリ一覧を返す。無効なカテゴリも含む。
// GET /api/admin/categories
func (h *CategoryHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	spec, apiErr := query.ParseSpec(r.URL.Query(), "", defaultAdminListLimit)
	if apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	result, err := h.service.Search(r.Context(), spec)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]categoryResponse, len(result.Items))
	for i := range result.Items {
		items[i] = toCategoryResponse(&result.Items[i])
	}

	writeSuccess(w, http.StatusOK, categoryListData{Items: items, Pagination: result.Pagination})
}

// GetAdmin は管理画面のカテゴリ詳細を返す。
// GET /api/admin/categories/{id}
func (h *CategoryHandler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if c == nil {
		writeAPIError(w, http.StatusNotFound, model.NewNotFoundError("カテゴリ", id))
		return
	}

	writeSuccess(w, http.StatusOK, toCategoryResponse(c))
}

// Create はカテゴリを新規作成する。
// POST /api/admin/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), category.CreateInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		Color:        req.Color,
		IsActive:     req.IsActive,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toCategoryResponse(created))
}

// Update はカテゴリを部分更新する。
// PUT /api/admin/categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateCategoryRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, category.UpdateInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		Color:        req.Color,
		IsActive:     req.IsActive,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toCategoryResponse(updated))
}

// Delete はカテゴリを削除し、削除したレコードを返す。
// ページとはスラッグ文字列でのみ紐づくため、参照中でも削除できる。
// DELETE /api/admin/categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toCategoryResponse(deleted))
}
