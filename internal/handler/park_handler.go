package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/nurie/internal/model"
	"github.com/hitoshi/nurie/internal/park"
	"github.com/hitoshi/nurie/internal/query"
)

// defaultPublicParkLimit は公開テーマパーク一覧のデフォルト取得件数。
const defaultPublicParkLimit = 20

// ParkServiceInterface はテーマパークハンドラーが必要とするサービスインターフェース。
type ParkServiceInterface interface {
	Search(ctx context.Context, spec query.Spec) (*query.Result[model.ThemePark], error)
	Get(ctx context.Context, id int64) (*model.ThemePark, error)
	Create(ctx context.Context, input park.CreateInput) (*model.ThemePark, error)
	Update(ctx context.Context, id int64, input park.UpdateInput) (*model.ThemePark, error)
	Delete(ctx context.Context, id int64) (*model.ThemePark, error)
}

// ParkHandler はテーマパークのHTTPハンドラー。
type ParkHandler struct {
	service ParkServiceInterface
}

// NewParkHandler はParkHandlerを生成する。
func NewParkHandler(service ParkServiceInterface) *ParkHandler {
	return &ParkHandler{service: service}
}

// parkResponse はテーマパークのAPIレスポンス。
type parkResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	Theme        string    `json:"theme,omitempty"`
	PageCount    int       `json:"pageCount"`
	IsActive     bool      `json:"isActive"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// parkListData は一覧レスポンスのデータ部。
type parkListData struct {
	Items      []parkResponse   `json:"items"`
	Pagination query.Pagination `json:"pagination"`
}

func toParkResponse(p *model.ThemePark) parkResponse {
	return parkResponse{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  p.Description,
		Theme:        p.Theme,
		PageCount:    p.PageCount,
		IsActive:     p.IsActive,
		DisplayOrder: p.DisplayOrder,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toParkListData(result *query.Result[model.ThemePark]) parkListData {
	items := make([]parkResponse, len(result.Items))
	for i := range result.Items {
		items[i] = toParkResponse(&result.Items[i])
	}
	return parkListData{Items: items, Pagination: result.Pagination}
}

// createParkRequest はテーマパーク作成リクエストのボディ。
type createParkRequest struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	Theme        string `json:"theme"`
	IsActive     *bool  `json:"isActive"`
	DisplayOrder *int   `json:"displayOrder"`
}

// updateParkRequest はテーマパーク部分更新リクエストのボディ。
type updateParkRequest struct {
	Name         *string `json:"name"`
	Slug         *string `json:"slug"`
	Description  *string `json:"description"`
	Theme        *string `json:"theme"`
	IsActive     *bool   `json:"isActive"`
	DisplayOrder *int    `json:"displayOrder"`
}

// ListPublic は公開サイトのテーマパーク一覧を返す。有効なパークのみが対象。
// GET /api/theme-parks
func (h *ParkHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	spec, apiErr := query.ParseSpec(r.URL.Query(), "theme", defaultPublicParkLimit)
	if apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	spec.Status = "active"

	result, err := h.service.Search(r.Context(), spec)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toParkListData(result))
}

// ListAdmin は管理画面のテーマパーク一覧を返す。無効パークも含む。
// GET /api/admin/theme-parks
func (h *ParkHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	spec, apiErr := query.ParseSpec(r.URL.Query(), "theme", defaultAdminListLimit)
	if apiErr != nil {
		writeAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	result, err := h.service.Search(r.Context(), spec)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toParkListData(result))
}

// GetAdmin は管理画面のテーマパーク詳細を返す。
// GET /api/admin/theme-parks/{id}
func (h *ParkHandler) GetAdmin(w http.ResponseWriter, r *http.Request) {
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
		writeAPIError(w, http.StatusNotFound, model.NewNotFoundError("テーマパーク", id))
		return
	}

	writeSuccess(w, http.StatusOK, toParkResponse(p))
}

// Create はテーマパークを新規作成する。
// POST /api/admin/theme-parks
func (h *ParkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createParkRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), park.CreateInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		Theme:        req.Theme,
		IsActive:     req.IsActive,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toParkResponse(created))
}

// Update はテーマパークを部分更新する。
// PUT /api/admin/theme-parks/{id}
func (h *ParkHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateParkRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, park.UpdateInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		Theme:        req.Theme,
		IsActive:     req.IsActive,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toParkResponse(updated))
}

// Delete はテーマパークを削除し、削除したレコードを返す。
// 紐付きページがある場合は409を返す。
// DELETE /api/admin/theme-parks/{id}
func (h *ParkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toParkResponse(deleted))
}
