package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/nurie/internal/keyword"
	"github.com/hitoshi/nurie/internal/model"
	"github.com/hitoshi/nurie/internal/query"
)

// dateLayout はキーワード公開期間のリクエスト・レスポンスで使う日付形式。
const dateLayout = "2006-01-02"

// KeywordServiceInterface はキーワードハンドラーが必要とするサービスインターフェース。
type KeywordServiceInterface interface {
	Search(ctx context.Context, spec query.Spec) (*query.Result[model.PromoKeyword], error)
	ListActive(ctx context.Context, day time.Time) ([]model.PromoKeyword, error)
	Click(ctx context.Context, raw string) error
	Get(ctx context.Context, id int64) (*model.PromoKeyword, error)
	Create(ctx context.Context, input keyword.CreateInput) (*model.PromoKeyword, error)
	Update(ctx context.Context, id int64, input keyword.UpdateInput) (*model.PromoKeyword, error)
	Delete(ctx context.Context, id int64) (*model.PromoKeyword, error)
}

// KeywordHandler はプロモーションキーワードのHTTPハンドラー。
type KeywordHandler struct {
	service KeywordServiceInterface
}

// NewKeywordHandler はKeywordHandlerを生成する。
func NewKeywordHandler(service KeywordServiceInterface) *KeywordHandler {
	return &KeywordHandler{service: service}
}

// keywordResponse はキーワードのAPIレスポンス。
// 公開期間は日付のみの文字列で、未設定の場合はnull。
type keywordResponse struct {
	ID           int64     `json:"id"`
	Keyword      string    `json:"keyword"`
	ClickCount   int       `json:"clickCount"`
	IsActive     bool      `json:"isActive"`
	DisplayOrder int       `json:"displayOrder"`
	StartDate    *string   `json:"startDate"`
	EndDate      *string   `json:"endDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// keywordListData は管理画面一覧レスポンスのデータ部。
type keywordListData struct {
	Items      []keywordResponse `json:"items"`
	Pagination query.Pagination  `json:"pagination"`
}

func toKeywordResponse(k *model.PromoKeyword) keywordResponse {
	resp := keywordResponse{
		ID:           k.ID,
		Keyword:      k.Keyword,
		ClickCount:   k.ClickCount,
		IsActive:     k.IsActive,
		DisplayOrder: k.DisplayOrder,
		CreatedAt:    k.CreatedAt,
		UpdatedAt:    k.UpdatedAt,
	}
	if k.StartDate != nil {
		s := k.StartDate.Format(dateLayout)
		resp.StartDate = &s
	}
	if k.EndDate != nil {
		s := k.EndDate.Format(dateLayout)
		resp.EndDate = &s
	}
	return resp
}

// createKeywordRequest はキーワード作成リクエストのボディ。
// 日付は"2006-01-02"形式の文字列で指定する。
type createKeywordRequest struct {
	Keyword      string  `json:"keyword"`
	IsActive     *bool   `json:"isActive"`
	DisplayOrder *int    `json:"displayOrder"`
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"`
}

// updateKeywordRequest はキーワード部分更新リクエストのボディ。
// 日付フィールドは省略で変更なし、空文字列で期限解除を意味する。
type updateKeywordRequest struct {
	Keyword      *string `json:"keyword"`
	IsActive     *bool   `json:"isActive"`
	DisplayOrder *int    `json:"displayOrder"`
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"`
}

// clickRequest はクリック記録リクエストのボディ。
type clickRequest struct {
	Keyword string `json:"keyword"`
}

// parseDate は日付文字列をパースする。失敗時は400を書き込んでfalseを返す。
func parseDate(w http.ResponseWriter, raw string, field string) (*time.Time, bool) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, model.NewInvalidRequestError(field+"は2006-01-02形式で指定してください"))
		return nil, false
	}
	return &t, true
}

// ListPublic は現在公開対象のキーワードを表示順で返す。
// GET /api/keywords
func (h *KeywordHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	keywords, err := h.service.ListActive(r.Context(), time.Now())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]keywordResponse, len(keywords))
	for i := range keywords {
		items[i] = toKeywordResponse(&keywords[i])
	}

	writeSuccess(w, http.StatusOK, items)
}

// Click はキーワードのクリックを記録する。
// 公開対象外や未登録のキーワードでも200を返す（存在の探りを防ぐ）。
// POST /api/keywords/click
func (h *KeywordHandler) Click(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := h.service.Click(r.Context(), req.Keyword); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessMessage(w, http.StatusOK, "クリックを記録しました")
}

// ListAdmin は管理画面のキーワード一覧を返す。公開期間外も含む。
// GET /api/admin/keywords
func (h *KeywordHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
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

	items := make([]keywordResponse, len(result.Items))
	for i := range result.Items {
		items[i] = toKeywordResponse(&result.Items[i])
	}

	writeSuccess(w, http.StatusOK, keywordListData{Items: items, Pagination: result.Pagination})
}

// GetAdmin は管理画面のキーワード詳細を返す。
// GET /api/admin/keywords/{id}
func (h *KeywordHandler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	k, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if k == nil {
		writeAPIError(w, http.StatusNotFound, model.NewNotFoundError("キーワード", id))
		return
	}

	writeSuccess(w, http.StatusOK, toKeywordResponse(k))
}

// Create はキーワードを新規作成する。
// POST /api/admin/keywords
func (h *KeywordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createKeywordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	input := keyword.CreateInput{
		Keyword:      req.Keyword,
		IsActive:     req.IsActive,
		DisplayOrder: req.DisplayOrder,
	}
	if req.StartDate != nil && *req.StartDate != "" {
		t, ok := parseDate(w, *req.StartDate, "startDate")
		if !ok {
			return
		}
		input.StartDate = t
	}
	if req.EndDate != nil && *req.EndDate != "" {
		t, ok := parseDate(w, *req.EndDate, "endDate")
		if !ok {
			return
		}
		input.EndDate = t
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toKeywordResponse(created))
}

// Update はキーワードを部分更新する。
// PUT /api/admin/keywords/{id}
func (h *KeywordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateKeywordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	input := keyword.UpdateInput{
		Keyword:      req.Keyword,
		IsActive:     req.IsActive,
		DisplayOrder: req.DisplayOrder,
	}
	if req.StartDate != nil {
		if *req.StartDate == "" {
			input.ClearStartDate = true
		} else {
			t, ok := parseDate(w, *req.StartDate, "startDate")
			if !ok {
				return
			}
			input.StartDate = t
		}
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			input.ClearEndDate = true
		} else {
			t, ok := parseDate(w, *req.EndDate, "endDate")
			if !ok {
				return
			}
			input.EndDate = t
		}
	}

	updated, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toKeywordResponse(updated))
}

// Delete はキーワードを削除し、削除したレコードを返す。
// DELETE /api/admin/keywords/{id}
func (h *KeywordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toKeywordResponse(deleted))
}
