package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/nurie/internal/keyword"
	"github.com/hitoshi/nurie/internal/model"
	"github.com/hitoshi/nurie/internal/query"
)

// mockKeywordService はKeywordServiceInterfaceのモック実装。
type mockKeywordService struct {
	searchFn     func(ctx context.Context, spec query.Spec) (*query.Result[model.PromoKeyword], error)
	listActiveFn func(ctx context.Context, day time.Time) ([]model.PromoKeyword, error)
	clickFn      func(ctx context.Context, raw string) error
	getFn        func(ctx context.Context, id int64) (*model.PromoKeyword, error)
	createFn     func(ctx context.Context, input keyword.CreateInput) (*model.PromoKeyword, error)
	updateFn     func(ctx context.Context, id int64, input keyword.UpdateInput) (*model.PromoKeyword, error)
	deleteFn     func(ctx context.Context, id int64) (*model.PromoKeyword, error)
}

func (m *mockKeywordService) Search(ctx context.Context, spec query.Spec) (*query.Result[model.PromoKeyword], error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, spec)
	}
	return &query.Result[model.PromoKeyword]{}, nil
}

func (m *mockKeywordService) ListActive(ctx context.Context, day time.Time) ([]model.PromoKeyword, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx, day)
	}
	return nil, nil
}

func (m *mockKeywordService) Click(ctx context.Context, raw string) error {
	if m.clickFn != nil {
		return m.clickFn(ctx, raw)
	}
	return nil
}

func (m *mockKeywordService) Get(ctx context.Context, id int64) (*model.PromoKeyword, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockKeywordService) Create(ctx context.Context, input keyword.CreateInput) (*model.PromoKeyword, error) {
	if m.createFn != nil {
		return m.createFn(ctx, input)
	}
	return nil, nil
}

func (m *mockKeywordService) Update(ctx context.Context, id int64, input keyword.UpdateInput) (*model.PromoKeyword, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, input)
	}
	return nil, nil
}

func (m *mockKeywordService) Delete(ctx context.Context, id int64) (*model.PromoKeyword, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil, nil
}

func testKeyword(id int64) model.PromoKeyword {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return model.PromoKeyword{
		ID:        id,
		Keyword:   "夏休み",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestKeywordHandler_ListPublic_DateFormat(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	svc := &mockKeywordService{
		listActiveFn: func(ctx context.Context, day time.Time) ([]model.PromoKeyword, error) {
			k := testKeyword(1)
			k.StartDate = &start
			return []model.PromoKeyword{k}, nil
		},
	}
	h := NewKeywordHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/keywords", nil)
	w := httptest.NewRecorder()

	h.ListPublic(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	env := decodeEnvelope(t, w)
	var items []keywordResponse
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].StartDate == nil || *items[0].StartDate != "2025-07-01" {
		t.Errorf("startDate = %v, want 2025-07-01", items[0].StartDate)
	}
	if items[0].EndDate != nil {
		t.Errorf("endDate = %v, want nil", items[0].EndDate)
	}
}

func TestKeywordHandler_Click_UnknownKeywordStillReturns200(t *testing.T) {
	svc := &mockKeywordService{
		clickFn: func(ctx context.Context, raw string) error {
			if raw != "存在しない" {
				t.Errorf("keyword = %q, want 存在しない", raw)
			}
			// サービス層は未登録キーワードを無視してnilを返す
			return nil
		},
	}
	h := NewKeywordHandler(svc)

	body := `{"keyword": "存在しない"}`
	req := httptest.NewRequest(http.MethodPost, "/api/keywords/click", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.Click(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestKeywordHandler_Click_EmptyKeyword(t *testing.T) {
	svc := &mockKeywordService{
		clickFn: func(ctx context.Context, raw string) error {
			return model.NewEmptyFieldError("キーワード")
		},
	}
	h := NewKeywordHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/keywords/click", bytes.NewBufferString(`{"keyword": ""}`))
	w := httptest.NewRecorder()

	h.Click(w, req)

	assertErrorResponse(t, w, http.StatusBadRequest, "EMPTY_FIELD")
}

func TestKeywordHandler_Create_ParsesDates(t *testing.T) {
	svc := &mockKeywordService{
		createFn: func(ctx context.Context, input keyword.CreateInput) (*model.PromoKeyword, error) {
			if input.StartDate == nil || !input.StartDate.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
				t.Errorf("startDate = %v, want 2025-07-01", input.StartDate)
			}
			if input.EndDate == nil || !input.EndDate.Equal(time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)) {
				t.Errorf("endDate = %v, want 2025-08-31", input.EndDate)
			}
			k := testKeyword(1)
			k.StartDate = input.StartDate
			k.EndDate = input.EndDate
			return &k, nil
		},
	}
	h := NewKeywordHandler(svc)

	body := `{"keyword": "夏休み", "startDate": "2025-07-01", "endDate": "2025-08-31"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/keywords", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestKeywordHandler_Create_MalformedDate(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordService{})

	body := `{"keyword": "夏休み", "startDate": "07/01/2025"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/keywords", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.Create(w, req)

	assertErrorResponse(t, w, http.StatusBadRequest, "INVALID_REQUEST")
}

func TestKeywordHandler_Update_EmptyStringClearsDate(t *testing.T) {
	svc := &mockKeywordService{
		updateFn: func(ctx context.Context, id int64, input keyword.UpdateInput) (*model.PromoKeyword, error) {
			if !input.ClearEndDate {
				t.Error("ClearEndDate = false, want true")
			}
			if input.ClearStartDate {
				t.Error("ClearStartDate = true, want false")
			}
			if input.StartDate == nil {
				t.Error("startDate should be parsed")
			}
			k := testKeyword(id)
			return &k, nil
		},
	}
	h := NewKeywordHandler(svc)

	// endDateの空文字列は期限解除、startDateは更新
	body := `{"startDate": "2025-07-15", "endDate": ""}`
	req := httptest.NewRequest(http.MethodPut, "/api/admin/keywords/1", bytes.NewBufferString(body))
	req = withChiURLParam(req, "id", "1")
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestKeywordHandler_Update_OmittedDatesUnchanged(t *testing.T) {
	svc := &mockKeywordService{
		updateFn: func(ctx context.Context, id int64, input keyword.UpdateInput) (*model.PromoKeyword, error) {
			if input.StartDate != nil || input.EndDate != nil || input.ClearStartDate || input.ClearEndDate {
				t.Errorf("omitted dates must stay untouched: %+v", input)
			}
			k := testKeyword(id)
			return &k, nil
		},
	}
	h := NewKeywordHandler(svc)

	body := `{"isActive": false}`
	req := httptest.NewRequest(http.MethodPut, "/api/admin/keywords/1", bytes.NewBufferString(body))
	req = withChiURLParam(req, "id", "1")
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestKeywordHandler_Delete_NotFound(t *testing.T) {
	svc := &mockKeywordService{
		deleteFn: func(ctx context.Context, id int64) (*model.PromoKeyword, error) {
			return nil, model.NewNotFoundError("キーワード", id)
		},
	}
	h := NewKeywordHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/keywords/99", nil)
	req = withChiURLParam(req, "id", "99")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	assertErrorResponse(t, w, http.StatusNotFound, "RECORD_NOT_FOUND")
}
