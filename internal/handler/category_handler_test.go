package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/nurie/internal/category"
	"github.com/hitoshi/nurie/internal/model"
	"github.com/hitoshi/nurie/internal/query"
)

// mockCategoryService はCategoryServiceInterfaceのモック実装。
type mockCategoryService struct {
	searchFn     func(ctx context.Context, spec query.Spec) (*query.Result[model.Category], error)
	listActiveFn func(ctx context.Context) ([]model.Category, error)
	getFn        func(ctx context.Context, id int64) (*model.Category, error)
	createFn     func(ctx context.Context, input category.CreateInput) (*model.Category, error)
	updateFn     func(ctx context.Context, id int64, input category.UpdateInput) (*model.Category, error)
	deleteFn     func(ctx context.Context, id int64) (*model.Category, error)
}

func (m *mockCategoryService) Search(ctx context.Context, spec query.Spec) (*query.Result[model.Category], error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, spec)
	}
	return &query.Result[model.Category]{}, nil
}

func (m *mockCategoryService) ListActive(ctx context.Context) ([]model.Category, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return nil, nil
}

func (m *mockCategoryService) Get(ctx context.Context, id int64) (*model.Category, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCategoryService) Create(ctx context.Context, input category.CreateInput) (*model.Category, error) {
	if m.createFn != nil {
		return m.createFn(ctx, input)
	}
	return nil, nil
}

func (m *mockCategoryService) Update(ctx context.Context, id int64, input category.UpdateInput) (*model.Category, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, input)
	}
	return nil, nil
}

func (m *mockCategoryService) Delete(ctx context.Context, id int64) (*model.Category, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil, nil
}

func testCategory(id int64) model.Category {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return model.Category{
		ID:        id,
		Name:      "どうぶつ",
		Slug:      "animals",
		Color:     "#ff9800",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCategoryHandler_ListPublic_ReturnsActiveOnly(t *testing.T) {
	svc := &mockCategoryService{
		listActiveFn: func(ctx context.Context) ([]model.Category, error) {
			return []model.Category{testCategory(1), testCategory(2)}, nil
		},
	}
	h := NewCategoryHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	w := httptest.NewRecorder()

	h.ListPublic(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	env := decodeEnvelope(t, w)
	var items []categoryResponse
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(items))
	}
	if items[0].Color != "#ff9800" {
		t.Errorf("color = %q, want #ff9800", items[0].Color)
	}
}

func TestCategoryHandler_ListPublic_EmptyNameRendersOther(t *testing.T) {
	svc := &mockCategoryService{
		listActiveFn: func(ctx context.Context) ([]model.Category, error) {
			c := testCategory(1)
			c.Name = ""
			return []model.Category{c}, nil
		},
	}
	h := NewCategoryHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	w := httptest.NewRecorder()

	h.ListPublic(w, req)

	env := decodeEnvelope(t, w)
	var items []categoryResponse
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Other" {
		t.Errorf("name = %q, want %q", items[0].Name, "Other")
	}
}

func TestCategoryHandler_ListAdmin_DefaultLimit(t *testing.T) {
	var gotSpec query.Spec
	svc := &mockCategoryService{
		searchFn: func(ctx context.Context, spec query.Spec) (*query.Result[model.Category], error) {
			gotSpec = spec
			return &query.Result[model.Category]{}, nil
		},
	}
	h := NewCategoryHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/categories", nil)
	w := httptest.NewRecorder()

	h.ListAdmin(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotSpec.Limit != 10 {
		t.Errorf("spec.Limit = %d, want 10", gotSpec.Limit)
	}
}

func TestCategoryHandler_Create_DuplicateSlug(t *testing.T) {
	svc := &mockCategoryService{
		createFn: func(ctx context.Context, input category.CreateInput) (*model.Category, error) {
			return nil, model.NewDuplicateSlugError(input.Slug)
		},
	}
	h := NewCategoryHandler(svc)

	body := `{"name": "どうぶつ", "slug": "animals"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/categories", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.Create(w, req)

	assertErrorResponse(t, w, http.StatusConflict, "DUPLICATE_SLUG")
}

func TestCategoryHandler_Delete_SucceedsEvenWhenReferenced(t *testing.T) {
	c := testCategory(5)
	svc := &mockCategoryService{
		deleteFn: func(ctx context.Context, id int64) (*model.Category, error) {
			return &c, nil
		},
	}
	h := NewCategoryHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/categories/5", nil)
	req = withChiURLParam(req, "id", "5")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	env := decodeEnvelope(t, w)
	var resp categoryResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if resp.ID != 5 {
		t.Errorf("id = %d, want 5", resp.ID)
	}
}
