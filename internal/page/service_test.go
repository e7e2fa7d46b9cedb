package page

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/nurie/internal/model"
	"github.com/hitoshi/nurie/internal/query"
	"github.com/hitoshi/nurie/internal/repository"
)

type stubSanitizer struct{}

func (stubSanitizer) Sanitize(raw string) string { return raw }

type countingCollector struct {
	downloads int
	searches  int
}

func (c *countingCollector) RecordHTTPStatus(statusCode int) {}
func (c *countingCollector) RecordSearchLatency(duration time.Duration) {
	c.searches++
}
func (c *countingCollector) RecordKeywordClick(keyword string) {}
func (c *countingCollector) RecordPageDownload() {
	c.downloads++
}
func (c *countingCollector) RecordProxyFetchSuccess()             {}
func (c *countingCollector) RecordProxyFetchFailure(reason string) {}

func newTestService(t *testing.T) (*Service, *repository.MemoryParkRepo, *countingCollector) {
	t.Helper()
	pageRepo := repository.NewMemoryPageRepo()
	parkRepo := repository.NewMemoryParkRepo()
	collector := &countingCollector{}
	return NewService(pageRepo, parkRepo, stubSanitizer{}, collector), parkRepo, collector
}

func assertAPIErrorCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != wantCode {
		t.Errorf("error code = %s, want %s", apiErr.Code, wantCode)
	}
}

func seedPark(t *testing.T, parkRepo *repository.MemoryParkRepo, name, slug string) {
	t.Helper()
	now := time.Now()
	park := &model.ThemePark{
		Name: name, Slug: slug, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := parkRepo.Create(context.Background(), park); err != nil {
		t.Fatalf("seed park failed: %v", err)
	}
}

func pageCount(t *testing.T, parkRepo *repository.MemoryParkRepo, slug string) int {
	t.Helper()
	park, err := parkRepo.FindBySlug(context.Background(), slug)
	if err != nil {
		t.Fatalf("FindBySlug failed: %v", err)
	}
	if park == nil {
		t.Fatalf("park %s not found", slug)
	}
	return park.PageCount
}

func validInput() CreateInput {
	return CreateInput{
		Title:    "Mickey Mouse",
		ImageURL: "https://images.example.com/mickey.png",
	}
}

func TestCreate_DefaultsApplied(t *testing.T) {
	svc, _, _ := newTestService(t)

	created, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.Slug != "mickey-mouse" {
		t.Errorf("slug = %s, want mickey-mouse", created.Slug)
	}
	if created.Difficulty != model.DifficultyEasy {
		t.Errorf("difficulty = %s, want easy", created.Difficulty)
	}
	if !created.IsActive {
		t.Error("expected default IsActive = true")
	}
	if created.Likes != 0 || created.Downloads != 0 {
		t.Errorf("counters = %d/%d, want 0/0", created.Likes, created.Downloads)
	}
}

func TestCreate_RequiredFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{ImageURL: "https://example.com/a.png"})
	assertAPIErrorCode(t, err, model.ErrCodeEmptyField)

	_, err = svc.Create(ctx, CreateInput{Title: "Mickey"})
	assertAPIErrorCode(t, err, model.ErrCodeEmptyField)
}

func TestCreate_InvalidImageURL(t *testing.T) {
	svc, _, _ := newTestService(t)

	input := validInput()
	input.ImageURL = "ftp://example.com/mickey.png"
	_, err := svc.Create(context.Background(), input)
	assertAPIErrorCode(t, err, model.ErrCodeInvalidURL)
}

func TestCreate_InvalidDifficulty(t *testing.T) {
	svc, _, _ := newTestService(t)

	input := validInput()
	input.Difficulty = "extreme"
	_, err := svc.Create(context.Background(), input)
	assertAPIErrorCode(t, err, model.ErrCodeInvalidDifficulty)
}

func TestCreate_DuplicateSlug(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validInput()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	input := validInput()
	input.Title = "Another Mickey"
	input.Slug = "MICKEY-MOUSE"
	_, err := svc.Create(ctx, input)
	assertAPIErrorCode(t, err, model.ErrCodeDuplicateSlug)
}

func TestCreate_IncrementsParkPageCount(t *testing.T) {
	svc, parkRepo, _ := newTestService(t)
	ctx := context.Background()
	seedPark(t, parkRepo, "Disney World", "disney-world")

	input := validInput()
	input.ParkSlug = "disney-world"
	if _, err := svc.Create(ctx, input); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if got := pageCount(t, parkRepo, "disney-world"); got != 1 {
		t.Errorf("pageCount = %d, want 1", got)
	}
}

func TestUpdate_MovesParkPageCount(t *testing.T) {
	svc, parkRepo, _ := newTestService(t)
	ctx := context.Background()
	seedPark(t, parkRepo, "Disney World", "disney-world")
	seedPark(t, parkRepo, "Universal Studios", "universal-studios")

	input := validInput()
	input.ParkSlug = "disney-world"
	created, err := svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newSlug := "universal-studios"
	if _, err := svc.Update(ctx, created.ID, UpdateInput{ParkSlug: &newSlug}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if got := pageCount(t, parkRepo, "disney-world"); got != 0 {
		t.Errorf("disney-world pageCount = %d, want 0", got)
	}
	if got := pageCount(t, parkRepo, "universal-studios"); got != 1 {
		t.Errorf("universal-studios pageCount = %d, want 1", got)
	}
}

func TestDelete_DecrementsParkPageCount(t *testing.T) {
	svc, parkRepo, _ := newTestService(t)
	ctx := context.Background()
	seedPark(t, parkRepo, "Disney World", "disney-world")

	input := validInput()
	input.ParkSlug = "disney-world"
	created, err := svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deleted, err := svc.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted.Title != "Mickey Mouse" {
		t.Errorf("deleted title = %s, want Mickey Mouse", deleted.Title)
	}
	if got := pageCount(t, parkRepo, "disney-world"); got != 0 {
		t.Errorf("pageCount = %d, want 0", got)
	}
}

func TestLikeUnlike_FloorsAtZero(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Like(ctx, created.ID); err != nil {
		t.Fatalf("Like failed: %v", err)
	}
	if err := svc.Unlike(ctx, created.ID); err != nil {
		t.Fatalf("Unlike failed: %v", err)
	}
	// 0からのUnlikeでも負にならない
	if err := svc.Unlike(ctx, created.ID); err != nil {
		t.Fatalf("Unlike failed: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Likes != 0 {
		t.Errorf("likes = %d, want 0", got.Likes)
	}
}

func TestLike_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Like(context.Background(), 404)
	assertAPIErrorCode(t, err, model.ErrCodeRecordNotFound)
}

func TestDownload_IncrementsAndRecordsMetric(t *testing.T) {
	svc, _, collector := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Download(ctx, created.ID); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Downloads != 1 {
		t.Errorf("downloads = %d, want 1", got.Downloads)
	}
	if collector.downloads != 1 {
		t.Errorf("recorded downloads = %d, want 1", collector.downloads)
	}
}

func TestSearch_FiltersAndRecordsLatency(t *testing.T) {
	svc, _, collector := newTestService(t)
	ctx := context.Background()

	input := validInput()
	input.Category = "animals"
	if _, err := svc.Create(ctx, input); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	other := CreateInput{
		Title:    "Race Car",
		ImageURL: "https://images.example.com/car.png",
		Category: "vehicles",
	}
	if _, err := svc.Create(ctx, other); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	result, err := svc.Search(ctx, query.Spec{Group: "animals", Sort: query.SortNewest, Page: 1, Limit: 24})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if result.Pagination.TotalCount != 1 {
		t.Errorf("totalCount = %d, want 1", result.Pagination.TotalCount)
	}
	if len(result.Items) != 1 || result.Items[0].Title != "Mickey Mouse" {
		t.Errorf("unexpected items: %+v", result.Items)
	}
	if collector.searches != 1 {
		t.Errorf("recorded searches = %d, want 1", collector.searches)
	}
}
