package keyword

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/nurie/internal/model"
	"github.com/hitoshi/nurie/internal/repository"
)

// recordingCollector はクリック記録のみ追跡するテスト用コレクター。
type recordingCollector struct {
	clicks []string
}

func (r *recordingCollector) RecordHTTPStatus(statusCode int)           {}
func (r *recordingCollector) RecordSearchLatency(duration time.Duration) {}
func (r *recordingCollector) RecordKeywordClick(keyword string) {
	r.clicks = append(r.clicks, keyword)
}
func (r *recordingCollector) RecordPageDownload()                  {}
func (r *recordingCollector) RecordProxyFetchSuccess()             {}
func (r *recordingCollector) RecordProxyFetchFailure(reason string) {}

func newTestService() (*Service, *repository.MemoryKeywordRepo, *recordingCollector) {
	repo := repository.NewMemoryKeywordRepo()
	collector := &recordingCollector{}
	return NewService(repo, collector), repo, collector
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

func TestClick_IncrementsActiveKeyword(t *testing.T) {
	svc, _, collector := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Keyword: "きょうりゅう"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// トリムと大文字小文字の違いは同一キーワードとして扱う
	if err := svc.Click(ctx, "  きょうりゅう  "); err != nil {
		t.Fatalf("Click failed: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ClickCount != 1 {
		t.Errorf("clickCount = %d, want 1", got.ClickCount)
	}
	if len(collector.clicks) != 1 || collector.clicks[0] != "きょうりゅう" {
		t.Errorf("recorded clicks = %v, want [きょうりゅう]", collector.clicks)
	}
}

func TestClick_UnknownKeywordIsSilentNoop(t *testing.T) {
	svc, _, collector := newTestService()

	if err := svc.Click(context.Background(), "そんざいしない"); err != nil {
		t.Fatalf("Click should not fail for unknown keyword: %v", err)
	}
	if len(collector.clicks) != 0 {
		t.Errorf("recorded clicks = %v, want none", collector.clicks)
	}
}

func TestClick_OutsideWindowIsNoop(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	past := time.Now().AddDate(0, 0, -10)
	ended := time.Now().AddDate(0, 0, -1)
	created, err := svc.Create(ctx, CreateInput{Keyword: "なつまつり", StartDate: &past, EndDate: &ended})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Click(ctx, "なつまつり"); err != nil {
		t.Fatalf("Click failed: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ClickCount != 0 {
		t.Errorf("clickCount = %d, want 0 for expired keyword", got.ClickCount)
	}
}

func TestClick_EmptyKeyword(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Click(context.Background(), "   ")
	assertAPIErrorCode(t, err, model.ErrCodeEmptyField)
}

func TestCreate_DuplicateKeyword(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Keyword: "プリンセス"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := svc.Create(ctx, CreateInput{Keyword: " プリンセス "})
	assertAPIErrorCode(t, err, model.ErrCodeDuplicateName)
}

func TestCreate_InvalidDateRange(t *testing.T) {
	svc, _, _ := newTestService()

	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), CreateInput{Keyword: "なつやすみ", StartDate: &start, EndDate: &end})
	assertAPIErrorCode(t, err, model.ErrCodeInvalidRequest)
}

func TestListActive_FiltersAndSortsByDisplayOrder(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	future := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	inactive := false
	two, one := 2, 1

	if _, err := svc.Create(ctx, CreateInput{Keyword: "きょうりゅう", DisplayOrder: &two}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Keyword: "プリンセス", DisplayOrder: &one}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Keyword: "むこう", IsActive: &inactive}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Keyword: "まだ", StartDate: &future}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	active, err := svc.ListActive(ctx, now)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}

	if len(active) != 2 {
		t.Fatalf("len = %d, want 2", len(active))
	}
	if active[0].Keyword != "プリンセス" || active[1].Keyword != "きょうりゅう" {
		t.Errorf("order = [%s, %s], want [プリンセス, きょうりゅう]", active[0].Keyword, active[1].Keyword)
	}
}

func TestUpdate_ClearEndDate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	created, err := svc.Create(ctx, CreateInput{Keyword: "プリンセス", EndDate: &end})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, UpdateInput{ClearEndDate: true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.EndDate != nil {
		t.Errorf("endDate = %v, want nil after clear", updated.EndDate)
	}
}

func TestUpdate_SelfMatchAccepted(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Keyword: "プリンセス"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	text := " プリンセス "
	if _, err := svc.Update(ctx, created.ID, UpdateInput{Keyword: &text}); err != nil {
		t.Fatalf("Update with own keyword should succeed: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Delete(context.Background(), 77)
	assertAPIErrorCode(t, err, model.ErrCodeRecordNotFound)
}
