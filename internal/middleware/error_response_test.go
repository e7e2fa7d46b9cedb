package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/nurie/internal/model"
)

func TestWriteErrorResponse_Envelope(t *testing.T) {
	w := httptest.NewRecorder()

	WriteErrorResponse(w, http.StatusConflict, model.NewDuplicateNameError("Disney World"))

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body.Success {
		t.Error("expected success = false")
	}
	if body.Error != model.ErrCodeDuplicateName {
		t.Errorf("error = %s, want %s", body.Error, model.ErrCodeDuplicateName)
	}
	if body.Message == "" || body.Action == "" {
		t.Error("expected non-empty message and action")
	}
	if body.Category != "catalog" {
		t.Errorf("category = %s, want catalog", body.Category)
	}
}

func TestWriteInternalServerError_HidesDetails(t *testing.T) {
	w := httptest.NewRecorder()

	WriteInternalServerError(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error != "INTERNAL_ERROR" {
		t.Errorf("error = %s, want INTERNAL_ERROR", body.Error)
	}
	if body.Category != "system" {
		t.Errorf("category = %s, want system", body.Category)
	}
}
