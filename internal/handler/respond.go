// Package handler はHTTP APIのハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/nurie/internal/middleware"
	"github.com/hitoshi/nurie/internal/model"
)

// successEnvelope は成功レスポンスの統一フォーマット。
type successEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// writeSuccess は統一フォーマットで成功レスポンスを書き込む。
func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(successEnvelope{
		Success: true,
		Data:    data,
	})
}

// writeSuccessMessage はデータなしの成功レスポンスをメッセージ付きで書き込む。
func writeSuccessMessage(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(successEnvelope{
		Success: true,
		Message: message,
	})
}

// writeAPIError は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIError(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIError(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
// 入力形式の誤りは400、状態の衝突（重複・依存）は409に分類する。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidRequest,
		model.ErrCodeInvalidPagination,
		model.ErrCodeEmptyField,
		model.ErrCodeInvalidDifficulty,
		model.ErrCodeInvalidURL:
		return http.StatusBadRequest
	case model.ErrCodeRecordNotFound:
		return http.StatusNotFound
	case model.ErrCodeDuplicateName,
		model.ErrCodeDuplicateSlug,
		model.ErrCodeHasDependentPages:
		return http.StatusConflict
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeHostNotAllowed:
		return http.StatusForbidden
	case model.ErrCodeUpstreamFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSONBody はリクエストボディをJSONとしてデコードする。
// 解析に失敗した場合はfalseを返し、400レスポンスを書き込み済みにする。
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeAPIError(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return false
	}
	return true
}

// pathID はURLパスの{id}パラメータをint64として取り出す。
// 数値でない場合はfalseを返し、400レスポンスを書き込み済みにする。
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeAPIError(w, http.StatusBadRequest, model.NewInvalidRequestError("idは正の整数を指定してください"))
		return 0, false
	}
	return id, true
}
