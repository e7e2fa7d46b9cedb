// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, catalog, proxy, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInvalidPagination  = "INVALID_PAGINATION"
	ErrCodeEmptyField         = "EMPTY_FIELD"
	ErrCodeInvalidDifficulty  = "INVALID_DIFFICULTY"
	ErrCodeRecordNotFound     = "RECORD_NOT_FOUND"
	ErrCodeDuplicateName      = "DUPLICATE_NAME"
	ErrCodeDuplicateSlug      = "DUPLICATE_SLUG"
	ErrCodeHasDependentPages  = "HAS_DEPENDENT_PAGES"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidURL         = "INVALID_URL"
	ErrCodeHostNotAllowed     = "HOST_NOT_ALLOWED"
	ErrCodeUpstreamFetch      = "UPSTREAM_FETCH_FAILED"
)

// NewInvalidRequestError はリクエスト形式エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト形式を確認してください。",
	}
}

// NewInvalidPaginationError はページネーションパラメータの範囲外エラーを生成する。
func NewInvalidPaginationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPagination,
		Message:  fmt.Sprintf("ページネーションパラメータが不正です: %s", reason),
		Category: "validation",
		Action:   "pageは1以上、limitは1〜50の範囲で指定してください。",
	}
}

// NewEmptyFieldError は必須フィールド未入力エラーを生成する。
func NewEmptyFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeEmptyField,
		Message:  fmt.Sprintf("%s は必須です。", field),
		Category: "validation",
		Action:   fmt.Sprintf("%s を入力してください。", field),
	}
}

// NewInvalidDifficultyError は未定義の難易度値エラーを生成する。
func NewInvalidDifficultyError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDifficulty,
		Message:  fmt.Sprintf("無効な難易度です: %s", value),
		Category: "validation",
		Action:   "難易度には easy、medium、hard のいずれかを指定してください。",
	}
}

// NewNotFoundError はレコード未検出エラーを生成する。
func NewNotFoundError(entity string, id int64) *APIError {
	return &APIError{
		Code:     ErrCodeRecordNotFound,
		Message:  fmt.Sprintf("指定された%sが見つかりません: id=%d", entity, id),
		Category: "catalog",
		Action:   "IDを確認してください。",
	}
}

// NewDuplicateNameError は名前の重複エラーを生成する。
// 比較はトリム後の小文字同士で行われる。
func NewDuplicateNameError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateName,
		Message:  fmt.Sprintf("同じ名前が既に登録されています: %s", name),
		Category: "catalog",
		Action:   "別の名前を指定してください。大文字小文字の違いは同一とみなされます。",
	}
}

// NewDuplicateSlugError はスラッグの重複エラーを生成する。
func NewDuplicateSlugError(slug string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateSlug,
		Message:  fmt.Sprintf("同じスラッグが既に登録されています: %s", slug),
		Category: "catalog",
		Action:   "別のスラッグを指定してください。大文字小文字の違いは同一とみなされます。",
	}
}

// NewHasDependentPagesError は依存ページが存在するための削除拒否エラーを生成する。
func NewHasDependentPagesError(name string, pageCount int) *APIError {
	return &APIError{
		Code:     ErrCodeHasDependentPages,
		Message:  fmt.Sprintf("%s には%d件のページが紐付いているため削除できません。", name, pageCount),
		Category: "catalog",
		Action:   "先に紐付いているページを削除または移動してください。",
	}
}

// NewUnauthorizedError は認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "管理者権限が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// セキュリティ上、メールアドレスとパスワードのどちらが誤っているかは通知しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "認証情報を確認してください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を指定してください。",
	}
}

// NewHostNotAllowedError は許可リスト外ホストへのプロキシ要求エラーを生成する。
func NewHostNotAllowedError(host string) *APIError {
	return &APIError{
		Code:     ErrCodeHostNotAllowed,
		Message:  fmt.Sprintf("このホストの画像は取得できません: %s", host),
		Category: "proxy",
		Action:   "許可されている画像ホストのURLを指定してください。",
	}
}

// NewUpstreamFetchError は外部画像取得の失敗エラーを生成する。
func NewUpstreamFetchError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamFetch,
		Message:  fmt.Sprintf("画像の取得に失敗しました: %s", reason),
		Category: "proxy",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
