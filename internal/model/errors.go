// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, library, system
	Action   string // ユーザー向け対処方法

	// Fields はフィールド単位のバリデーションエラー（任意）。
	Fields map[string]string
	// cause は診断ログ用の内部原因。レスポンスには含めない。
	cause error
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap は内部原因を返す。
func (e *APIError) Unwrap() error {
	return e.cause
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeAuthFailed         = "AUTH_FAILED"
	ErrCodeConflict           = "CONFLICT"
)

// IsCode はerrがAPIErrorで指定コードを持つかどうかを判定する。
func IsCode(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidInputError は入力値不正エラーを生成する。
func NewInvalidInputError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  fmt.Sprintf("入力値が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewValidationError はフィールド単位のバリデーションエラーを生成する。
// fieldsのキーはフィールド名、値はエラーメッセージ。
func NewValidationError(fields map[string]string) *APIError {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  fmt.Sprintf("入力値が不正です: %s", strings.Join(names, ", ")),
		Category: "validation",
		Action:   "入力内容を確認してください。",
		Fields:   fields,
	}
}

// NewStorageUnavailableError はストレージ障害エラーを生成する。
// causeは診断ログにのみ記録され、利用者には一般的なメッセージのみを返す。
func NewStorageUnavailableError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeStorageUnavailable,
		Message:  "一時的にデータを利用できません。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
		cause:    cause,
	}
}

// NewAudiobookNotFoundError はオーディオブック未検出エラーを生成する。
func NewAudiobookNotFoundError(audiobookID int64) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("指定されたオーディオブックが見つかりません: %d", audiobookID),
		Category: "library",
		Action:   "ライブラリから選び直してください。",
	}
}

// NewAuthFailedError はログイン失敗エラーを生成する。
// ユーザー未登録とパスワード不一致を区別しない。
func NewAuthFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailed,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewDuplicateAccountError はユーザー名またはメールアドレスの重複エラーを生成する。
func NewDuplicateAccountError() *APIError {
	return &APIError{
		Code:     ErrCodeConflict,
		Message:  "ユーザー名またはメールアドレスは既に使用されています。",
		Category: "auth",
		Action:   "別のユーザー名またはメールアドレスを指定してください。",
	}
}
