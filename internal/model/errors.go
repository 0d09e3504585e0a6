// Package model はドメインモデルを定義する。
package model

import "fmt"

// FieldError は入力検証エラー1件分を表す。
// レスポンスでは {"msg","param","location"} の形で返す。
type FieldError struct {
	Msg      string
	Param    string
	Location string
}

// APIError は統一エラーフォーマットを表す。
// Errors が空でない場合はフィールド単位のエラー一覧として返す。
type APIError struct {
	Code    string       // エラーコード（HTTPステータスへのマッピングに使用）
	Message string       // クライアントに返すメッセージ
	Errors  []FieldError // 入力検証エラー一覧
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Message == "" && len(e.Errors) > 0 {
		return fmt.Sprintf("[%s] %s", e.Code, e.Errors[0].Msg)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed      = "VALIDATION_FAILED"
	ErrCodeInvalidRequest        = "INVALID_REQUEST"
	ErrCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	ErrCodeUserAlreadyExists     = "USER_ALREADY_EXISTS"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeNotAuthorized         = "NOT_AUTHORIZED"
	ErrCodeUserNotFound          = "USER_NOT_FOUND"
	ErrCodePostNotFound          = "POST_NOT_FOUND"
	ErrCodeCommentNotFound       = "COMMENT_NOT_FOUND"
	ErrCodeProfileNotFound       = "PROFILE_NOT_FOUND"
	ErrCodeExperienceNotFound    = "EXPERIENCE_NOT_FOUND"
	ErrCodeEducationNotFound     = "EDUCATION_NOT_FOUND"
	ErrCodeAlreadyLiked          = "ALREADY_LIKED"
	ErrCodeNotLiked              = "NOT_LIKED"
	ErrCodeGitHubProfileNotFound = "GITHUB_PROFILE_NOT_FOUND"
	ErrCodeConcurrentUpdate      = "CONCURRENT_UPDATE"
	ErrCodeInternal              = "INTERNAL_ERROR"
)

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(errs []FieldError) *APIError {
	return &APIError{
		Code:   ErrCodeValidationFailed,
		Errors: errs,
	}
}

// NewInvalidRequestError はリクエストボディが解析できない場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidRequest,
		Message: "Invalid request body",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// メールアドレス未登録とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:   ErrCodeInvalidCredentials,
		Errors: []FieldError{{Msg: "Invalid credentials"}},
	}
}

// NewUserAlreadyExistsError はメールアドレス重複エラーを生成する。
func NewUserAlreadyExistsError() *APIError {
	return &APIError{
		Code:   ErrCodeUserAlreadyExists,
		Errors: []FieldError{{Msg: "User already exists"}},
	}
}

// NewMissingTokenError はトークン未指定エラーを生成する。
func NewMissingTokenError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: "No token found, authorization denied",
	}
}

// NewInvalidTokenError はトークン検証失敗エラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: "Token is not valid",
	}
}

// NewNotAuthorizedError は所有者以外による操作を拒否するエラーを生成する。
func NewNotAuthorizedError(msg string) *APIError {
	return &APIError{
		Code:    ErrCodeNotAuthorized,
		Message: msg,
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeUserNotFound,
		Message: "User not found",
	}
}

// NewPostNotFoundError は投稿が見つからない場合のエラーを生成する。
func NewPostNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodePostNotFound,
		Message: "Post not found",
	}
}

// NewCommentNotFoundError はコメントが見つからない場合のエラーを生成する。
func NewCommentNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeCommentNotFound,
		Message: "Comment does not exist",
	}
}

// NewProfileNotFoundError はプロフィールが見つからない場合のエラーを生成する。
// 自分のプロフィール取得と他ユーザーのプロフィール取得でメッセージが異なる。
func NewProfileNotFoundError(msg string) *APIError {
	return &APIError{
		Code:    ErrCodeProfileNotFound,
		Message: msg,
	}
}

// NewExperienceNotFoundError は職歴エントリが見つからない場合のエラーを生成する。
func NewExperienceNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeExperienceNotFound,
		Message: "Experience not found",
	}
}

// NewEducationNotFoundError は学歴エントリが見つからない場合のエラーを生成する。
func NewEducationNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeEducationNotFound,
		Message: "Education not found",
	}
}

// NewAlreadyLikedError は同一ユーザーによる二重いいねのエラーを生成する。
func NewAlreadyLikedError() *APIError {
	return &APIError{
		Code:    ErrCodeAlreadyLiked,
		Message: "Post already liked",
	}
}

// NewNotLikedError はいいねしていない投稿のいいね取り消しエラーを生成する。
func NewNotLikedError() *APIError {
	return &APIError{
		Code:    ErrCodeNotLiked,
		Message: "Post has not yet been liked",
	}
}

// NewGitHubProfileNotFoundError は外部リポジトリ一覧の取得失敗エラーを生成する。
// 上流の失敗理由はログにのみ記録し、クライアントには返さない。
func NewGitHubProfileNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeGitHubProfileNotFound,
		Message: "No Github profile found",
	}
}

// NewConcurrentUpdateError は楽観的排他制御で競合を検出した場合のエラーを生成する。
func NewConcurrentUpdateError() *APIError {
	return &APIError{
		Code:    ErrCodeConcurrentUpdate,
		Message: "Resource was modified concurrently, please retry",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:    ErrCodeInternal,
		Message: "Server Error",
	}
}
