package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/devconnect/internal/model"
)

// FieldErrorBody は入力検証エラー1件分のレスポンス形式。
type FieldErrorBody struct {
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
}

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// フィールドエラーを持つ場合は {"errors":[...]}、それ以外は {"msg":...} を返す。
type ErrorResponseBody struct {
	Msg    string           `json:"msg,omitempty"`
	Errors []FieldErrorBody `json:"errors,omitempty"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	body := ErrorResponseBody{}
	if len(apiErr.Errors) > 0 {
		body.Errors = make([]FieldErrorBody, 0, len(apiErr.Errors))
		for _, fe := range apiErr.Errors {
			body.Errors = append(body.Errors, FieldErrorBody{
				Msg:      fe.Msg,
				Param:    fe.Param,
				Location: fe.Location,
			})
		}
	} else {
		body.Msg = apiErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}
