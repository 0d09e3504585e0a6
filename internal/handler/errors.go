package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/devconnect/internal/middleware"
	"github.com/hitoshi/devconnect/internal/model"
)

// maxBodyBytes はリクエストボディの上限サイズ。
const maxBodyBytes = 1 << 20

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidationFailed, model.ErrCodeInvalidRequest,
		model.ErrCodeInvalidCredentials, model.ErrCodeUserAlreadyExists:
		return http.StatusBadRequest
	case model.ErrCodeProfileNotFound:
		return http.StatusBadRequest
	case model.ErrCodeAlreadyLiked, model.ErrCodeNotLiked:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized, model.ErrCodeNotAuthorized:
		return http.StatusUnauthorized
	case model.ErrCodePostNotFound, model.ErrCodeCommentNotFound,
		model.ErrCodeExperienceNotFound, model.ErrCodeEducationNotFound,
		model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeGitHubProfileNotFound:
		return http.StatusNotFound
	case model.ErrCodeConcurrentUpdate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON はリクエストボディをdstにデコードする。
// 空ボディはゼロ値として扱い、後段の入力検証に委ねる。
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return model.NewInvalidRequestError()
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// msgResponse は {"msg": ...} 形式の成功レスポンス。
type msgResponse struct {
	Msg string `json:"msg"`
}

// tokenResponse はトークン発行レスポンス。
type tokenResponse struct {
	Token string `json:"token"`
}

// requireUserID は認証済みユーザーIDを取り出す。
// 取得できない場合は401を書き込みfalseを返す。
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewMissingTokenError())
		return "", false
	}
	return userID, true
}
