package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/devconnect/internal/model"
	"github.com/hitoshi/devconnect/internal/post"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	Create(ctx context.Context, userID string, in post.TextInput) (*model.Post, error)
	List(ctx context.Context) ([]*model.Post, error)
	Get(ctx context.Context, postID string) (*model.Post, error)
	Delete(ctx context.Context, actorID, postID string) error
	Like(ctx context.Context, actorID, postID string) ([]model.Like, error)
	Unlike(ctx context.Context, actorID, postID string) ([]model.Like, error)
	AddComment(ctx context.Context, actorID, postID string, in post.TextInput) ([]model.Comment, error)
	DeleteComment(ctx context.Context, actorID, postID, commentID string) ([]model.Comment, error)
}

// PostHandler は投稿関連のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

// Create は投稿を作成する。
// POST /api/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in post.TextInput
	if err := decodeJSON(r, &in); err != nil {
		handleServiceError(w, r, err)
		return
	}

	p, err := h.service.Create(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponse(p))
}

// List は全投稿を新しい順に返す。
// GET /api/posts
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponses(posts))
}

// Get は投稿を1件返す。
// GET /api/posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponse(p))
}

// Delete は投稿を削除する。投稿者本人のみ削除できる。
// DELETE /api/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, msgResponse{Msg: "Post deleted"})
}

// Like は投稿にいいねし、更新後のいいね一覧を返す。
// PUT /api/posts/like/{id}
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	likes, err := h.service.Like(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNilLikes(likes))
}

// Unlike はいいねを取り消し、更新後のいいね一覧を返す。
// PUT /api/posts/unlike/{id}
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	likes, err := h.service.Unlike(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNilLikes(likes))
}

// AddComment はコメントを追加し、更新後のコメント一覧を返す。
// POST /api/posts/comment/{id}
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in post.TextInput
	if err := decodeJSON(r, &in); err != nil {
		handleServiceError(w, r, err)
		return
	}

	comments, err := h.service.AddComment(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNilComments(comments))
}

// DeleteComment はコメントを削除し、更新後のコメント一覧を返す。
// DELETE /api/posts/comment/{id}/{comment_id}
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	comments, err := h.service.DeleteComment(r.Context(), userID,
		chi.URLParam(r, "id"), chi.URLParam(r, "comment_id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNilComments(comments))
}
