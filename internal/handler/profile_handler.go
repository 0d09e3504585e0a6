package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/devconnect/internal/model"
	"github.com/hitoshi/devconnect/internal/profile"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	GetMine(ctx context.Context, userID string) (*model.Profile, error)
	GetByUser(ctx context.Context, userID string) (*model.Profile, error)
	List(ctx context.Context) ([]*model.Profile, error)
	// Upsert はプロフィールを作成または更新する。新規作成時はtrueを返す。
	Upsert(ctx context.Context, userID string, in profile.ProfileInput) (*model.Profile, bool, error)
	AddExperience(ctx context.Context, actorID string, in profile.ExperienceInput) (*model.Profile, error)
	DeleteExperience(ctx context.Context, actorID, expID string) (*model.Profile, error)
	AddEducation(ctx context.Context, actorID string, in profile.EducationInput) (*model.Profile, error)
	DeleteEducation(ctx context.Context, actorID, eduID string) (*model.Profile, error)
	GitHubRepos(ctx context.Context, username string) ([]model.Repo, error)
}

// ProfileHandler はプロフィール関連のHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetMine は自分のプロフィールを返す。
// GET /api/profile/me
func (h *ProfileHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	p, err := h.service.GetMine(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// Upsert はプロフィールを作成または更新する。
// 作成時は201、更新時は200を返す。
// POST /api/profile
func (h *ProfileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in profile.ProfileInput
	if err := decodeJSON(r, &in); err != nil {
		handleServiceError(w, r, err)
		return
	}

	p, created, err := h.service.Upsert(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toProfileResponse(p))
}

// List は全プロフィールを返す。
// GET /api/profile
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponses(profiles))
}

// GetByUser は指定ユーザーのプロフィールを返す。
// GET /api/profile/user/{user_id}
func (h *ProfileHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetByUser(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// AddExperience は職歴を追加する。
// PUT /api/profile/experience
func (h *ProfileHandler) AddExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in profile.ExperienceInput
	if err := decodeJSON(r, &in); err != nil {
		handleServiceError(w, r, err)
		return
	}

	p, err := h.service.AddExperience(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// DeleteExperience は職歴を削除する。
// DELETE /api/profile/experience/{exp_id}
func (h *ProfileHandler) DeleteExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	p, err := h.service.DeleteExperience(r.Context(), userID, chi.URLParam(r, "exp_id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// AddEducation は学歴を追加する。
// PUT /api/profile/education
func (h *ProfileHandler) AddEducation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var in profile.EducationInput
	if err := decodeJSON(r, &in); err != nil {
		handleServiceError(w, r, err)
		return
	}

	p, err := h.service.AddEducation(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// DeleteEducation は学歴を削除する。
// DELETE /api/profile/education/{edu_id}
func (h *ProfileHandler) DeleteEducation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	p, err := h.service.DeleteEducation(r.Context(), userID, chi.URLParam(r, "edu_id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// GitHubRepos は指定GitHubユーザーの公開リポジトリを返す。
// GET /api/profile/github/{username}
func (h *ProfileHandler) GitHubRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.service.GitHubRepos(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if repos == nil {
		repos = []model.Repo{}
	}

	writeJSON(w, http.StatusOK, repos)
}
