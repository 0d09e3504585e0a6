package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/devconnect/internal/auth"
	"github.com/hitoshi/devconnect/internal/middleware"
	"github.com/hitoshi/devconnect/internal/model"
	"github.com/hitoshi/devconnect/internal/post"
	"github.com/hitoshi/devconnect/internal/profile"
	"github.com/hitoshi/devconnect/internal/user"
)

// --- モック定義 ---

type mockAuthService struct {
	loginFn       func(ctx context.Context, in auth.LoginInput) (string, error)
	currentUserFn func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, in auth.LoginInput) (string, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, in)
	}
	return "", nil
}

func (m *mockAuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, userID)
	}
	return nil, model.NewUserNotFoundError()
}

type mockUserService struct {
	registerFn func(ctx context.Context, in user.RegisterInput) (string, error)
	withdrawFn func(ctx context.Context, actorID string) error
}

func (m *mockUserService) Register(ctx context.Context, in user.RegisterInput) (string, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return "", nil
}

func (m *mockUserService) Withdraw(ctx context.Context, actorID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, actorID)
	}
	return nil
}

type mockPostService struct {
	createFn        func(ctx context.Context, userID string, in post.TextInput) (*model.Post, error)
	listFn          func(ctx context.Context) ([]*model.Post, error)
	getFn           func(ctx context.Context, postID string) (*model.Post, error)
	deleteFn        func(ctx context.Context, actorID, postID string) error
	likeFn          func(ctx context.Context, actorID, postID string) ([]model.Like, error)
	unlikeFn        func(ctx context.Context, actorID, postID string) ([]model.Like, error)
	addCommentFn    func(ctx context.Context, actorID, postID string, in post.TextInput) ([]model.Comment, error)
	deleteCommentFn func(ctx context.Context, actorID, postID, commentID string) ([]model.Comment, error)
}

func (m *mockPostService) Create(ctx context.Context, userID string, in post.TextInput) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return &model.Post{}, nil
}

func (m *mockPostService) List(ctx context.Context) ([]*model.Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockPostService) Get(ctx context.Context, postID string) (*model.Post, error) {
	if m.getFn != nil {
		return m.getFn(ctx, postID)
	}
	return nil, model.NewPostNotFoundError()
}

func (m *mockPostService) Delete(ctx context.Context, actorID, postID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, actorID, postID)
	}
	return nil
}

func (m *mockPostService) Like(ctx context.Context, actorID, postID string) ([]model.Like, error) {
	if m.likeFn != nil {
		return m.likeFn(ctx, actorID, postID)
	}
	return nil, nil
}

func (m *mockPostService) Unlike(ctx context.Context, actorID, postID string) ([]model.Like, error) {
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, actorID, postID)
	}
	return nil, nil
}

func (m *mockPostService) AddComment(ctx context.Context, actorID, postID string, in post.TextInput) ([]model.Comment, error) {
	if m.addCommentFn != nil {
		return m.addCommentFn(ctx, actorID, postID, in)
	}
	return nil, nil
}

func (m *mockPostService) DeleteComment(ctx context.Context, actorID, postID, commentID string) ([]model.Comment, error) {
	if m.deleteCommentFn != nil {
		return m.deleteCommentFn(ctx, actorID, postID, commentID)
	}
	return nil, nil
}

type mockProfileService struct {
	getMineFn          func(ctx context.Context, userID string) (*model.Profile, error)
	getByUserFn        func(ctx context.Context, userID string) (*model.Profile, error)
	listFn             func(ctx context.Context) ([]*model.Profile, error)
	upsertFn           func(ctx context.Context, userID string, in profile.ProfileInput) (*model.Profile, bool, error)
	addExperienceFn    func(ctx context.Context, actorID string, in profile.ExperienceInput) (*model.Profile, error)
	deleteExperienceFn func(ctx context.Context, actorID, expID string) (*model.Profile, error)
	addEducationFn     func(ctx context.Context, actorID string, in profile.EducationInput) (*model.Profile, error)
	deleteEducationFn  func(ctx context.Context, actorID, eduID string) (*model.Profile, error)
	gitHubReposFn      func(ctx context.Context, username string) ([]model.Repo, error)
}

func (m *mockProfileService) GetMine(ctx context.Context, userID string) (*model.Profile, error) {
	if m.getMineFn != nil {
		return m.getMineFn(ctx, userID)
	}
	return nil, model.NewProfileNotFoundError("There is no profile for this user")
}

func (m *mockProfileService) GetByUser(ctx context.Context, userID string) (*model.Profile, error) {
	if m.getByUserFn != nil {
		return m.getByUserFn(ctx, userID)
	}
	return nil, model.NewProfileNotFoundError("Profile not found")
}

func (m *mockProfileService) List(ctx context.Context) ([]*model.Profile, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockProfileService) Upsert(ctx context.Context, userID string, in profile.ProfileInput) (*model.Profile, bool, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, userID, in)
	}
	return &model.Profile{UserID: userID}, true, nil
}

func (m *mockProfileService) AddExperience(ctx context.Context, actorID string, in profile.ExperienceInput) (*model.Profile, error) {
	if m.addExperienceFn != nil {
		return m.addExperienceFn(ctx, actorID, in)
	}
	return &model.Profile{UserID: actorID}, nil
}

func (m *mockProfileService) DeleteExperience(ctx context.Context, actorID, expID string) (*model.Profile, error) {
	if m.deleteExperienceFn != nil {
		return m.deleteExperienceFn(ctx, actorID, expID)
	}
	return &model.Profile{UserID: actorID}, nil
}

func (m *mockProfileService) AddEducation(ctx context.Context, actorID string, in profile.EducationInput) (*model.Profile, error) {
	if m.addEducationFn != nil {
		return m.addEducationFn(ctx, actorID, in)
	}
	return &model.Profile{UserID: actorID}, nil
}

func (m *mockProfileService) DeleteEducation(ctx context.Context, actorID, eduID string) (*model.Profile, error) {
	if m.deleteEducationFn != nil {
		return m.deleteEducationFn(ctx, actorID, eduID)
	}
	return &model.Profile{UserID: actorID}, nil
}

func (m *mockProfileService) GitHubRepos(ctx context.Context, username string) ([]model.Repo, error) {
	if m.gitHubReposFn != nil {
		return m.gitHubReposFn(ctx, username)
	}
	return nil, nil
}

// --- ヘルパー ---

// withUserID はテスト用にコンテキストにユーザーIDを注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseErrorBody はレスポンスボディからエラーレスポンスをパースするヘルパー。
func parseErrorBody(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}
