package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/devconnect/internal/middleware"
)

// HealthChecker はストアへの疎通確認を行うインターフェース。
// *sql.DB はそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger             *slog.Logger
	TokenVerifier      middleware.TokenVerifier
	CORSAllowedOrigins []string
	Metrics            middleware.HTTPRecorder

	// 運用エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// サービス
	AuthService    AuthServiceInterface
	UserService    UserServiceInterface
	PostService    PostServiceInterface
	ProfileService ProfileServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	SecurityHeaders → Recovery → Logging → Metrics → CORS → (Auth)
//
// 認証ミドルウェアはトークン必須のルートグループにのみ適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigins))

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)
	postHandler := NewPostHandler(deps.PostService)
	profileHandler := NewProfileHandler(deps.ProfileService)
	requireToken := middleware.NewAuthMiddleware(deps.TokenVerifier)

	// --- 運用エンドポイント ---
	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		// --- 認証不要のルート ---
		r.Post("/auth", authHandler.Login)
		r.Post("/users", userHandler.Register)
		r.Get("/profile", profileHandler.List)
		r.Get("/profile/user/{user_id}", profileHandler.GetByUser)
		r.Get("/profile/github/{username}", profileHandler.GitHubRepos)

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(requireToken)

			r.Get("/auth", authHandler.Me)

			// プロフィール管理
			r.Get("/profile/me", profileHandler.GetMine)
			r.Post("/profile", profileHandler.Upsert)
			r.Delete("/profile", userHandler.Withdraw)
			r.Put("/profile/experience", profileHandler.AddExperience)
			r.Delete("/profile/experience/{exp_id}", profileHandler.DeleteExperience)
			r.Put("/profile/education", profileHandler.AddEducation)
			r.Delete("/profile/education/{edu_id}", profileHandler.DeleteEducation)

			// 投稿管理
			r.Route("/posts", func(r chi.Router) {
				r.Post("/", postHandler.Create)
				r.Get("/", postHandler.List)
				r.Get("/{id}", postHandler.Get)
				r.Delete("/{id}", postHandler.Delete)
				r.Put("/like/{id}", postHandler.Like)
				r.Put("/unlike/{id}", postHandler.Unlike)
				r.Post("/comment/{id}", postHandler.AddComment)
				r.Delete("/comment/{id}/{comment_id}", postHandler.DeleteComment)
			})
		})
	})

	return r
}

// healthHandler はストアへの疎通を確認するヘルスチェックハンドラーを返す。
// checkerがnilの場合はプロセスの生存のみを返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := checker.PingContext(ctx); err != nil {
				slog.Warn("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
