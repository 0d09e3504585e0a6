package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/hitoshi/devconnect/internal/auth"
	"github.com/hitoshi/devconnect/internal/config"
	"github.com/hitoshi/devconnect/internal/database"
	"github.com/hitoshi/devconnect/internal/github"
	"github.com/hitoshi/devconnect/internal/handler"
	"github.com/hitoshi/devconnect/internal/logger"
	"github.com/hitoshi/devconnect/internal/metrics"
	"github.com/hitoshi/devconnect/internal/ownership"
	"github.com/hitoshi/devconnect/internal/post"
	"github.com/hitoshi/devconnect/internal/profile"
	"github.com/hitoshi/devconnect/internal/repository"
	"github.com/hitoshi/devconnect/internal/security"
	"github.com/hitoshi/devconnect/internal/user"
)

// Init はアプリケーションの初期化を行う。
// .envファイル（存在する場合）と環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. .envファイルを読み込む（既存の環境変数は上書きしない）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", slog.String("error", err.Error()))
	}

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if !logger.SetLevel(cfg.LogLevel) {
		slog.Warn("unknown log level, falling back to info", slog.String("log_level", cfg.LogLevel))
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg, args[1:])
	default:
		return runServe(cfg)
	}
}

// store はストアドライバごとに構築したリポジトリ群と後始末処理をまとめる。
type store struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	posts    repository.PostRepository
	health   handler.HealthChecker
	close    func()
}

// openStore は設定されたストアドライバに接続し、リポジトリを構築する。
func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, db, err := database.OpenMongo(ctx, cfg.MongoURL, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		slog.Info("mongodb connection established", slog.String("database", cfg.MongoDatabase))

		return &store{
			users:    repository.NewMongoUserRepo(db),
			profiles: repository.NewMongoProfileRepo(db),
			posts:    repository.NewMongoPostRepo(db),
			health:   mongoPinger{client: client},
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					slog.Error("failed to disconnect mongodb", slog.String("error", err.Error()))
				}
			},
		}, nil

	default:
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.Ping(ctx, db, 5*time.Second); err != nil {
			db.Close()
			return nil, err
		}
		slog.Info("database connection established")

		return &store{
			users:    repository.NewPostgresUserRepo(db),
			profiles: repository.NewPostgresProfileRepo(db),
			posts:    repository.NewPostgresPostRepo(db),
			health:   db,
			close:    func() { db.Close() },
		}, nil
	}
}

// mongoPinger はMongoDBクライアントをhandler.HealthCheckerとして扱うアダプタ。
type mongoPinger struct {
	client *mongo.Client
}

func (p mongoPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

// newGitHubClient はGitHubクライアントを構築する。REDIS_URLが設定されていればキャッシュを有効にする。
// 戻り値のcloseはRedis接続を閉じる。
func newGitHubClient(cfg *config.Config, collector *metrics.Collector) (*github.Client, func(), error) {
	opts := []github.Option{
		github.WithToken(cfg.GitHubToken),
		github.WithEndpoint(cfg.GitHubAPIURL),
		github.WithRatePerMinute(cfg.GitHubRatePerMinute),
		github.WithMetrics(collector),
	}

	closeFn := func() {}
	if cfg.RedisURL != "" {
		rdb, err := github.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, github.WithCache(github.NewRedisCache(rdb, cfg.GitHubCacheTTL)))
		closeFn = func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close redis client", slog.String("error", err.Error()))
			}
		}
		slog.Info("github repository cache enabled", slog.Duration("ttl", cfg.GitHubCacheTTL))
	}

	client := github.NewClient(&http.Client{Timeout: cfg.GitHubTimeout}, slog.Default(), opts...)
	return client, closeFn, nil
}

// buildRouter は全依存関係をワイヤリングしてHTTPハンドラーを構築する。
func buildRouter(cfg *config.Config, st *store, repos profile.RepoLister, collector *metrics.Collector, gatherer prometheus.Gatherer) http.Handler {
	// 1. 横断的なコンポーネント
	tokens := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	policy := ownership.NewOwnerOnly()
	sanitizer := security.NewTextSanitizer()

	// 2. ドメインサービス
	authService := auth.NewService(st.users, tokens, hasher, collector)
	postService := post.NewService(st.posts, st.users, policy, sanitizer, collector)
	profileService := profile.NewService(st.profiles, st.users, policy, sanitizer, repos)
	userService := user.NewService(st.users, st.profiles, policy, hasher, tokens)

	// 3. ルーター
	return handler.NewRouter(&handler.RouterDeps{
		Logger:             slog.Default(),
		TokenVerifier:      tokens,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:            collector,
		HealthChecker:      st.health,
		MetricsHandler:     metrics.Handler(gatherer),

		AuthService:    authService,
		UserService:    userService,
		PostService:    postService,
		ProfileService: profileService,
	})
}

// runServe はAPIサーバーモードで起動する。
// ストアに接続し、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx := context.Background()

	// 1. ストア接続
	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.close()

	// 2. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 3. GitHubクライアント
	ghClient, closeGitHub, err := newGitHubClient(cfg, collector)
	if err != nil {
		return fmt.Errorf("failed to set up github client: %w", err)
	}
	defer closeGitHub()

	// 4. ルーターの構築
	router := buildRouter(cfg, st, ghClient, collector, registry)

	// 5. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はスキーマの準備を行う。
// PostgreSQLでは未適用マイグレーションを適用し、"down [N]" でN件（既定1件）巻き戻す。
// MongoDBではインデックスを作成する。
func runMigrate(cfg *config.Config, args []string) error {
	if cfg.StoreDriver == config.StoreDriverMongo {
		ctx := context.Background()
		client, db, err := database.OpenMongo(ctx, cfg.MongoURL, cfg.MongoDatabase)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		defer client.Disconnect(context.Background())

		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		slog.Info("mongodb indexes ensured", slog.String("database", cfg.MongoDatabase))
		return nil
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if len(args) > 0 && args[0] == "down" {
		steps, err := parseSteps(args[1:])
		if err != nil {
			return err
		}
		version, err := database.RollbackMigrations(cfg.DatabaseURL, steps)
		if err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		slog.Info("database migrations rolled back",
			slog.Int("steps", steps),
			slog.Uint64("version", uint64(version)),
		)
		return nil
	}

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

// parseSteps は "migrate down" に続く巻き戻し件数を解析する。省略時は1。
func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(args[0])
	if err != nil || steps <= 0 {
		return 0, fmt.Errorf("invalid rollback steps: %q", args[0])
	}
	return steps, nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
