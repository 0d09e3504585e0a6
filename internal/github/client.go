// Package github はGitHub APIからユーザーの公開リポジトリ一覧を取得する。
// 送信側のレート制限とRedisによる任意のキャッシュを持つ。
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/hitoshi/devconnect/internal/model"
)

const (
	// defaultEndpoint はGitHub APIのベースURL。
	defaultEndpoint = "https://api.github.com"
	// reposPerPage は1回に取得するリポジトリ数。
	reposPerPage = "5"
	// reposSort は取得順序。
	reposSort = "created:asc"
	// maxBodyBytes はレスポンスボディの読み取り上限。
	maxBodyBytes = 1 << 20
	userAgent    = "devconnect/1.0"
)

// ErrRateLimited は送信側のレート上限に達した場合のエラー。
var ErrRateLimited = errors.New("github: outbound rate limit exceeded")

// 取得結果の分類（メトリクスのラベル値）
const (
	OutcomeSuccess     = "success"
	OutcomeCacheHit    = "cache_hit"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// RepoCache はリポジトリ一覧のキャッシュインターフェース。
// Getはキャッシュに存在しない場合 (nil, false, nil) を返す。
type RepoCache interface {
	Get(ctx context.Context, username string) ([]model.Repo, bool, error)
	Set(ctx context.Context, username string, repos []model.Repo) error
}

// FetchRecorder は取得結果をメトリクスに記録するインターフェース。
type FetchRecorder interface {
	RecordGitHubFetch(outcome string)
}

// Client はGitHub APIのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	token      string
	limiter    *rate.Limiter
	cache      RepoCache
	metrics    FetchRecorder
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// Option はClientの任意設定。
type Option func(*Client)

// WithToken は認証トークンを設定する。空の場合はAuthorizationヘッダーを送らない。
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithEndpoint はAPIのベースURLを設定する。
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithRatePerMinute は1分あたりの送信上限を設定する。0以下の場合は制限しない。
func WithRatePerMinute(n int) Option {
	return func(c *Client) {
		if n <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(n)/60.0), n)
	}
}

// WithCache はキャッシュを設定する。
func WithCache(cache RepoCache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithMetrics はメトリクス記録先を設定する。
func WithMetrics(m FetchRecorder) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient はClientの新しいインスタンスを生成する。
// タイムアウトはhttpClientに設定されたものを使用する。
func NewClient(httpClient *http.Client, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   defaultEndpoint,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListRepos は指定ユーザーの公開リポジトリを作成日時の古い順に最大5件取得する。
// レート上限到達時は待機せずErrRateLimitedを返す。
func (c *Client) ListRepos(ctx context.Context, username string) ([]model.Repo, error) {
	if c.cache != nil {
		repos, ok, err := c.cache.Get(ctx, username)
		if err != nil {
			c.logger.Warn("リポジトリ一覧キャッシュの読み取りに失敗しました",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		} else if ok {
			c.record(OutcomeCacheHit)
			return repos, nil
		}
	}

	if c.limiter != nil && !c.limiter.Allow() {
		c.record(OutcomeRateLimited)
		return nil, ErrRateLimited
	}

	repos, err := c.fetch(ctx, username)
	if err != nil {
		c.record(OutcomeError)
		return nil, err
	}
	c.record(OutcomeSuccess)

	if c.cache != nil {
		if err := c.cache.Set(ctx, username, repos); err != nil {
			c.logger.Warn("リポジトリ一覧キャッシュの書き込みに失敗しました",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
	}
	return repos, nil
}

func (c *Client) fetch(ctx context.Context, username string) ([]model.Repo, error) {
	// リクエストURL構築
	reqURL, err := url.Parse(c.endpoint + "/users/" + url.PathEscape(username) + "/repos")
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}
	q := reqURL.Query()
	q.Set("per_page", reposPerPage)
	q.Set("sort", reposSort)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("GitHub APIの呼び出しに失敗しました",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("GitHub APIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("GitHub APIがエラーステータスを返しました",
			slog.String("username", username),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("GitHub APIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	repos := []model.Repo{}
	if err := json.Unmarshal(body, &repos); err != nil {
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	return repos, nil
}

func (c *Client) record(outcome string) {
	if c.metrics != nil {
		c.metrics.RecordGitHubFetch(outcome)
	}
}
