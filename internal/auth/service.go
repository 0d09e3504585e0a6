// Package auth はトークンの発行・検証、パスワード照合、ログイン処理を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/hitoshi/devconnect/internal/model"
	"github.com/hitoshi/devconnect/internal/repository"
	"github.com/hitoshi/devconnect/internal/validate"
)

// LoginInput はログインリクエストの入力。
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate はログイン入力を検証する。
func (in *LoginInput) Validate() error {
	return validate.Struct(in,
		validation.Field(&in.Email,
			validation.Required.Error("Please include a valid email"),
			is.EmailFormat.Error("Please include a valid email"),
		),
		validation.Field(&in.Password, validation.Required.Error("Password is required")),
	)
}

// TokenIssuer はユーザーIDからトークンを発行するインターフェース。
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// PasswordComparer はパスワード照合のインターフェース。
type PasswordComparer interface {
	Compare(hash, password string) (bool, error)
	DummyHash() string
}

// LoginRecorder はログイン結果をメトリクスに記録するインターフェース。
type LoginRecorder interface {
	RecordLogin(success bool)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	hasher   PasswordComparer
	metrics  LoginRecorder
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	tokens TokenIssuer,
	hasher PasswordComparer,
	metrics LoginRecorder,
) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
		metrics:  metrics,
	}
}

// Login はメールアドレスとパスワードを照合し、トークンを発行する。
// 未登録のメールアドレスとパスワード不一致は同一のエラーを返し、どちらもパスワード照合を行う。
func (s *Service) Login(ctx context.Context, in LoginInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		return "", fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		// 未登録でも照合を行い、応答時間からメールアドレスの存在が分からないようにする
		_, _ = s.hasher.Compare(s.hasher.DummyHash(), in.Password)
		s.recordLogin(false)
		return "", model.NewInvalidCredentialsError()
	}

	ok, err := s.hasher.Compare(user.PasswordHash, in.Password)
	if err != nil {
		return "", err
	}
	if !ok {
		s.recordLogin(false)
		return "", model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}

	s.recordLogin(true)
	slog.Info("ログインに成功しました",
		slog.String("user_id", user.ID),
	)

	return token, nil
}

// CurrentUser はトークンから得たユーザーIDに対応するユーザーを返す。
// トークン発行後にユーザーが削除されていた場合はUserNotFoundエラーを返す。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

func (s *Service) recordLogin(success bool) {
	if s.metrics != nil {
		s.metrics.RecordLogin(success)
	}
}

// NormalizeEmail はメールアドレスを照合用に正規化する。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
