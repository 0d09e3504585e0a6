// Package user はユーザー登録と退会のドメインロジックを提供する。
package user

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/hitoshi/devconnect/internal/auth"
	"github.com/hitoshi/devconnect/internal/model"
	"github.com/hitoshi/devconnect/internal/ownership"
	"github.com/hitoshi/devconnect/internal/repository"
	"github.com/hitoshi/devconnect/internal/validate"
)

// PasswordHasher はパスワードのハッシュ化インターフェース。
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// ProfileFinder は退会時に保持者を確認するためのプロフィール参照インターフェース。
type ProfileFinder interface {
	FindByUserID(ctx context.Context, userID string) (*model.Profile, error)
}

// RegisterInput はユーザー登録リクエストの入力。
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate は登録入力を検証する。
func (in *RegisterInput) Validate() error {
	return validate.Struct(in,
		validation.Field(&in.Name, validation.Required.Error("Name is required")),
		validation.Field(&in.Email,
			validation.Required.Error("Please include a valid email"),
			is.EmailFormat.Error("Please include a valid email"),
		),
		validation.Field(&in.Password,
			validation.Required.Error("Please enter a password with 6 or more characters"),
			validation.RuneLength(6, 0).Error("Please enter a password with 6 or more characters"),
		),
	)
}

// Service はユーザー管理のサービス層。
// 登録と退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	profiles ProfileFinder
	policy   ownership.Policy
	hasher   PasswordHasher
	tokens   auth.TokenIssuer
	now      func() time.Time
	newID    func() string
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	profiles ProfileFinder,
	policy ownership.Policy,
	hasher PasswordHasher,
	tokens auth.TokenIssuer,
) *Service {
	return &Service{
		userRepo: userRepo,
		profiles: profiles,
		policy:   policy,
		hasher:   hasher,
		tokens:   tokens,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Register はユーザーを登録し、ログイン済みとしてトークンを発行する。
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return "", err
	}

	email := auth.NormalizeEmail(in.Email)
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if existing != nil {
		return "", model.NewUserAlreadyExistsError()
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", err
	}

	user := &model.User{
		ID:           s.newID(),
		Name:         in.Name,
		Email:        email,
		Avatar:       GravatarURL(email),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	// 事前確認後に同一メールアドレスで登録された場合も一意制約で検出する
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return "", model.NewUserAlreadyExistsError()
		}
		return "", fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("ユーザーを登録しました",
		slog.String("user_id", user.ID),
	)

	return s.tokens.Issue(user.ID)
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: posts → profile → user（途中で失敗した場合は何も削除しない）
// 他ユーザーの投稿に残したいいね・コメントは残す。
func (s *Service) Withdraw(ctx context.Context, actorID string) error {
	// ユーザー存在確認
	user, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	// プロフィールが存在する場合は保持者本人であることを確認する
	if s.profiles != nil {
		profile, err := s.profiles.FindByUserID(ctx, actorID)
		if err != nil {
			return fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
		}
		if profile != nil {
			if err := s.policy.Authorize(actorID, profile.UserID); err != nil {
				return model.NewNotAuthorizedError("User not authorized")
			}
		}
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", actorID),
	)

	// 投稿 → プロフィール → ユーザーの順に1つのトランザクションで削除する
	if err := s.userRepo.DeleteAccount(ctx, user.ID); err != nil {
		return fmt.Errorf("退会データの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", actorID),
	)

	return nil
}

// GravatarURL は正規化済みメールアドレスからアバター画像のURLを生成する。
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(email))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}
