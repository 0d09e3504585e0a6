// Package post は投稿・いいね・コメントのドメインロジックを提供する。
package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/hitoshi/devconnect/internal/model"
	"github.com/hitoshi/devconnect/internal/ownership"
	"github.com/hitoshi/devconnect/internal/repository"
	"github.com/hitoshi/devconnect/internal/security"
	"github.com/hitoshi/devconnect/internal/validate"
)

// PostRecorder は投稿作成をメトリクスに記録するインターフェース。
type PostRecorder interface {
	RecordPostCreated()
}

// TextInput は投稿本文・コメント本文の入力。
type TextInput struct {
	Text string `json:"text"`
}

// Validate は本文が空でないことを検証する。
func (in *TextInput) Validate() error {
	return validate.Struct(in,
		validation.Field(&in.Text, validation.Required.Error("Text is required")),
	)
}

// Service は投稿に関するビジネスロジックを提供する。
// いいね・コメントの変更は投稿単位の楽観的排他制御で保護する。
type Service struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	policy    ownership.Policy
	sanitizer security.TextSanitizer
	metrics   PostRecorder
	now       func() time.Time
	newID     func() string
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	policy ownership.Policy,
	sanitizer security.TextSanitizer,
	metrics PostRecorder,
) *Service {
	return &Service{
		postRepo:  postRepo,
		userRepo:  userRepo,
		policy:    policy,
		sanitizer: sanitizer,
		metrics:   metrics,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Create は投稿を作成する。投稿者の名前とアバターは作成時点の値を複製する。
func (s *Service) Create(ctx context.Context, userID string, in TextInput) (*model.Post, error) {
	in.Text = s.sanitizer.Sanitize(in.Text)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	author, err := s.findAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:        s.newID(),
		UserID:    author.ID,
		Text:      in.Text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		Likes:     []model.Like{},
		Comments:  []model.Comment{},
		CreatedAt: s.now().UTC(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordPostCreated()
	}
	slog.Info("投稿を作成しました",
		slog.String("post_id", post.ID),
		slog.String("user_id", author.ID),
	)

	return post, nil
}

// List は全投稿を新しい順に返す。
func (s *Service) List(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Get は指定IDの投稿を返す。
func (s *Service) Get(ctx context.Context, postID string) (*model.Post, error) {
	return s.load(ctx, postID)
}

// Delete は投稿を削除する。投稿者本人以外は拒否する。
func (s *Service) Delete(ctx context.Context, actorID, postID string) error {
	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.policy.Authorize(actorID, post.UserID); err != nil {
		slog.Warn("投稿の削除を拒否しました",
			slog.String("post_id", postID),
			slog.String("actor_id", actorID),
		)
		return model.NewNotAuthorizedError("Not authorized")
	}

	if err := s.postRepo.DeleteByID(ctx, post.ID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	slog.Info("投稿を削除しました",
		slog.String("post_id", post.ID),
		slog.String("user_id", actorID),
	)
	return nil
}

// Like は投稿にいいねを追加し、更新後のいいね一覧を返す。
// 同一ユーザーによるいいねは1件までとする。
func (s *Service) Like(ctx context.Context, actorID, postID string) ([]model.Like, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	if indexOfLike(post.Likes, actorID) >= 0 {
		return nil, model.NewAlreadyLikedError()
	}

	like := model.Like{ID: s.newID(), UserID: actorID}
	post.Likes = append([]model.Like{like}, post.Likes...)

	if err := s.saveReactions(ctx, post); err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// Unlike は操作者のいいねを取り除き、更新後のいいね一覧を返す。
func (s *Service) Unlike(ctx context.Context, actorID, postID string) ([]model.Like, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	idx := indexOfLike(post.Likes, actorID)
	if idx < 0 {
		return nil, model.NewNotLikedError()
	}
	post.Likes = append(post.Likes[:idx:idx], post.Likes[idx+1:]...)

	if err := s.saveReactions(ctx, post); err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// AddComment は投稿の先頭にコメントを追加し、更新後のコメント一覧を返す。
// 認証済みユーザーであれば誰でもコメントできる。
func (s *Service) AddComment(ctx context.Context, actorID, postID string, in TextInput) ([]model.Comment, error) {
	in.Text = s.sanitizer.Sanitize(in.Text)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	author, err := s.findAuthor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := model.Comment{
		ID:        s.newID(),
		UserID:    author.ID,
		Text:      in.Text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: s.now().UTC(),
	}
	post.Comments = append([]model.Comment{comment}, post.Comments...)

	if err := s.saveReactions(ctx, post); err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// DeleteComment はコメントIDに一致するコメントを削除し、更新後のコメント一覧を返す。
// コメント投稿者本人以外は拒否する（投稿の作成者であっても不可）。
func (s *Service) DeleteComment(ctx context.Context, actorID, postID, commentID string) ([]model.Comment, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, c := range post.Comments {
		if c.ID == commentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, model.NewCommentNotFoundError()
	}

	if err := s.policy.Authorize(actorID, post.Comments[idx].UserID); err != nil {
		return nil, model.NewNotAuthorizedError("You are not authorized to remove comment")
	}

	post.Comments = append(post.Comments[:idx:idx], post.Comments[idx+1:]...)

	if err := s.saveReactions(ctx, post); err != nil {
		return nil, err
	}
	return post.Comments, nil
}

func (s *Service) load(ctx context.Context, postID string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError()
	}
	return post, nil
}

func (s *Service) findAuthor(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// saveReactions はいいね・コメント一覧を1回の書き込みで保存する。
func (s *Service) saveReactions(ctx context.Context, post *model.Post) error {
	err := s.postRepo.UpdateReactions(ctx, post)
	if errors.Is(err, repository.ErrVersionConflict) {
		slog.Warn("投稿の同時更新を検出しました",
			slog.String("post_id", post.ID),
		)
		return model.NewConcurrentUpdateError()
	}
	if err != nil {
		return fmt.Errorf("failed to update post reactions: %w", err)
	}
	return nil
}

func indexOfLike(likes []model.Like, userID string) int {
	for i, l := range likes {
		if l.UserID == userID {
			return i
		}
	}
	return -1
}
