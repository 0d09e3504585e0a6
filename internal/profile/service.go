// Package profile はプロフィール・職歴・学歴と外部リポジトリ一覧のドメインロジックを提供する。
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/devconnect/internal/model"
	"github.com/hitoshi/devconnect/internal/ownership"
	"github.com/hitoshi/devconnect/internal/repository"
	"github.com/hitoshi/devconnect/internal/security"
)

const (
	msgNoProfileForUser = "There is no profile for this user"
	msgProfileNotFound  = "Profile not found"
)

// RepoLister は外部サービスから公開リポジトリ一覧を取得するインターフェース。
type RepoLister interface {
	ListRepos(ctx context.Context, username string) ([]model.Repo, error)
}

// Service はプロフィールに関するビジネスロジックを提供する。
type Service struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	policy      ownership.Policy
	sanitizer   security.TextSanitizer
	repos       RepoLister
	now         func() time.Time
	newID       func() string
}

// NewService はServiceを生成する。
func NewService(
	profileRepo repository.ProfileRepository,
	userRepo repository.UserRepository,
	policy ownership.Policy,
	sanitizer security.TextSanitizer,
	repos RepoLister,
) *Service {
	return &Service{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		policy:      policy,
		sanitizer:   sanitizer,
		repos:       repos,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// GetMine は操作者自身のプロフィールを返す。
func (s *Service) GetMine(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.findWithOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, model.NewProfileNotFoundError(msgNoProfileForUser)
	}
	return profile, nil
}

// GetByUser は指定ユーザーのプロフィールを返す。
func (s *Service) GetByUser(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.findWithOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, model.NewProfileNotFoundError(msgProfileNotFound)
	}
	return profile, nil
}

// List は全プロフィールを所有者の名前・アバター付きで返す。
func (s *Service) List(ctx context.Context) ([]*model.Profile, error) {
	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	if len(profiles) == 0 {
		return profiles, nil
	}

	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile owners: %w", err)
	}
	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, p := range profiles {
		p.Owner = ownerOf(p.UserID, byID[p.UserID])
	}
	return profiles, nil
}

// Upsert は操作者のプロフィールを作成または更新する。
// 可変項目は入力値で全置換し、職歴・学歴は保持する。
// 新規作成の場合はtrueを返す。
func (s *Service) Upsert(ctx context.Context, userID string, in ProfileInput) (*model.Profile, bool, error) {
	if err := in.Validate(); err != nil {
		return nil, false, err
	}

	profile := &model.Profile{
		ID:             s.newID(),
		UserID:         userID,
		Company:        strings.TrimSpace(in.Company),
		Website:        strings.TrimSpace(in.Website),
		Location:       strings.TrimSpace(in.Location),
		Status:         strings.TrimSpace(in.Status),
		Skills:         []string(in.Skills),
		Bio:            s.sanitizer.Sanitize(in.Bio),
		GitHubUsername: strings.TrimSpace(in.GitHubUsername),
		Social: model.Social{
			YouTube:   strings.TrimSpace(in.YouTube),
			Twitter:   strings.TrimSpace(in.Twitter),
			Facebook:  strings.TrimSpace(in.Facebook),
			LinkedIn:  strings.TrimSpace(in.LinkedIn),
			Instagram: strings.TrimSpace(in.Instagram),
		},
		CreatedAt: s.now().UTC(),
	}

	created, err := s.profileRepo.Upsert(ctx, profile)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert profile: %w", err)
	}
	if err := s.attachOwner(ctx, profile); err != nil {
		return nil, false, err
	}

	if created {
		slog.Info("プロフィールを作成しました", slog.String("user_id", userID))
	} else {
		slog.Info("プロフィールを更新しました", slog.String("user_id", userID))
	}
	return profile, created, nil
}

// AddExperience は職歴を先頭に追加し、更新後のプロフィールを返す。
func (s *Service) AddExperience(ctx context.Context, actorID string, in ExperienceInput) (*model.Profile, error) {
	if err := in.Validate(s.now); err != nil {
		return nil, err
	}
	from, to, err := parseRange(in.From, in.To)
	if err != nil {
		return nil, fmt.Errorf("failed to parse experience dates: %w", err)
	}

	return s.mutateEntries(ctx, actorID, func(p *model.Profile) error {
		exp := model.Experience{
			ID:          s.newID(),
			Title:       strings.TrimSpace(in.Title),
			Company:     strings.TrimSpace(in.Company),
			Location:    strings.TrimSpace(in.Location),
			From:        from,
			To:          to,
			Current:     in.Current,
			Description: s.sanitizer.Sanitize(in.Description),
		}
		p.Experience = append([]model.Experience{exp}, p.Experience...)
		return nil
	})
}

// DeleteExperience はIDに一致する職歴を削除し、更新後のプロフィールを返す。
func (s *Service) DeleteExperience(ctx context.Context, actorID, expID string) (*model.Profile, error) {
	return s.mutateEntries(ctx, actorID, func(p *model.Profile) error {
		for i, e := range p.Experience {
			if e.ID == expID {
				p.Experience = append(p.Experience[:i:i], p.Experience[i+1:]...)
				return nil
			}
		}
		return model.NewExperienceNotFoundError()
	})
}

// AddEducation は学歴を先頭に追加し、更新後のプロフィールを返す。
func (s *Service) AddEducation(ctx context.Context, actorID string, in EducationInput) (*model.Profile, error) {
	if err := in.Validate(s.now); err != nil {
		return nil, err
	}
	from, to, err := parseRange(in.From, in.To)
	if err != nil {
		return nil, fmt.Errorf("failed to parse education dates: %w", err)
	}

	return s.mutateEntries(ctx, actorID, func(p *model.Profile) error {
		edu := model.Education{
			ID:           s.newID(),
			School:       strings.TrimSpace(in.School),
			Degree:       strings.TrimSpace(in.Degree),
			FieldOfStudy: strings.TrimSpace(in.FieldOfStudy),
			From:         from,
			To:           to,
			Current:      in.Current,
			Description:  s.sanitizer.Sanitize(in.Description),
		}
		p.Education = append([]model.Education{edu}, p.Education...)
		return nil
	})
}

// DeleteEducation はIDに一致する学歴を削除し、更新後のプロフィールを返す。
func (s *Service) DeleteEducation(ctx context.Context, actorID, eduID string) (*model.Profile, error) {
	return s.mutateEntries(ctx, actorID, func(p *model.Profile) error {
		for i, e := range p.Education {
			if e.ID == eduID {
				p.Education = append(p.Education[:i:i], p.Education[i+1:]...)
				return nil
			}
		}
		return model.NewEducationNotFoundError()
	})
}

// GitHubRepos は外部サービスから公開リポジトリ一覧を取得する。
// 失敗理由はログにのみ記録し、呼び出し元には一律のエラーを返す。
func (s *Service) GitHubRepos(ctx context.Context, username string) ([]model.Repo, error) {
	username = strings.TrimSpace(username)
	if username == "" || s.repos == nil {
		return nil, model.NewGitHubProfileNotFoundError()
	}

	repos, err := s.repos.ListRepos(ctx, username)
	if err != nil {
		slog.Warn("外部リポジトリ一覧の取得に失敗しました",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, model.NewGitHubProfileNotFoundError()
	}
	return repos, nil
}

// mutateEntries は操作者のプロフィールを読み込み、所有者確認の後にmutateを適用して
// 職歴・学歴を1回の書き込みで保存する。
func (s *Service) mutateEntries(ctx context.Context, actorID string, mutate func(*model.Profile) error) (*model.Profile, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	if profile == nil {
		return nil, model.NewProfileNotFoundError(msgNoProfileForUser)
	}

	if err := s.policy.Authorize(actorID, profile.UserID); err != nil {
		return nil, model.NewNotAuthorizedError("User not authorized")
	}

	if err := mutate(profile); err != nil {
		return nil, err
	}

	err = s.profileRepo.UpdateEntries(ctx, profile)
	if errors.Is(err, repository.ErrVersionConflict) {
		slog.Warn("プロフィールの同時更新を検出しました",
			slog.String("user_id", actorID),
		)
		return nil, model.NewConcurrentUpdateError()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile entries: %w", err)
	}

	if err := s.attachOwner(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) findWithOwner(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	if profile == nil {
		return nil, nil
	}
	if err := s.attachOwner(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) attachOwner(ctx context.Context, profile *model.Profile) error {
	user, err := s.userRepo.FindByID(ctx, profile.UserID)
	if err != nil {
		return fmt.Errorf("failed to find profile owner: %w", err)
	}
	profile.Owner = ownerOf(profile.UserID, user)
	return nil
}

// ownerOf は所有者情報を返す。ユーザーが既に存在しない場合はIDのみを持つ。
func ownerOf(userID string, user *model.User) model.Owner {
	if user == nil {
		return model.Owner{ID: userID}
	}
	return model.OwnerOf(user)
}
