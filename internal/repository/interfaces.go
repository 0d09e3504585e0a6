// Package repository はデータ永続化のインターフェースと実装を定義する。
// PostgreSQL（既定）とMongoDBの2種類の実装を持つ。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/devconnect/internal/model"
)

// ErrVersionConflict は楽観的排他制御でバージョン不一致を検出した場合のエラー。
var ErrVersionConflict = errors.New("version conflict")

// ErrDuplicateEmail はメールアドレスが既に登録済みの場合のエラー。
var ErrDuplicateEmail = errors.New("duplicate email")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByIDs は複数IDのユーザーをまとめて取得する。存在しないIDは無視する。
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)

	// Create はユーザーを作成する。メールアドレス重複時はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// DeleteAccount は指定ユーザーの投稿・プロフィール・ユーザーを
	// この順に1つのトランザクションで削除する。途中で失敗した場合は何も削除しない。
	DeleteAccount(ctx context.Context, id string) error
}

// ProfileRepository はプロフィールデータの永続化インターフェース。
type ProfileRepository interface {
	// FindByUserID は指定ユーザーのプロフィールを取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.Profile, error)

	// List は全プロフィールを取得する。
	List(ctx context.Context) ([]*model.Profile, error)

	// Upsert はユーザー単位でプロフィールを1回の書き込みで作成または更新する。
	// 職歴・学歴は更新しない。profileは永続化後の状態で上書きされる。
	// 新規作成の場合はtrueを返す。
	Upsert(ctx context.Context, profile *model.Profile) (bool, error)

	// UpdateEntries は職歴・学歴リストをバージョン一致時のみ更新する。
	// 不一致の場合はErrVersionConflictを返す。成功時はprofile.Versionを進める。
	UpdateEntries(ctx context.Context, profile *model.Profile) error
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// List は全投稿を作成日時の新しい順に取得する。
	List(ctx context.Context) ([]*model.Post, error)

	// Create は投稿を作成する。
	Create(ctx context.Context, post *model.Post) error

	// UpdateReactions はいいね・コメントリストをバージョン一致時のみ更新する。
	// 不一致の場合はErrVersionConflictを返す。成功時はpost.Versionを進める。
	UpdateReactions(ctx context.Context, post *model.Post) error

	// DeleteByID は指定IDの投稿を削除する。
	DeleteByID(ctx context.Context, id string) error
}
