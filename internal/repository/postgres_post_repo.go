package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/devconnect/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
// いいね・コメントはJSONB列に保持する。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

const postColumns = `id, user_id, text, name, avatar, likes, comments, version, created_at`

func scanPost(row interface{ Scan(...any) error }) (*model.Post, error) {
	post := &model.Post{}
	var likes, comments []byte
	if err := row.Scan(
		&post.ID, &post.UserID, &post.Text, &post.Name, &post.Avatar,
		&likes, &comments, &post.Version, &post.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(likes, &post.Likes); err != nil {
		return nil, fmt.Errorf("failed to decode likes: %w", err)
	}
	if err := json.Unmarshal(comments, &post.Comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	if post.Likes == nil {
		post.Likes = []model.Like{}
	}
	if post.Comments == nil {
		post.Comments = []model.Comment{}
	}
	return post, nil
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	if !isUUID(id) {
		return nil, nil
	}

	post, err := scanPost(r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}
	return post, nil
}

// List は全投稿を作成日時の新しい順に取得する。
func (r *PostgresPostRepo) List(ctx context.Context) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []*model.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

// Create は投稿を作成する。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	likes, err := marshalList(post.Likes)
	if err != nil {
		return err
	}
	comments, err := marshalList(post.Comments)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		post.ID, post.UserID, post.Text, post.Name, post.Avatar,
		likes, comments, post.Version, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// UpdateReactions はいいね・コメントリストをバージョン一致時のみ更新する。
func (r *PostgresPostRepo) UpdateReactions(ctx context.Context, post *model.Post) error {
	likes, err := marshalList(post.Likes)
	if err != nil {
		return err
	}
	comments, err := marshalList(post.Comments)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE posts SET likes = $1, comments = $2, version = version + 1
		 WHERE id = $3 AND version = $4`,
		likes, comments, post.ID, post.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update post reactions: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrVersionConflict
	}

	post.Version++
	return nil
}

// DeleteByID は指定IDの投稿を削除する。
func (r *PostgresPostRepo) DeleteByID(ctx context.Context, id string) error {
	if !isUUID(id) {
		return fmt.Errorf("post not found: %s", id)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("post not found: %s", id)
	}
	return nil
}

// marshalList はスライスをJSONB列用にエンコードする。nilは空配列として保存する。
func marshalList[T any](list []T) ([]byte, error) {
	if list == nil {
		list = []T{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("failed to encode list: %w", err)
	}
	return b, nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
