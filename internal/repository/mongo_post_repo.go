package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/hitoshi/devconnect/internal/database"
	"github.com/hitoshi/devconnect/internal/model"
)

// MongoPostRepo はMongoDBを使用した投稿リポジトリ。
// いいね・コメントは投稿ドキュメントに埋め込む。
type MongoPostRepo struct {
	collection *mongo.Collection
}

// NewMongoPostRepo はMongoPostRepoを生成する。
func NewMongoPostRepo(db *mongo.Database) *MongoPostRepo {
	return &MongoPostRepo{collection: db.Collection(database.PostsCollection)}
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *MongoPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}
	normalizePost(&post)
	return &post, nil
}

// List は全投稿を作成日時の新しい順に取得する。
func (r *MongoPostRepo) List(ctx context.Context) ([]*model.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []*model.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	for _, p := range posts {
		normalizePost(p)
	}
	return posts, nil
}

// Create は投稿を作成する。
func (r *MongoPostRepo) Create(ctx context.Context, post *model.Post) error {
	normalizePost(post)
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// UpdateReactions はいいね・コメントリストをバージョン一致時のみ更新する。
func (r *MongoPostRepo) UpdateReactions(ctx context.Context, post *model.Post) error {
	normalizePost(post)
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": post.ID, "version": post.Version},
		bson.M{
			"$set": bson.M{"likes": post.Likes, "comments": post.Comments},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to update post reactions: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}

	post.Version++
	return nil
}

// DeleteByID は指定IDの投稿を削除する。
func (r *MongoPostRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("post not found: %s", id)
	}
	return nil
}

// normalizePost はnilスライスを空スライスに揃える。
// BSONではnilスライスがnullとして保存されるため。
func normalizePost(p *model.Post) {
	if p.Likes == nil {
		p.Likes = []model.Like{}
	}
	if p.Comments == nil {
		p.Comments = []model.Comment{}
	}
}

// compile-time interface check
var _ PostRepository = (*MongoPostRepo)(nil)
