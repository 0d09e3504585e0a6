package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/hitoshi/devconnect/internal/database"
	"github.com/hitoshi/devconnect/internal/model"
)

// MongoUserRepo はMongoDBを使用したユーザーリポジトリ。
// emailに一意インデックスを持つことを前提とする（database.EnsureMongoIndexes）。
// 退会処理はマルチドキュメントトランザクションを使うため、レプリカセット構成が必要。
type MongoUserRepo struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoUserRepo はMongoUserRepoを生成する。
func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{db: db, collection: db.Collection(database.UsersCollection)}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *MongoUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
func (r *MongoUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// FindByIDs は複数IDのユーザーをまとめて取得する。
func (r *MongoUserRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find users by IDs: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// Create はユーザーを作成する。メールアドレス重複時はErrDuplicateEmailを返す。
func (r *MongoUserRepo) Create(ctx context.Context, user *model.User) error {
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// DeleteAccount は投稿・プロフィール・ユーザーを1つのトランザクションで削除する。
func (r *MongoUserRepo) DeleteAccount(ctx context.Context, id string) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		if _, err := r.db.Collection(database.PostsCollection).DeleteMany(ctx, bson.M{"user": id}); err != nil {
			return nil, fmt.Errorf("failed to delete posts: %w", err)
		}
		if _, err := r.db.Collection(database.ProfilesCollection).DeleteOne(ctx, bson.M{"user": id}); err != nil {
			return nil, fmt.Errorf("failed to delete profile: %w", err)
		}
		result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return nil, fmt.Errorf("failed to delete user: %w", err)
		}
		if result.DeletedCount == 0 {
			return nil, fmt.Errorf("user not found: %s", id)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*MongoUserRepo)(nil)
