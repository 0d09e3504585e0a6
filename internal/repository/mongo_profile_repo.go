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

// MongoProfileRepo はMongoDBを使用したプロフィールリポジトリ。
// userに一意インデックスを持つことを前提とする（database.EnsureMongoIndexes）。
type MongoProfileRepo struct {
	collection *mongo.Collection
}

// NewMongoProfileRepo はMongoProfileRepoを生成する。
func NewMongoProfileRepo(db *mongo.Database) *MongoProfileRepo {
	return &MongoProfileRepo{collection: db.Collection(database.ProfilesCollection)}
}

// FindByUserID は指定ユーザーのプロフィールを取得する。見つからない場合はnilを返す。
func (r *MongoProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.collection.FindOne(ctx, bson.M{"user": userID}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by user ID: %w", err)
	}
	normalizeProfile(&profile)
	return &profile, nil
}

// List は全プロフィールを作成日時の古い順に取得する。
func (r *MongoProfileRepo) List(ctx context.Context) ([]*model.Profile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer cursor.Close(ctx)

	profiles := []*model.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	for _, p := range profiles {
		normalizeProfile(p)
	}
	return profiles, nil
}

// Upsert はuserをキーにFindOneAndUpdate(upsert)の1回の操作で作成または更新し、
// 同じ操作で書き込み後のドキュメントを読み戻す。
// 職歴・学歴・ID・作成日時は新規作成時のみ設定する。
func (r *MongoProfileRepo) Upsert(ctx context.Context, profile *model.Profile) (bool, error) {
	skills := profile.Skills
	if skills == nil {
		skills = []string{}
	}
	requestedID := profile.ID

	var persisted model.Profile
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"user": profile.UserID},
		bson.M{
			"$set": bson.M{
				"company":        profile.Company,
				"website":        profile.Website,
				"location":       profile.Location,
				"status":         profile.Status,
				"skills":         skills,
				"bio":            profile.Bio,
				"githubusername": profile.GitHubUsername,
				"social":         profile.Social,
			},
			"$inc": bson.M{"version": 1},
			"$setOnInsert": bson.M{
				"_id":        requestedID,
				"experience": []model.Experience{},
				"education":  []model.Education{},
				"date":       profile.CreatedAt,
			},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&persisted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert profile: %w", err)
	}

	normalizeProfile(&persisted)
	*profile = persisted
	// $setOnInsert のIDが採用されていれば今回の操作で作成された
	return persisted.ID == requestedID, nil
}

// UpdateEntries は職歴・学歴リストをバージョン一致時のみ更新する。
func (r *MongoProfileRepo) UpdateEntries(ctx context.Context, profile *model.Profile) error {
	normalizeProfile(profile)
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": profile.ID, "version": profile.Version},
		bson.M{
			"$set": bson.M{"experience": profile.Experience, "education": profile.Education},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to update profile entries: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}

	profile.Version++
	return nil
}

func normalizeProfile(p *model.Profile) {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []model.Experience{}
	}
	if p.Education == nil {
		p.Education = []model.Education{}
	}
}

// compile-time interface check
var _ ProfileRepository = (*MongoProfileRepo)(nil)
