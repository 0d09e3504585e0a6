package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/devconnect/internal/model"
)

// PostgresProfileRepo はPostgreSQLを使用したプロフィールリポジトリ。
// user_idに一意制約を持ち、1ユーザー1プロフィールを保証する。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

const profileColumns = `id, user_id, company, website, location, status, skills, bio,
	github_username, social, experience, education, version, created_at`

func scanProfileInto(profile *model.Profile, row interface{ Scan(...any) error }, extra ...any) error {
	var skills pq.StringArray
	var social, experience, education []byte
	dest := []any{
		&profile.ID, &profile.UserID, &profile.Company, &profile.Website, &profile.Location,
		&profile.Status, &skills, &profile.Bio, &profile.GitHubUsername,
		&social, &experience, &education, &profile.Version, &profile.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}

	profile.Skills = []string(skills)
	if profile.Skills == nil {
		profile.Skills = []string{}
	}
	profile.Social = model.Social{}
	if err := json.Unmarshal(social, &profile.Social); err != nil {
		return fmt.Errorf("failed to decode social: %w", err)
	}
	profile.Experience = nil
	if err := json.Unmarshal(experience, &profile.Experience); err != nil {
		return fmt.Errorf("failed to decode experience: %w", err)
	}
	profile.Education = nil
	if err := json.Unmarshal(education, &profile.Education); err != nil {
		return fmt.Errorf("failed to decode education: %w", err)
	}
	if profile.Experience == nil {
		profile.Experience = []model.Experience{}
	}
	if profile.Education == nil {
		profile.Education = []model.Education{}
	}
	return nil
}

// FindByUserID は指定ユーザーのプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	if !isUUID(userID) {
		return nil, nil
	}

	profile := &model.Profile{}
	err := scanProfileInto(profile, r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`,
		userID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by user ID: %w", err)
	}
	return profile, nil
}

// List は全プロフィールを作成日時の古い順に取得する。
func (r *PostgresProfileRepo) List(ctx context.Context) ([]*model.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*model.Profile{}
	for rows.Next() {
		profile := &model.Profile{}
		if err := scanProfileInto(profile, rows); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}
	return profiles, nil
}

// Upsert はINSERT ... ON CONFLICT (user_id) DO UPDATE の1文で作成または更新する。
// 更新時は職歴・学歴・作成日時・IDを保持し、それ以外の可変項目を置き換える。
// RETURNINGで永続化後の状態を読み戻し、xmax = 0 で新規作成かどうかを判定する。
func (r *PostgresProfileRepo) Upsert(ctx context.Context, profile *model.Profile) (bool, error) {
	social, err := json.Marshal(profile.Social)
	if err != nil {
		return false, fmt.Errorf("failed to encode social: %w", err)
	}
	skills := profile.Skills
	if skills == nil {
		skills = []string{}
	}

	var inserted bool
	err = scanProfileInto(profile, r.db.QueryRowContext(ctx,
		`INSERT INTO profiles (
			id, user_id, company, website, location, status, skills, bio,
			github_username, social, experience, education, version, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, '[]', '[]', 0, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			company = EXCLUDED.company,
			website = EXCLUDED.website,
			location = EXCLUDED.location,
			status = EXCLUDED.status,
			skills = EXCLUDED.skills,
			bio = EXCLUDED.bio,
			github_username = EXCLUDED.github_username,
			social = EXCLUDED.social,
			version = profiles.version + 1
		RETURNING `+profileColumns+`, (xmax = 0) AS inserted`,
		profile.ID, profile.UserID, profile.Company, profile.Website, profile.Location,
		profile.Status, pq.Array(skills), profile.Bio, profile.GitHubUsername,
		social, profile.CreatedAt,
	), &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert profile: %w", err)
	}

	return inserted, nil
}

// UpdateEntries は職歴・学歴リストをバージョン一致時のみ更新する。
func (r *PostgresProfileRepo) UpdateEntries(ctx context.Context, profile *model.Profile) error {
	experience, err := marshalList(profile.Experience)
	if err != nil {
		return err
	}
	education, err := marshalList(profile.Education)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET experience = $1, education = $2, version = version + 1
		 WHERE id = $3 AND version = $4`,
		experience, education, profile.ID, profile.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile entries: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrVersionConflict
	}

	profile.Version++
	return nil
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
