package handler

import (
	"time"

	"github.com/hitoshi/devconnect/internal/model"
)

// userResponse はユーザー情報のAPIレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID     string    `json:"_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Avatar string    `json:"avatar"`
	Date   time.Time `json:"date"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
		Date:   u.CreatedAt,
	}
}

// postResponse は投稿のAPIレスポンス。
type postResponse struct {
	ID       string          `json:"_id"`
	User     string          `json:"user"`
	Text     string          `json:"text"`
	Name     string          `json:"name"`
	Avatar   string          `json:"avatar"`
	Likes    []model.Like    `json:"likes"`
	Comments []model.Comment `json:"comments"`
	Date     time.Time       `json:"date"`
}

func toPostResponse(p *model.Post) postResponse {
	return postResponse{
		ID:       p.ID,
		User:     p.UserID,
		Text:     p.Text,
		Name:     p.Name,
		Avatar:   p.Avatar,
		Likes:    nonNilLikes(p.Likes),
		Comments: nonNilComments(p.Comments),
		Date:     p.CreatedAt,
	}
}

func toPostResponses(posts []*model.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	return out
}

// ownerResponse はプロフィールに埋め込む所有者情報。
type ownerResponse struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// profileResponse はプロフィールのAPIレスポンス。
type profileResponse struct {
	ID             string             `json:"_id"`
	User           ownerResponse      `json:"user"`
	Company        string             `json:"company,omitempty"`
	Website        string             `json:"website,omitempty"`
	Location       string             `json:"location,omitempty"`
	Status         string             `json:"status"`
	Skills         []string           `json:"skills"`
	Bio            string             `json:"bio,omitempty"`
	GitHubUsername string             `json:"githubusername,omitempty"`
	Social         model.Social       `json:"social"`
	Experience     []model.Experience `json:"experience"`
	Education      []model.Education  `json:"education"`
	Date           time.Time          `json:"date"`
}

func toProfileResponse(p *model.Profile) profileResponse {
	owner := ownerResponse{ID: p.Owner.ID, Name: p.Owner.Name, Avatar: p.Owner.Avatar}
	if owner.ID == "" {
		owner.ID = p.UserID
	}

	resp := profileResponse{
		ID:             p.ID,
		User:           owner,
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Status:         p.Status,
		Skills:         p.Skills,
		Bio:            p.Bio,
		GitHubUsername: p.GitHubUsername,
		Social:         p.Social,
		Experience:     p.Experience,
		Education:      p.Education,
		Date:           p.CreatedAt,
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	if resp.Experience == nil {
		resp.Experience = []model.Experience{}
	}
	if resp.Education == nil {
		resp.Education = []model.Education{}
	}
	return resp
}

func toProfileResponses(profiles []*model.Profile) []profileResponse {
	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResponse(p))
	}
	return out
}

func nonNilLikes(likes []model.Like) []model.Like {
	if likes == nil {
		return []model.Like{}
	}
	return likes
}

func nonNilComments(comments []model.Comment) []model.Comment {
	if comments == nil {
		return []model.Comment{}
	}
	return comments
}
