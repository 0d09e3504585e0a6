package model

import "time"

// Profile はユーザーごとに最大1件存在するプロフィールを表す。
// UserID は作成後に変更されない。
type Profile struct {
	ID             string       `bson:"_id"`
	UserID         string       `bson:"user"`
	Company        string       `bson:"company"`
	Website        string       `bson:"website"`
	Location       string       `bson:"location"`
	Status         string       `bson:"status"`
	Skills         []string     `bson:"skills"`
	Bio            string       `bson:"bio"`
	GitHubUsername string       `bson:"githubusername"`
	Social         Social       `bson:"social"`
	Experience     []Experience `bson:"experience"`
	Education      []Education  `bson:"education"`
	CreatedAt      time.Time    `bson:"date"`
	Version        int          `bson:"version"` // 楽観的排他制御用

	// Owner は読み取り時に補完される所有者情報。永続化しない。
	Owner Owner `bson:"-"`
}

// Social はSNSリンクを表す。いずれも任意項目。
type Social struct {
	YouTube   string `bson:"youtube,omitempty" json:"youtube,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
}

// Experience は職歴エントリを表す。
type Experience struct {
	ID          string     `bson:"_id" json:"_id"`
	Title       string     `bson:"title" json:"title"`
	Company     string     `bson:"company" json:"company"`
	Location    string     `bson:"location,omitempty" json:"location,omitempty"`
	From        time.Time  `bson:"from" json:"from"`
	To          *time.Time `bson:"to,omitempty" json:"to,omitempty"`
	Current     bool       `bson:"current" json:"current"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
}

// Education は学歴エントリを表す。
type Education struct {
	ID           string     `bson:"_id" json:"_id"`
	School       string     `bson:"school" json:"school"`
	Degree       string     `bson:"degree" json:"degree"`
	FieldOfStudy string     `bson:"fieldofstudy" json:"fieldofstudy"`
	From         time.Time  `bson:"from" json:"from"`
	To           *time.Time `bson:"to,omitempty" json:"to,omitempty"`
	Current      bool       `bson:"current" json:"current"`
	Description  string     `bson:"description,omitempty" json:"description,omitempty"`
}

// Repo は外部サービス上の公開リポジトリの要約を表す。
type Repo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Stars       int    `json:"stargazers_count"`
	Watchers    int    `json:"watchers_count"`
	Forks       int    `json:"forks_count"`
}
