package model

import "time"

// Post はユーザーの投稿を表す。
// Name と Avatar は作成時点の投稿者情報を複製して保持する。
type Post struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user"`
	Text      string    `bson:"text"`
	Name      string    `bson:"name"`
	Avatar    string    `bson:"avatar"`
	Likes     []Like    `bson:"likes"`
	Comments  []Comment `bson:"comments"`
	CreatedAt time.Time `bson:"date"`
	Version   int       `bson:"version"` // 楽観的排他制御用
}

// Like は投稿へのいいねを表す。1投稿につき1ユーザー1件まで。
type Like struct {
	ID     string `bson:"_id" json:"_id"`
	UserID string `bson:"user" json:"user"`
}

// Comment は投稿へのコメントを表す。
// 削除権限はコメント作成者にのみある（投稿作成者ではない）。
type Comment struct {
	ID        string    `bson:"_id" json:"_id"`
	UserID    string    `bson:"user" json:"user"`
	Text      string    `bson:"text" json:"text"`
	Name      string    `bson:"name" json:"name"`
	Avatar    string    `bson:"avatar" json:"avatar"`
	CreatedAt time.Time `bson:"date" json:"date"`
}
