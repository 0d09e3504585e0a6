package model

import "time"

// User はサービス利用ユーザー（認証主体）を表す。
// PasswordHash はAPIレスポンスに含めてはならない。
type User struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	Avatar       string    `bson:"avatar"`
	PasswordHash string    `bson:"password"`
	CreatedAt    time.Time `bson:"date"`
}

// Owner はプロフィール等に埋め込む所有者の公開情報を表す。
type Owner struct {
	ID     string
	Name   string
	Avatar string
}

// OwnerOf はユーザーから公開情報のみを取り出す。
func OwnerOf(u *User) Owner {
	if u == nil {
		return Owner{}
	}
	return Owner{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}
