package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken はトークンの署名・形式・有効期限のいずれかが不正な場合のエラー。
var ErrInvalidToken = errors.New("invalid token")

// tokenUser はトークンに埋め込むユーザー情報。
type tokenUser struct {
	ID string `json:"id"`
}

// Claims はトークンのペイロード。{"user":{"id":...}} と標準クレームを持つ。
type Claims struct {
	User tokenUser `json:"user"`
	jwt.RegisteredClaims
}

// TokenCodec はHS256署名付きトークンの発行と検証を行う。
// 秘密鍵と有効期間は生成時に注入し、以降は変更しない。
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time // テスト用に差し替え可能
}

// NewTokenCodec はTokenCodecを生成する。
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue はユーザーIDを埋め込んだトークンを発行する。
func (c *TokenCodec) Issue(userID string) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		User: tokenUser{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、埋め込まれたユーザーIDを返す。
// 署名不一致、形式不正、期限切れ、HS256以外のアルゴリズム、ユーザーID欠落は
// すべてErrInvalidTokenとして扱う。
func (c *TokenCodec) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.User.ID == "" {
		return "", ErrInvalidToken
	}

	return claims.User.ID, nil
}
