// Package ownership はリソース所有者による操作可否の判定を提供する。
// 投稿削除、コメント削除、プロフィール・アカウント削除、職歴・学歴の変更は
// すべてこのパッケージのPolicyを通して判定する。
package ownership

import (
	"errors"
	"fmt"
)

// ErrForbidden は操作者がリソースの所有者でない場合のエラー。
var ErrForbidden = errors.New("forbidden")

// Policy は操作者IDと所有者IDから操作可否を判定するインターフェース。
// 許可の場合はnil、拒否の場合はErrForbiddenをラップしたエラーを返す。
type Policy interface {
	Authorize(actorID, ownerID string) error
}

// OwnerOnly は所有者本人のみを許可するPolicy。
// IDは文字列として完全一致で比較する。空の操作者IDは常に拒否する。
type OwnerOnly struct{}

// NewOwnerOnly はOwnerOnlyを生成する。
func NewOwnerOnly() OwnerOnly {
	return OwnerOnly{}
}

// Authorize はactorIDとownerIDが一致する場合のみ許可する。
func (OwnerOnly) Authorize(actorID, ownerID string) error {
	if actorID == "" || actorID != ownerID {
		return fmt.Errorf("actor %q is not owner: %w", actorID, ErrForbidden)
	}
	return nil
}

var _ Policy = OwnerOnly{}
