// Package security はユーザー入力テキストの無害化を提供する。
//
// 投稿本文、コメント、プロフィールの自己紹介はプレーンテキストとして扱う。
// 文字参照を展開してからbluemondayのStrictPolicyで全てのHTMLタグを除去する。
// 除去によって新たなタグが組み上がる入力にも対応するため、結果が変化しなくなるまで繰り返す。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はユーザー入力テキストの無害化機能のインターフェースを定義する。
type TextSanitizer interface {
	// Sanitize はHTMLタグを除去し、前後の空白を取り除いたテキストを返す。
	// script, styleタグは中身ごと除去される。
	// 同一入力に対して常に同一出力を返す。
	Sanitize(text string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemondayのポリシーはスレッドセーフであり、共有して使用できる。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// maxSanitizePasses は不動点に達するまでの最大反復回数。
const maxSanitizePasses = 8

// Sanitize はHTMLタグを除去したプレーンテキストを返す。
// 出力はタグを含まず、再度Sanitizeしても変化しない。
func (s *textSanitizer) Sanitize(text string) string {
	current := text
	for range maxSanitizePasses {
		next := s.pass(current)
		if next == current {
			return next
		}
		current = next
	}
	// 収束しない入力はエスケープ済みのまま返す
	return strings.TrimSpace(s.policy.Sanitize(unescapeAll(current)))
}

// pass は文字参照を展開し、タグを除去した上でbluemondayが付与したエスケープを戻す。
func (s *textSanitizer) pass(text string) string {
	if text == "" {
		return ""
	}
	stripped := s.policy.Sanitize(unescapeAll(text))
	return strings.TrimSpace(html.UnescapeString(stripped))
}

// unescapeAll は多重にエスケープされた文字参照を展開しきる。
func unescapeAll(text string) string {
	for range maxSanitizePasses {
		next := html.UnescapeString(text)
		if next == text {
			return next
		}
		text = next
	}
	return text
}

var _ TextSanitizer = (*textSanitizer)(nil)
