// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はHacker Newsのアイテム本文（HTML断片）を許可リストで無害化し、
// UpstreamGuard はHacker News APIへの外向き通信先を制限する。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer はHTML断片の無害化のインターフェース。
// APIレスポンスでアイテム本文を返す前に使用する。
type Sanitizer interface {
	// Sanitize は許可されたタグと属性のみを残したHTMLを返す。
	// 空文字列の入力には空文字列を返す。
	Sanitize(rawHTML string) string
}

// TextSanitizer はbluemondayのポリシーでアイテム本文を無害化する。
// ポリシーは生成後に変更しないため、複数のゴルーチンから同時に使用できる。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はHacker Newsの本文で使われるタグに合わせたポリシーを構築する。
//   - 許可タグ: p, br, i, em, strong, pre, code, blockquote, a
//   - aのhrefはhttp/https/mailtoの完全なURLのみ
//   - aには target="_blank" と rel="noopener noreferrer" を付与する
func NewTextSanitizer() *TextSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br",
		"i", "em", "strong",
		"pre", "code", "blockquote",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &TextSanitizer{policy: p}
}

// Sanitize はHTML断片を無害化する。
func (s *TextSanitizer) Sanitize(rawHTML string) string {
	if rawHTML == "" {
		return ""
	}
	return s.policy.Sanitize(rawHTML)
}
