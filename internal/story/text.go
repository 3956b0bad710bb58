package story

import (
	"strings"

	"golang.org/x/net/html"
)

const ellipsis = "..."

// PlainText はHTML断片からテキストのみを取り出す。
// 文字参照はデコードされ、段落と改行は空白1つになる。
func PlainText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOFを含め、ここで終了
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "p", "br":
				writeSeparator(&b)
			}
		}
	}
}

// writeSeparator は直前が空白でなければ空白を1つ書き込む。
func writeSeparator(b *strings.Builder) {
	s := b.String()
	if s == "" || strings.HasSuffix(s, " ") {
		return
	}
	b.WriteByte(' ')
}

// truncateWithEllipsis は先頭n文字（ルーン単位）を残し、末尾に"..."を付ける。
func truncateWithEllipsis(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + ellipsis
}
