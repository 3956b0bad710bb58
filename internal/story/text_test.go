package story

import "testing"

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"タグを除去する", "Hello <i>world</i>", "Hello world"},
		{"段落は空白になる", "First<p>Second", "First Second"},
		{"改行は空白になる", "line1<br>line2<br/>line3", "line1 line2 line3"},
		{"空白を重ねない", "end. <p>Next", "end. Next"},
		{"文字参照をデコードする", "It&#x27;s a &lt;test&gt; &amp; more", "It's a <test> & more"},
		{"リンクはテキストのみ残す", `See <a href="https://example.com">this</a>.`, "See this."},
		{"プレーンテキストはそのまま", "no markup here", "no markup here"},
		{"空文字列", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	if got := truncateWithEllipsis("abcdef", 3); got != "abc..." {
		t.Errorf("truncateWithEllipsis() = %q, want abc...", got)
	}
	if got := truncateWithEllipsis("ab", 3); got != "ab..." {
		t.Errorf("truncateWithEllipsis() = %q, want ab...", got)
	}
}
