package story

import (
	"math"
	"slices"
	"testing"

	"github.com/hitoshi/hnfeed/internal/model"
)

func TestTitleHash_KnownValues(t *testing.T) {
	tests := []struct {
		title string
		want  int32
	}{
		{"", 0},
		{"ab", 3105},
		{"Hello", 69609650},
		{"Show HN: My weekend project", 481291803},
		{"Ask HN: how do you manage debt?", 1747949476},
	}

	for _, tt := range tests {
		if got := TitleHash(tt.title); got != tt.want {
			t.Errorf("TitleHash(%q) = %d, want %d", tt.title, got, tt.want)
		}
	}
}

func TestTitleHash_WrapsAround(t *testing.T) {
	// 長いタイトルでは32ビットであふれて負になり得るが、インデックスは範囲内に収まる
	title := "A very long title that will certainly overflow a thirty-two bit accumulator"
	idx := poolIndex(TitleHash(title), 4)
	if idx < 0 || idx >= 4 {
		t.Errorf("poolIndex = %d, want 0..3", idx)
	}
}

func TestPoolIndex_MinInt32(t *testing.T) {
	if got := poolIndex(math.MinInt32, 3); got != int(int64(1<<31)%3) {
		t.Errorf("poolIndex(MinInt32, 3) = %d, want %d", got, int(int64(1<<31)%3))
	}
}

func TestInferTopic(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		category model.Category
		want     Topic
	}{
		{"security", "Critical vulnerability in OpenSSL", model.CategoryTop, TopicSecurity},
		{"design", "A new UX for terminals", model.CategoryTop, TopicDesign},
		{"crypto", "Bitcoin hits new high", model.CategoryTop, TopicCrypto},
		{"business", "My startup failed", model.CategoryTop, TopicBusiness},
		{"science", "New research on sleep", model.CategoryTop, TopicScience},
		{"securityが先に判定される", "Security research at scale", model.CategoryTop, TopicSecurity},
		{"uiは単語の一部にも一致する", "Building a compiler", model.CategoryTop, TopicDesign},
		{"askカテゴリはdiscussion", "What do you think?", model.CategoryAsk, TopicDiscussion},
		{"タイトルにaskを含む", "Ask HN: favourite editor?", model.CategoryTop, TopicDiscussion},
		{"タイトルにdiscussionを含む", "Open discussion thread", model.CategoryNew, TopicDiscussion},
		{"それ以外はtech", "Rewriting Systems in Rust", model.CategoryTop, TopicTech},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferTopic(tt.title, tt.category); got != tt.want {
				t.Errorf("InferTopic(%q) = %s, want %s", tt.title, got, tt.want)
			}
		})
	}
}

func TestLinkImage(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/golang/go", "https://opengraph.githubassets.com/1/golang/go"},
		{"https://github.com/golang/go/issues/1", "https://opengraph.githubassets.com/1/golang/go"},
		{"https://www.github.com/a/b/", "https://opengraph.githubassets.com/1/a/b"},
		{"https://github.com/golang", ""},
		{"https://example.com/golang/go", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := LinkImage(tt.url); got != tt.want {
			t.Errorf("LinkImage(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestThumbnail_PicksFromPoolByHash(t *testing.T) {
	// "Hello" のハッシュは69609650、techプール4件なので添字2
	got := Thumbnail("", "Hello", model.CategoryTop)
	if want := Pool(TopicTech)[2]; got != want {
		t.Errorf("Thumbnail() = %q, want %q", got, want)
	}
}

func TestThumbnail_Deterministic(t *testing.T) {
	a := Thumbnail("https://example.com", "Show HN: My weekend project", model.CategoryShow)
	b := Thumbnail("https://example.com", "Show HN: My weekend project", model.CategoryShow)
	if a != b {
		t.Errorf("同じタイトルで異なるサムネイル: %q != %q", a, b)
	}
	if !slices.Contains(Pool(TopicTech), a) {
		t.Errorf("サムネイルがtechプールにない: %q", a)
	}
}

func TestThumbnail_GitHubTakesPrecedence(t *testing.T) {
	got := Thumbnail("https://github.com/rust-lang/rust", "Security fix", model.CategoryTop)
	if got != "https://opengraph.githubassets.com/1/rust-lang/rust" {
		t.Errorf("Thumbnail() = %q", got)
	}
}

func TestPools_NonEmpty(t *testing.T) {
	for _, topic := range []Topic{TopicTech, TopicBusiness, TopicScience, TopicSecurity, TopicDesign, TopicCrypto, TopicDiscussion} {
		if len(Pool(topic)) == 0 {
			t.Errorf("%s プールが空", topic)
		}
	}
}
