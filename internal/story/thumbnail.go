package story

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf16"

	"github.com/hitoshi/hnfeed/internal/model"
)

// Topic はサムネイル画像プールの分類。
type Topic string

const (
	TopicTech       Topic = "tech"
	TopicBusiness   Topic = "business"
	TopicScience    Topic = "science"
	TopicSecurity   Topic = "security"
	TopicDesign     Topic = "design"
	TopicCrypto     Topic = "crypto"
	TopicDiscussion Topic = "discussion"
)

const githubOpenGraphURL = "https://opengraph.githubassets.com/1/%s/%s"

// pexels はPexelsの写真IDから400px幅のサムネイルURLを作る。
func pexels(id string) string {
	return fmt.Sprintf("https://images.pexels.com/photos/%s/pexels-photo-%s.jpeg?auto=compress&cs=tinysrgb&w=400", id, id)
}

// topicPools はトピックごとの画像URLの候補。
var topicPools = map[Topic][]string{
	TopicTech: {
		pexels("1181263"),
		pexels("1181298"),
		pexels("8386440"),
		pexels("1181244"),
	},
	TopicBusiness: {
		pexels("3183153"),
		pexels("3184291"),
	},
	TopicScience: {
		pexels("8386434"),
		pexels("2280571"),
	},
	TopicSecurity: {
		"https://images.pexels.com/photos/60504/security-protection-anti-virus-software-60504.jpeg?auto=compress&cs=tinysrgb&w=400",
	},
	TopicDesign: {
		pexels("196644"),
	},
	TopicCrypto: {
		pexels("8370752"),
	},
	TopicDiscussion: {
		pexels("1181671"),
	},
}

// topicKeywords はタイトルのキーワードとトピックの対応。先頭から順に判定する。
var topicKeywords = []struct {
	topic    Topic
	keywords []string
}{
	{TopicSecurity, []string{"security", "vulnerability", "hack"}},
	{TopicDesign, []string{"design", "ui", "ux"}},
	{TopicCrypto, []string{"crypto", "blockchain", "bitcoin"}},
	{TopicBusiness, []string{"business", "startup", "company"}},
	{TopicScience, []string{"science", "research", "study"}},
}

// Pool はトピックの画像URL候補を返す。
func Pool(topic Topic) []string {
	return topicPools[topic]
}

// Thumbnail はストーリーのサムネイルURLを返す。
// GitHubリポジトリへのリンクならOpenGraph画像、それ以外はトピック別プールから
// タイトルのハッシュで1枚選ぶ。同じタイトルには常に同じ画像が選ばれる。
func Thumbnail(linkURL, title string, category model.Category) string {
	if image := LinkImage(linkURL); image != "" {
		return image
	}
	pool := topicPools[InferTopic(title, category)]
	return pool[poolIndex(TitleHash(title), len(pool))]
}

// LinkImage はリンク先から直接得られる画像URLを返す。
// github.comのホストでパスに2セグメント以上ある場合のみ対応し、それ以外は空文字列。
func LinkImage(linkURL string) string {
	if linkURL == "" {
		return ""
	}
	u, err := url.Parse(linkURL)
	if err != nil {
		return ""
	}
	if !strings.Contains(strings.ToLower(u.Hostname()), "github.com") {
		return ""
	}

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 2 {
		return ""
	}
	return fmt.Sprintf(githubOpenGraphURL, segments[0], segments[1])
}

// InferTopic はタイトルのキーワードとカテゴリからトピックを推定する。
func InferTopic(title string, category model.Category) Topic {
	lower := strings.ToLower(title)
	for _, tk := range topicKeywords {
		for _, kw := range tk.keywords {
			if strings.Contains(lower, kw) {
				return tk.topic
			}
		}
	}
	if category == model.CategoryAsk || strings.Contains(lower, "ask") || strings.Contains(lower, "discussion") {
		return TopicDiscussion
	}
	return TopicTech
}

// TitleHash はタイトルのUTF-16コード単位に対する32ビットのローリングハッシュ。
// h = h*31 + c を int32 の桁あふれ込みで計算する。
func TitleHash(title string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(title)) {
		h = h*31 + int32(unit)
	}
	return h
}

// poolIndex はハッシュの絶対値をプールサイズで割った余りを返す。
// math.MinInt32でも符号が反転しないようint64で計算する。
func poolIndex(hash int32, size int) int {
	v := int64(hash)
	if v < 0 {
		v = -v
	}
	return int(v % int64(size))
}
