// Package story はHacker Newsのアイテムを表示用ストーリーに変換し、
// 絞り込み・並べ替え・表示用の整形を行う。
package story

import (
	"net/url"
	"strings"

	"github.com/hitoshi/hnfeed/internal/model"
)

const (
	// descriptionLength は本文から作る説明文の最大文字数。
	descriptionLength = 200

	untitledTitle = "Untitled"
	unknownAuthor = "unknown"
)

// 本文を持たないアイテム向けの説明文テンプレート
const (
	askDescription   = "A question posted to the Hacker News community seeking advice, opinions, or experiences from fellow members."
	showDescription  = "A project, product, or creation shared with the Hacker News community for feedback and discussion."
	jobsDescription  = "A job opportunity posted for developers, designers, and other tech professionals."
	otherDescription = "An interesting article or discussion topic shared with the Hacker News community."
)

// ToStory はアイテムを表示用のStoryに変換する。
// requestedがallの場合はアイテムの内容からカテゴリを推定する。
// 欠けたフィールドには既定値を入れ、エラーは返さない。
func ToStory(item *model.Item, requested model.Category) model.Story {
	category := ResolveCategory(item, requested)

	title := item.Title
	if title == "" {
		title = untitledTitle
	}
	author := item.By
	if author == "" {
		author = unknownAuthor
	}

	return model.Story{
		ID:          item.ID,
		Title:       title,
		URL:         item.URL,
		Description: Describe(item, category),
		Thumbnail:   Thumbnail(item.URL, item.Title, category),
		Score:       item.Score,
		Author:      author,
		Time:        item.Time,
		Descendants: item.Descendants,
		Category:    category,
		Domain:      ExtractDomain(item.URL),
		Type:        item.Type,
		Text:        item.Text,
	}
}

// ResolveCategory はストーリーに付与するカテゴリを決める。
// 具体的なカテゴリが指定されていればそれを使い、そうでなければInferCategoryで推定する。
func ResolveCategory(item *model.Item, requested model.Category) model.Category {
	if requested.IsConcrete() {
		return requested
	}
	return InferCategory(item)
}

// InferCategory はアイテムの種別とタイトルからカテゴリを推定する。
// jobはjobs、タイトルに"ask hn"を含めばask、"show hn"を含めばshow、それ以外はtop。
func InferCategory(item *model.Item) model.Category {
	if item.Type == model.ItemTypeJob {
		return model.CategoryJobs
	}
	title := strings.ToLower(item.Title)
	switch {
	case strings.Contains(title, "ask hn"):
		return model.CategoryAsk
	case strings.Contains(title, "show hn"):
		return model.CategoryShow
	default:
		return model.CategoryTop
	}
}

// ExtractDomain はリンクURLのホスト名から先頭の"www."を除いたものを返す。
// URLが空または解析できない場合は空文字列を返す。
func ExtractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// Describe はストーリーの説明文を返す。
// 本文があればマークアップを除去して先頭200文字に"..."を付ける。
// 本文がなければカテゴリごとの定型文を返す。
func Describe(item *model.Item, category model.Category) string {
	if item.Text != "" {
		return truncateWithEllipsis(PlainText(item.Text), descriptionLength)
	}
	switch category {
	case model.CategoryAsk:
		return askDescription
	case model.CategoryShow:
		return showDescription
	case model.CategoryJobs:
		return jobsDescription
	default:
		return otherDescription
	}
}
