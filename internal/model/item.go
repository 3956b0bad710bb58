// Package model はドメインモデルを定義する。
package model

// ItemType はHacker News APIのアイテム種別を表す。
type ItemType string

const (
	// ItemTypeStory は通常のストーリー。
	ItemTypeStory ItemType = "story"
	// ItemTypeJob は求人投稿。
	ItemTypeJob ItemType = "job"
	// ItemTypeComment はコメント。
	ItemTypeComment ItemType = "comment"
	// ItemTypePoll は投票。
	ItemTypePoll ItemType = "poll"
	// ItemTypePollOpt は投票の選択肢。
	ItemTypePollOpt ItemType = "pollopt"
)

// Item はHacker News APIの /item/{id}.json が返すレコード。
// 取得後に変更しない。省略されたフィールドはゼロ値になる。
type Item struct {
	ID          int64    `json:"id"`
	Deleted     bool     `json:"deleted,omitempty"`
	Type        ItemType `json:"type"`
	By          string   `json:"by,omitempty"`
	Time        int64    `json:"time,omitempty"` // UNIX秒
	Text        string   `json:"text,omitempty"` // HTML
	Dead        bool     `json:"dead,omitempty"`
	Parent      int64    `json:"parent,omitempty"`
	Poll        int64    `json:"poll,omitempty"`
	Kids        []int64  `json:"kids,omitempty"`
	URL         string   `json:"url,omitempty"`
	Score       int      `json:"score,omitempty"`
	Title       string   `json:"title,omitempty"`
	Parts       []int64  `json:"parts,omitempty"`
	Descendants int      `json:"descendants,omitempty"`
}

// IsVisible は削除済みでもデッドでもないアイテムかどうかを返す。
func (i *Item) IsVisible() bool {
	return i != nil && !i.Deleted && !i.Dead
}
