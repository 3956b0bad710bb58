package model

// Story は表示用に変換済みのストーリー。
// フェッチサイクルごとにItemから1回だけ生成され、以後は変更しない。
type Story struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	URL         string   `json:"url,omitempty"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	Score       int      `json:"score"`
	Author      string   `json:"author"`
	Time        int64    `json:"time"`
	Descendants int      `json:"descendants"`
	Category    Category `json:"category"`
	Domain      string   `json:"domain,omitempty"`
	Type        ItemType `json:"type"`
	Text        string   `json:"text,omitempty"`
}
