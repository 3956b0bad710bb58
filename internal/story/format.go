package story

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hitoshi/hnfeed/internal/model"
)

var categoryLabels = map[model.Category]string{
	model.CategoryAll:  "All",
	model.CategoryTop:  "Top",
	model.CategoryNew:  "New",
	model.CategoryBest: "Best",
	model.CategoryAsk:  "Ask HN",
	model.CategoryShow: "Show HN",
	model.CategoryJobs: "Jobs",
}

var categoryTitles = map[model.Category]string{
	model.CategoryAll:  "All Stories",
	model.CategoryTop:  "Top Stories",
	model.CategoryNew:  "New Stories",
	model.CategoryBest: "Best Stories",
	model.CategoryAsk:  "Ask HN",
	model.CategoryShow: "Show HN",
	model.CategoryJobs: "Jobs",
}

// CategoryLabel はタブに表示するカテゴリ名を返す。
func CategoryLabel(c model.Category) string {
	return categoryLabels[c]
}

// CategoryTitle は一覧の見出しに表示するカテゴリ名を返す。
func CategoryTitle(c model.Category) string {
	return categoryTitles[c]
}

// EmptyMessage は一覧が空のときに表示するメッセージを返す。
func EmptyMessage(query string) string {
	if query != "" {
		return `No stories match your search for "` + query + `"`
	}
	return "No stories available in this category"
}

// FormatTimeAgo は投稿時刻（Unix秒）からの経過時間を"5m ago"のような形式で返す。
func FormatTimeAgo(unixSeconds int64, now time.Time) string {
	diff := now.Unix() - unixSeconds

	switch {
	case diff < 60:
		return "just now"
	case diff < 3600:
		return fmt.Sprintf("%dm ago", diff/60)
	case diff < 86400:
		return fmt.Sprintf("%dh ago", diff/3600)
	case diff < 604800:
		return fmt.Sprintf("%dd ago", diff/86400)
	default:
		return fmt.Sprintf("%dw ago", diff/604800)
	}
}

// FormatNumber は1000以上の数を"1.2k"のように小数1桁で短縮する。
func FormatNumber(n int) string {
	if n >= 1000 {
		return strconv.FormatFloat(float64(n)/1000, 'f', 1, 64) + "k"
	}
	return strconv.Itoa(n)
}
