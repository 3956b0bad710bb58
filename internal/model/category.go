package model

// Category はストーリーのカテゴリ（タブ）を表す。
// CategoryAll はリクエスト時のフィルタ値であり、Story.Category には現れない。
type Category string

const (
	CategoryAll  Category = "all"
	CategoryTop  Category = "top"
	CategoryNew  Category = "new"
	CategoryBest Category = "best"
	CategoryAsk  Category = "ask"
	CategoryShow Category = "show"
	CategoryJobs Category = "jobs"
)

// Categories はタブの表示順に並べた全カテゴリ。
var Categories = []Category{
	CategoryAll,
	CategoryTop,
	CategoryNew,
	CategoryBest,
	CategoryAsk,
	CategoryShow,
	CategoryJobs,
}

// ParseCategory は文字列をCategoryに変換する。
// 空文字列はCategoryAllとして扱う。未知の値の場合はfalseを返す。
func ParseCategory(s string) (Category, bool) {
	if s == "" {
		return CategoryAll, true
	}
	c := Category(s)
	if !c.Valid() {
		return "", false
	}
	return c, true
}

// Valid は既知のカテゴリかどうかを返す。
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsConcrete はストーリーに付与できるカテゴリ（all以外）かどうかを返す。
func (c Category) IsConcrete() bool {
	return c.Valid() && c != CategoryAll
}
