package story

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hitoshi/hnfeed/internal/model"
)

// Filter はカテゴリと検索語でストーリーを絞り込む。
// categoryがall以外なら一致するもののみ残し、検索語（前後の空白は除去）が空でなければ
// タイトル・説明文・投稿者のいずれかに大文字小文字を区別せず含むもののみ残す。
// 入力の順序を保ち、入力スライスは変更しない。
func Filter(stories []model.Story, category model.Category, query string) []model.Story {
	q := strings.ToLower(strings.TrimSpace(query))
	result := make([]model.Story, 0, len(stories))

	for _, s := range stories {
		if category != model.CategoryAll && s.Category != category {
			continue
		}
		if q != "" && !matchesQuery(s, q) {
			continue
		}
		result = append(result, s)
	}
	return result
}

func matchesQuery(s model.Story, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(s.Description), lowerQuery) ||
		strings.Contains(strings.ToLower(s.Author), lowerQuery)
}

// SortByScore はスコアの降順に並べ替えたコピーを返す。
// 同点のストーリーは元の順序を保つ。
func SortByScore(stories []model.Story) []model.Story {
	sorted := slices.Clone(stories)
	slices.SortStableFunc(sorted, func(a, b model.Story) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return sorted
}
