package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/hitoshi/hnfeed/internal/feed"
	"github.com/hitoshi/hnfeed/internal/model"
)

// --- モック定義 ---

// mockStorySource はStorySourceのモック実装。
type mockStorySource struct {
	loadStoriesFn func(ctx context.Context, category model.Category, limit int) ([]model.Story, error)
	calls         int
}

func (m *mockStorySource) LoadStories(ctx context.Context, category model.Category, limit int) ([]model.Story, error) {
	m.calls++
	if m.loadStoriesFn != nil {
		return m.loadStoriesFn(ctx, category, limit)
	}
	return []model.Story{}, nil
}

// mockFeedLoader はFeedLoaderInterfaceのモック実装。
type mockFeedLoader struct {
	state    feed.State
	done     chan struct{} // nilの場合は閉じたチャネルを返す
	selected []model.Category
	refreshs int
}

func (m *mockFeedLoader) doneChan() <-chan struct{} {
	if m.done != nil {
		return m.done
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (m *mockFeedLoader) Select(category model.Category) <-chan struct{} {
	m.selected = append(m.selected, category)
	m.state.Category = category
	return m.doneChan()
}

func (m *mockFeedLoader) Refresh() <-chan struct{} {
	m.refreshs++
	return m.doneChan()
}

func (m *mockFeedLoader) Snapshot() feed.State {
	return m.state
}

// mockHealthChecker はHealthCheckerのモック実装。
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// sampleStories はテスト用のストーリー一覧を返す。
func sampleStories() []model.Story {
	return []model.Story{
		{ID: 1, Title: "Rust 2.0 released", Description: "A new edition", Score: 150, Author: "alice", Time: 1700000000, Category: model.CategoryTop, Type: model.ItemTypeStory},
		{ID: 2, Title: "Ask HN: Learning Go?", Description: "Looking for advice", Score: 1234, Author: "bob", Time: 1700000000, Category: model.CategoryAsk, Type: model.ItemTypeStory,
			Text: `<p>Any tips?</p><script>alert(1)</script>`},
		{ID: 3, Title: "Show HN: A tiny database", Description: "Built in a weekend", Score: 80, Author: "carol", Time: 1700000000, Category: model.CategoryShow, Type: model.ItemTypeStory},
	}
}
