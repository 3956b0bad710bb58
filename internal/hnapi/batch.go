package hnapi

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/hnfeed/internal/model"
	"github.com/hitoshi/hnfeed/internal/story"
)

const (
	// BatchSize は同時に取得するアイテム数。
	BatchSize = 10
	// DefaultStoryLimit は1回に読み込むストーリー数の既定値。
	DefaultStoryLimit = 30
)

// SplitBatches はIDをsize件ずつに分割する。最後のバッチは端数になる。
func SplitBatches(ids []int64, size int) [][]int64 {
	if size <= 0 {
		size = BatchSize
	}
	var batches [][]int64
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[i:end])
	}
	return batches
}

// LoadStories はカテゴリのストーリーを先頭からlimit件まで読み込む。
// limitが0以下の場合はDefaultStoryLimitを使用する。
//
// IDは10件ずつのバッチに分け、バッチ内は並行に取得し、全件そろってから次のバッチに進む。
// 取得できなかったアイテムと削除済み・dead のアイテムは除外し、IDの順序を保って返す。
// ID一覧の取得に失敗した場合はエラーを返す。
func (c *Client) LoadStories(ctx context.Context, category model.Category, limit int) ([]model.Story, error) {
	start := time.Now()
	if limit <= 0 {
		limit = DefaultStoryLimit
	}

	ids, err := c.ListIdentifiers(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	stories := make([]model.Story, 0, len(ids))
	for _, batch := range SplitBatches(ids, BatchSize) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stories = append(stories, c.loadBatch(ctx, category, batch)...)
	}

	c.metrics.RecordStoriesLoaded(string(category), len(stories))
	c.logger.Info("ストーリーを読み込みました",
		slog.String("category", string(category)),
		slog.Int("requested", len(ids)),
		slog.Int("loaded", len(stories)),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return stories, nil
}

// FetchStories はLoadStoriesのエラーを握りつぶす版。
// 失敗時は空のスライスを返す。
func (c *Client) FetchStories(ctx context.Context, category model.Category, limit int) []model.Story {
	stories, err := c.LoadStories(ctx, category, limit)
	if err != nil {
		c.logger.Warn("ストーリーの読み込みに失敗したため空の一覧を返します",
			slog.String("category", string(category)),
			slog.String("error", err.Error()),
		)
		return []model.Story{}
	}
	return stories
}

// loadBatch はバッチ内のアイテムを1件1ゴルーチンで取得・変換し、全件の完了を待つ。
func (c *Client) loadBatch(ctx context.Context, category model.Category, ids []int64) []model.Story {
	slots := make([]*model.Story, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()

			item := c.FetchItem(ctx, id)
			if !item.IsVisible() {
				c.metrics.RecordItemSkipped()
				return
			}
			s := story.ToStory(item, category)
			slots[i] = &s
		}()
	}
	wg.Wait()

	stories := make([]model.Story, 0, len(ids))
	for _, s := range slots {
		if s != nil {
			stories = append(stories, *s)
		}
	}
	return stories
}
