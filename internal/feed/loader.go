// Package feed は選択中カテゴリのストーリー一覧と読み込み状態を保持する。
//
// 読み込みを開始するたびに世代番号を進め、前の読み込みのコンテキストをキャンセルする。
// 完了時に世代が最新でない結果は破棄するため、古い読み込みが新しい結果を上書きしない。
package feed

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/hitoshi/hnfeed/internal/model"
)

// LoadErrorMessage はID一覧の取得に失敗したときに表示するメッセージ。
const LoadErrorMessage = "Failed to load stories. Please try again."

// StoryLoader はカテゴリのストーリーを読み込むインターフェース。
// hnapi.Clientが実装する。
type StoryLoader interface {
	LoadStories(ctx context.Context, category model.Category, limit int) ([]model.Story, error)
}

// State はある時点の読み込み状態。
type State struct {
	Category   model.Category
	Stories    []model.Story
	Loading    bool
	Error      string
	Generation uint64
	UpdatedAt  time.Time // 最後に読み込みが成功した時刻
}

// Loader は選択中カテゴリのストーリーを読み込み、状態を保持する。
// すべてのメソッドは複数のゴルーチンから呼び出せる。
type Loader struct {
	source StoryLoader
	logger *slog.Logger
	limit  int
	now    func() time.Time

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc // 実行中の読み込みのキャンセル
}

// NewLoader はLoaderの新しいインスタンスを生成する。
// 初期カテゴリはallで、読み込みはSelectまたはRefreshの呼び出しで始まる。
func NewLoader(source StoryLoader, logger *slog.Logger, limit int) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		source:     source,
		logger:     logger,
		limit:      limit,
		now:        time.Now,
		baseCtx:    ctx,
		baseCancel: cancel,
		state: State{
			Category: model.CategoryAll,
			Stories:  []model.Story{},
		},
	}
}

// Select はカテゴリを切り替えて読み込みを開始する。
// 返されるチャネルはこの読み込みが終わると閉じられる。
func (l *Loader) Select(category model.Category) <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.startLocked(category)
}

// Refresh は現在のカテゴリを再読み込みする。
func (l *Loader) Refresh() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.startLocked(l.state.Category)
}

// Snapshot は現在の状態のコピーを返す。
func (l *Loader) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.state
	s.Stories = slices.Clone(l.state.Stories)
	return s
}

// Close は実行中の読み込みをキャンセルし、終了を待つ。
func (l *Loader) Close() {
	l.baseCancel()
	l.wg.Wait()
}

// startLocked は世代を進めて読み込みを開始する。l.muを保持した状態で呼ぶこと。
func (l *Loader) startLocked(category model.Category) <-chan struct{} {
	if l.cancel != nil {
		l.cancel()
	}

	l.state.Generation++
	l.state.Category = category
	l.state.Loading = true
	l.state.Error = ""

	ctx, cancel := context.WithCancel(l.baseCtx)
	l.cancel = cancel

	done := make(chan struct{})
	l.wg.Add(1)
	go l.run(ctx, cancel, l.state.Generation, category, done)
	return done
}

func (l *Loader) run(ctx context.Context, cancel context.CancelFunc, generation uint64, category model.Category, done chan struct{}) {
	defer l.wg.Done()
	defer close(done)
	defer cancel()

	stories, err := l.source.LoadStories(ctx, category, l.limit)

	l.mu.Lock()
	defer l.mu.Unlock()

	if generation != l.state.Generation || ctx.Err() != nil {
		l.logger.Debug("古い読み込み結果を破棄しました",
			slog.String("category", string(category)),
			slog.Uint64("generation", generation),
			slog.Uint64("current_generation", l.state.Generation),
		)
		return
	}

	l.state.Loading = false
	l.cancel = nil

	if err != nil {
		l.state.Error = LoadErrorMessage
		l.logger.Error("ストーリーの読み込みに失敗しました",
			slog.String("category", string(category)),
			slog.Uint64("generation", generation),
			slog.String("error", err.Error()),
		)
		return
	}

	l.state.Stories = stories
	l.state.UpdatedAt = l.now()
	l.logger.Info("ストーリー一覧を更新しました",
		slog.String("category", string(category)),
		slog.Uint64("generation", generation),
		slog.Int("count", len(stories)),
	)
}
