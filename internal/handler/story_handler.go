package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/hnfeed/internal/middleware"
	"github.com/hitoshi/hnfeed/internal/model"
	"github.com/hitoshi/hnfeed/internal/security"
	"github.com/hitoshi/hnfeed/internal/story"
)

// StorySource はストーリーハンドラーが必要とする読み込みインターフェース。
// hnapi.Clientが実装する。
type StorySource interface {
	// LoadStories はカテゴリのストーリーを最大limit件読み込む。
	// ID一覧が取得できずキャッシュもない場合はエラーを返す。
	LoadStories(ctx context.Context, category model.Category, limit int) ([]model.Story, error)
}

// StoryHandlerConfig はStoryHandlerの設定を保持する。
type StoryHandlerConfig struct {
	DefaultLimit int // limit省略時の取得件数
	MaxLimit     int // limitの上限
}

// DefaultStoryHandlerConfig はデフォルトの設定を返す。
func DefaultStoryHandlerConfig() StoryHandlerConfig {
	return StoryHandlerConfig{
		DefaultLimit: 30,
		MaxLimit:     100,
	}
}

// StoryHandler はストーリー一覧とカテゴリ一覧のHTTPハンドラー。
type StoryHandler struct {
	source    StorySource
	presenter *storyPresenter
	logger    *slog.Logger
	config    StoryHandlerConfig
}

// NewStoryHandler はStoryHandlerを生成する。
func NewStoryHandler(source StorySource, sanitizer security.Sanitizer, logger *slog.Logger, config StoryHandlerConfig) *StoryHandler {
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = DefaultStoryHandlerConfig().DefaultLimit
	}
	if config.MaxLimit < config.DefaultLimit {
		config.MaxLimit = config.DefaultLimit
	}
	return &StoryHandler{
		source:    source,
		presenter: newStoryPresenter(sanitizer),
		logger:    logger,
		config:    config,
	}
}

// categoryResponse はカテゴリタブのAPIレスポンス。
type categoryResponse struct {
	ID    model.Category `json:"id"`
	Label string         `json:"label"`
	Title string         `json:"title"`
}

// storyListResponse はストーリー一覧のAPIレスポンス。
type storyListResponse struct {
	Category     model.Category  `json:"category"`
	Title        string          `json:"title"`
	Query        string          `json:"query,omitempty"`
	Count        int             `json:"count"`
	Stories      []storyResponse `json:"stories"`
	EmptyMessage string          `json:"empty_message,omitempty"`
}

// ListCategories はカテゴリタブの一覧を返す。
// GET /api/categories
func (h *StoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	resp := make([]categoryResponse, 0, len(model.Categories))
	for _, c := range model.Categories {
		resp = append(resp, categoryResponse{
			ID:    c,
			Label: story.CategoryLabel(c),
			Title: story.CategoryTitle(c),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListStories はカテゴリのストーリーを読み込み、検索語で絞り込んでスコア順に返す。
// GET /api/stories?category=&q=&limit=
func (h *StoryHandler) ListStories(w http.ResponseWriter, r *http.Request) {
	category, ok := model.ParseCategory(r.URL.Query().Get("category"))
	if !ok {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidCategoryError(r.URL.Query().Get("category")))
		return
	}

	limit, ok := h.parseLimit(r.URL.Query().Get("limit"))
	if !ok {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidLimitError(r.URL.Query().Get("limit"), h.config.MaxLimit))
		return
	}

	stories, err := h.source.LoadStories(r.Context(), category, limit)
	if err != nil {
		h.logger.Error("failed to load stories",
			slog.String("category", string(category)),
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
		middleware.WriteErrorResponse(w, http.StatusBadGateway,
			model.NewFetchFailedError("Hacker News APIに接続できませんでした"))
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	visible := story.SortByScore(story.Filter(stories, category, query))

	writeJSON(w, http.StatusOK, storyListResponse{
		Category:     category,
		Title:        story.CategoryTitle(category),
		Query:        query,
		Count:        len(visible),
		Stories:      h.presenter.present(visible),
		EmptyMessage: emptyMessageFor(visible, query),
	})
}

// parseLimit はlimitパラメータを解析する。空文字列はデフォルト値を返す。
func (h *StoryHandler) parseLimit(raw string) (int, bool) {
	if raw == "" {
		return h.config.DefaultLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > h.config.MaxLimit {
		return 0, false
	}
	return n, true
}

// storyResponse は表示用フィールドを追加したストーリーのAPIレスポンス。
type storyResponse struct {
	model.Story
	TimeAgo    string `json:"time_ago"`
	ScoreLabel string `json:"score_label"`
}

// storyPresenter はストーリーをAPIレスポンスに変換する。
type storyPresenter struct {
	sanitizer security.Sanitizer
	now       func() time.Time
}

func newStoryPresenter(sanitizer security.Sanitizer) *storyPresenter {
	if sanitizer == nil {
		sanitizer = security.NewTextSanitizer()
	}
	return &storyPresenter{sanitizer: sanitizer, now: time.Now}
}

func (p *storyPresenter) present(stories []model.Story) []storyResponse {
	now := p.now()
	resp := make([]storyResponse, 0, len(stories))
	for _, s := range stories {
		s.Text = p.sanitizer.Sanitize(s.Text)
		resp = append(resp, storyResponse{
			Story:      s,
			TimeAgo:    story.FormatTimeAgo(s.Time, now),
			ScoreLabel: story.FormatNumber(s.Score),
		})
	}
	return resp
}

func emptyMessageFor(stories []model.Story, query string) string {
	if len(stories) > 0 {
		return ""
	}
	return story.EmptyMessage(query)
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
