package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/hnfeed/internal/feed"
	"github.com/hitoshi/hnfeed/internal/middleware"
	"github.com/hitoshi/hnfeed/internal/model"
	"github.com/hitoshi/hnfeed/internal/security"
	"github.com/hitoshi/hnfeed/internal/story"
)

// FeedLoaderInterface はフィードハンドラーが必要とするローダーのインターフェース。
// feed.Loaderが実装する。
type FeedLoaderInterface interface {
	// Select はカテゴリを切り替えて読み込みを開始する。
	Select(category model.Category) <-chan struct{}
	// Refresh は現在のカテゴリを再読み込みする。
	Refresh() <-chan struct{}
	// Snapshot は現在の状態のコピーを返す。
	Snapshot() feed.State
}

// FeedHandler は選択中カテゴリのフィード表示と切り替えのHTTPハンドラー。
type FeedHandler struct {
	loader    FeedLoaderInterface
	presenter *storyPresenter
}

// NewFeedHandler はFeedHandlerを生成する。
func NewFeedHandler(loader FeedLoaderInterface, sanitizer security.Sanitizer) *FeedHandler {
	return &FeedHandler{
		loader:    loader,
		presenter: newStoryPresenter(sanitizer),
	}
}

// selectCategoryRequest はカテゴリ切り替えリクエストのボディ。
type selectCategoryRequest struct {
	Category string `json:"category"`
}

// feedResponse はフィードのAPIレスポンス。
type feedResponse struct {
	Category     model.Category  `json:"category"`
	Title        string          `json:"title"`
	Query        string          `json:"query,omitempty"`
	Loading      bool            `json:"loading"`
	Error        string          `json:"error,omitempty"`
	Generation   uint64          `json:"generation"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`
	Count        int             `json:"count"`
	Stories      []storyResponse `json:"stories"`
	EmptyMessage string          `json:"empty_message,omitempty"`
}

// GetFeed は現在のフィードを検索語で絞り込んでスコア順に返す。
// GET /api/feed?q=
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, h.buildResponse(h.loader.Snapshot(), query))
}

// SelectCategory はカテゴリを切り替える。
// PUT /api/feed/category
//
// wait=trueの場合は読み込み完了まで待って200を返し、それ以外は202を返す。
func (h *FeedHandler) SelectCategory(w http.ResponseWriter, r *http.Request) {
	var req selectCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	category, ok := model.ParseCategory(req.Category)
	if !ok {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidCategoryError(req.Category))
		return
	}

	h.respondAfter(w, r, h.loader.Select(category))
}

// Refresh は現在のカテゴリを再読み込みする。
// POST /api/feed/refresh
func (h *FeedHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.respondAfter(w, r, h.loader.Refresh())
}

// respondAfter はwait指定に応じて読み込み完了を待ち、現在の状態を返す。
// 待機中にリクエストがキャンセルされた場合は読み込み中の状態を202で返す。
func (h *FeedHandler) respondAfter(w http.ResponseWriter, r *http.Request, done <-chan struct{}) {
	status := http.StatusAccepted
	if r.URL.Query().Get("wait") == "true" {
		select {
		case <-done:
			status = http.StatusOK
		case <-r.Context().Done():
		}
	}
	writeJSON(w, status, h.buildResponse(h.loader.Snapshot(), ""))
}

func (h *FeedHandler) buildResponse(state feed.State, query string) feedResponse {
	visible := story.SortByScore(story.Filter(state.Stories, state.Category, query))

	resp := feedResponse{
		Category:   state.Category,
		Title:      story.CategoryTitle(state.Category),
		Query:      query,
		Loading:    state.Loading,
		Error:      state.Error,
		Generation: state.Generation,
		Count:      len(visible),
		Stories:    h.presenter.present(visible),
	}
	if !state.UpdatedAt.IsZero() {
		updatedAt := state.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	if !state.Loading {
		resp.EmptyMessage = emptyMessageFor(visible, query)
	}
	return resp
}
