package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/hnfeed/internal/metrics"
	"github.com/hitoshi/hnfeed/internal/middleware"
	"github.com/hitoshi/hnfeed/internal/security"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// ストーリー
	Stories     StorySource
	StoryConfig StoryHandlerConfig
	Sanitizer   security.Sanitizer

	// フィード
	Feed FeedLoaderInterface

	// 運用
	HealthChecker   HealthChecker       // nilの場合は疎通確認をしない
	MetricsGatherer prometheus.Gatherer // nilの場合は/metricsを公開しない
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → Logging → Recovery → SecurityHeaders → CORS → RateLimit(General)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	storyHandler := NewStoryHandler(deps.Stories, deps.Sanitizer, deps.Logger, deps.StoryConfig)
	feedHandler := NewFeedHandler(deps.Feed, deps.Sanitizer)
	healthHandler := NewHealthHandler(deps.HealthChecker, deps.Logger)

	// --- 運用エンドポイント ---
	r.Get("/health", healthHandler.Health)
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- API ---
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/categories", storyHandler.ListCategories)
		r.Get("/api/stories", storyHandler.ListStories)

		r.Route("/api/feed", func(r chi.Router) {
			r.Get("/", feedHandler.GetFeed)
			r.Put("/category", feedHandler.SelectCategory)

			// 再読み込みは専用のレート制限を追加
			r.With(deps.RateLimiter.RefreshMiddleware()).Post("/refresh", feedHandler.Refresh)
		})
	})

	return r
}
