package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/hnfeed/internal/cache"
	"github.com/hitoshi/hnfeed/internal/config"
	"github.com/hitoshi/hnfeed/internal/database"
	"github.com/hitoshi/hnfeed/internal/feed"
	"github.com/hitoshi/hnfeed/internal/handler"
	"github.com/hitoshi/hnfeed/internal/hnapi"
	"github.com/hitoshi/hnfeed/internal/logger"
	"github.com/hitoshi/hnfeed/internal/metrics"
	"github.com/hitoshi/hnfeed/internal/middleware"
	"github.com/hitoshi/hnfeed/internal/model"
	"github.com/hitoshi/hnfeed/internal/security"
)

// logLevel はグローバルロガーの出力レベル。設定読み込み後に変更する。
var logLevel = new(slog.LevelVar)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、環境変数と設定ファイルからConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logLevel.Set(slog.LevelInfo)
	logger.SetupDefault(w, logLevel)

	// 2. 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定のログレベルを反映する
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	logLevel.Set(level)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("hn_api_base_url", cfg.HNAPIBaseURL),
		slog.String("cache_backend", cfg.CacheBackend),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	}
}

// application はserveモードで組み立てた依存関係を保持する。
type application struct {
	handler     http.Handler
	client      *hnapi.Client
	loader      *feed.Loader
	rateLimiter *middleware.RateLimiter
	db          *sql.DB // CACHE_BACKENDがmemoryの場合はnil
}

// newApplication は設定から全依存関係をワイヤリングする。
// 初期カテゴリ（all）の読み込みはバックグラウンドで開始する。
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	app := &application{}

	// 1. レスポンスキャッシュ
	var store cache.Store
	switch cfg.CacheBackend {
	case config.CacheBackendPostgres:
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		app.db = db
		store = cache.NewPostgresStore(db)
		log.Info("database connection established")
	default:
		store = cache.NewMemoryStore()
	}
	responseCache := cache.New(store, cfg.CacheTTL)

	// 2. 上流APIへのHTTPクライアント
	httpClient, err := newUpstreamHTTPClient(cfg)
	if err != nil {
		app.close()
		return nil, err
	}

	// 3. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 4. Hacker News APIクライアントとフィードローダー
	app.client = hnapi.NewClient(httpClient, responseCache, log, collector, hnapi.ClientConfig{
		BaseURL:     cfg.HNAPIBaseURL,
		MaxBodySize: cfg.FetchMaxSize,
	})
	app.loader = feed.NewLoader(app.client, log, cfg.StoryLimit)

	// 5. ルーターの構築
	app.rateLimiter = middleware.NewRateLimiter(
		middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitRefresh),
		log,
	)

	deps := &handler.RouterDeps{
		Logger:            log,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       app.rateLimiter,
		Stories:           app.client,
		StoryConfig: handler.StoryHandlerConfig{
			DefaultLimit: cfg.StoryLimit,
			MaxLimit:     max(cfg.StoryLimit, 100),
		},
		Sanitizer:       security.NewTextSanitizer(),
		Feed:            app.loader,
		MetricsGatherer: registry,
	}
	if app.db != nil {
		deps.HealthChecker = app.db
	}
	app.handler = handler.NewRouter(deps)

	// 6. 初期カテゴリの読み込みを開始
	app.loader.Select(model.CategoryAll)

	return app, nil
}

// close はバックグラウンド処理を止め、接続を閉じる。
func (a *application) close() {
	if a.loader != nil {
		a.loader.Close()
	}
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// newUpstreamHTTPClient は上流API用のHTTPクライアントを生成する。
// ALLOW_PRIVATE_UPSTREAMが無効な場合はベースURLを検証し、接続先IPを検査するクライアントを返す。
func newUpstreamHTTPClient(cfg *config.Config) (*http.Client, error) {
	if cfg.AllowPrivateUpstream {
		slog.Warn("upstream SSRF guard is disabled", slog.String("hn_api_base_url", cfg.HNAPIBaseURL))
		return &http.Client{Timeout: cfg.FetchTimeout}, nil
	}

	guard := security.NewUpstreamGuard()
	if err := guard.ValidateURL(cfg.HNAPIBaseURL); err != nil {
		return nil, fmt.Errorf("HN_API_BASE_URL is not allowed: %w", err)
	}
	return guard.NewSafeClient(cfg.FetchTimeout), nil
}

// runServe はAPIサーバーモードで起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	log := slog.Default()

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for migrate")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL, slog.Default()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	endpoint := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
