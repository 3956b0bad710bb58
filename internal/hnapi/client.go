// Package hnapi はHacker News APIからストーリー一覧とアイテムを取得する。
// すべての取得はレスポンスキャッシュを経由し、新鮮なキャッシュがあれば通信しない。
package hnapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/hnfeed/internal/cache"
	"github.com/hitoshi/hnfeed/internal/metrics"
	"github.com/hitoshi/hnfeed/internal/model"
)

const (
	// DefaultBaseURL はHacker News APIのベースURL。
	DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"
	// DefaultMaxBodySize はレスポンスボディの最大サイズ（バイト）。
	DefaultMaxBodySize int64 = 5 * 1024 * 1024

	userAgent = "HNFeed/1.0"
)

// ClientConfig はClientの設定パラメータ。
type ClientConfig struct {
	// BaseURL はAPIのベースURL。末尾のスラッシュは無視する。
	BaseURL string
	// MaxBodySize はレスポンスボディの最大サイズ。
	MaxBodySize int64
}

// DefaultClientConfig はデフォルトのクライアント設定を返す。
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:     DefaultBaseURL,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// NetworkError は上流APIの呼び出し失敗を表す。
// キャッシュにもフォールバックできなかった場合に返される。
type NetworkError struct {
	URL        string
	StatusCode int // HTTPステータス以外の失敗では0
	Err        error
}

// Error はerrorインターフェースを実装する。
func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s の取得に失敗しました（ステータス %d）", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s の取得に失敗しました: %v", e.URL, e.Err)
}

// Unwrap は元のエラーを返す。
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// errInvalidJSON はレスポンスボディがJSONとして不正な場合のエラー。
var errInvalidJSON = errors.New("レスポンスが正しいJSONではありません")

// Client はHacker News APIのクライアント。
type Client struct {
	httpClient  *http.Client
	cache       *cache.Cache
	logger      *slog.Logger
	metrics     metrics.MetricsCollector
	baseURL     string
	maxBodySize int64
}

// NewClient はClientの新しいインスタンスを生成する。
// metricsCollectorがnilの場合はメトリクスを記録しない。
func NewClient(
	httpClient *http.Client,
	responseCache *cache.Cache,
	logger *slog.Logger,
	metricsCollector metrics.MetricsCollector,
	config ClientConfig,
) *Client {
	if metricsCollector == nil {
		metricsCollector = metrics.Nop{}
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	return &Client{
		httpClient:  httpClient,
		cache:       responseCache,
		logger:      logger,
		metrics:     metricsCollector,
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		maxBodySize: config.MaxBodySize,
	}
}

// listingNames はカテゴリと一覧エンドポイント名の対応。allはtopの別名。
var listingNames = map[model.Category]string{
	model.CategoryAll:  "top",
	model.CategoryTop:  "top",
	model.CategoryNew:  "new",
	model.CategoryBest: "best",
	model.CategoryAsk:  "ask",
	model.CategoryShow: "show",
	model.CategoryJobs: "job",
}

// ListingURL はカテゴリのID一覧エンドポイントURLを返す。
// 未知のカテゴリはtopとして扱う。
func (c *Client) ListingURL(category model.Category) string {
	name, ok := listingNames[category]
	if !ok {
		name = listingNames[model.CategoryTop]
	}
	return fmt.Sprintf("%s/%sstories.json", c.baseURL, name)
}

// ItemURL はアイテムのエンドポイントURLを返す。
func (c *Client) ItemURL(id int64) string {
	return fmt.Sprintf("%s/item/%d.json", c.baseURL, id)
}

// ListIdentifiers はカテゴリのストーリーID一覧を上流の順序のまま返す。
// 通信に失敗しキャッシュもない場合は*NetworkErrorを返す。
func (c *Client) ListIdentifiers(ctx context.Context, category model.Category) ([]int64, error) {
	listingURL := c.ListingURL(category)

	body, err := c.getJSON(ctx, listingURL)
	if err != nil {
		c.metrics.RecordUpstreamFailure(metrics.KindListing)
		c.logger.Error("ストーリーID一覧の取得に失敗しました",
			slog.String("category", string(category)),
			slog.String("url", listingURL),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	var ids []int64
	if err := json.Unmarshal(body, &ids); err != nil {
		c.logger.Error("ストーリーID一覧のパースに失敗しました",
			slog.String("url", listingURL),
			slog.String("error", err.Error()),
		)
		return nil, &NetworkError{URL: listingURL, Err: fmt.Errorf("ID一覧のパースに失敗: %w", err)}
	}
	return ids, nil
}

// FetchItem はアイテムを1件取得する。
// 通信失敗、不正なJSON、nullレスポンスのいずれでもnilを返し、エラーは返さない。
func (c *Client) FetchItem(ctx context.Context, id int64) *model.Item {
	itemURL := c.ItemURL(id)

	body, err := c.getJSON(ctx, itemURL)
	if err != nil {
		c.metrics.RecordUpstreamFailure(metrics.KindItem)
		c.logger.Warn("アイテムの取得に失敗しました",
			slog.Int64("item_id", id),
			slog.String("error", err.Error()),
		)
		return nil
	}

	var item *model.Item
	if err := json.Unmarshal(body, &item); err != nil {
		c.logger.Warn("アイテムのパースに失敗しました",
			slog.Int64("item_id", id),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return item
}

// getJSON はキャッシュポリシーを適用してURLのJSONを取得する。
//   - 新鮮なキャッシュがあれば通信せずに返す
//   - それ以外は通信し、成功すればキャッシュを更新して返す
//   - 通信に失敗した場合は期限切れでもキャッシュがあれば返し、なければエラーを返す
func (c *Client) getJSON(ctx context.Context, rawURL string) ([]byte, error) {
	cached, err := c.cache.Get(ctx, rawURL)
	if err != nil {
		// キャッシュ読み込みの失敗はミスとして扱う
		c.logger.Warn("キャッシュの読み込みに失敗しました",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		cached = cache.Lookup{}
	}

	if cached.Found && cached.Fresh {
		c.metrics.RecordCacheResult(metrics.CacheHit)
		return cached.Payload, nil
	}
	if cached.Found {
		c.metrics.RecordCacheResult(metrics.CacheStale)
	} else {
		c.metrics.RecordCacheResult(metrics.CacheMiss)
	}

	body, fetchErr := c.fetch(ctx, rawURL)
	if fetchErr == nil {
		if err := c.cache.Put(ctx, rawURL, body); err != nil {
			c.logger.Warn("キャッシュの保存に失敗しました",
				slog.String("url", rawURL),
				slog.String("error", err.Error()),
			)
		}
		return body, nil
	}

	if cached.Found {
		c.logger.Warn("取得に失敗したため期限切れのキャッシュを返します",
			slog.String("url", rawURL),
			slog.Time("fetched_at", cached.FetchedAt),
			slog.String("error", fetchErr.Error()),
		)
		return cached.Payload, nil
	}
	return nil, fetchErr
}

// fetch は上流APIを1回呼び出し、正しいJSONのボディのみを返す。
func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: fmt.Errorf("リクエスト作成に失敗: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	c.metrics.RecordUpstreamLatency(time.Since(start))
	c.metrics.RecordUpstreamStatus(resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTPステータス %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: fmt.Errorf("レスポンス読み取りに失敗: %w", err)}
	}
	if !json.Valid(body) {
		return nil, &NetworkError{URL: rawURL, Err: errInvalidJSON}
	}
	return body, nil
}
