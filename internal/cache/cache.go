// Package cache はHacker News APIレスポンスのキャッシュを提供する。
//
// キャッシュ自体は保存と鮮度判定のみを行い、
// 「新鮮ならそのまま返す」「失敗時は期限切れでも返す」といったポリシーは
// 呼び出し元（hnapi.Client）が適用する。
package cache

import (
	"context"
	"time"
)

// DefaultFreshness はエントリを新鮮とみなす期間。
const DefaultFreshness = 5 * time.Minute

// Entry はキャッシュに保存されるレスポンスと取得時刻の組。
type Entry struct {
	Payload   []byte
	FetchedAt time.Time
}

// Store はキャッシュエントリの保存先。
// キーはリクエストURL。
type Store interface {
	// Load はキーに対応するエントリを返す。存在しない場合はfalseを返す。
	Load(ctx context.Context, key string) (Entry, bool, error)
	// Save はエントリを保存する。既存のエントリは上書きする。
	Save(ctx context.Context, key string, entry Entry) error
}

// Lookup はGetの結果。
type Lookup struct {
	Payload   []byte
	FetchedAt time.Time
	Found     bool
	Fresh     bool
}

// Cache は鮮度ウィンドウ付きのレスポンスキャッシュ。
// エビクションもサイズ上限も持たない。
type Cache struct {
	store     Store
	freshness time.Duration
	now       func() time.Time
}

// New はCacheの新しいインスタンスを生成する。
// freshnessが0以下の場合はDefaultFreshnessを使用する。
func New(store Store, freshness time.Duration) *Cache {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &Cache{
		store:     store,
		freshness: freshness,
		now:       time.Now,
	}
}

// NewMemory はインメモリストアを使うCacheを生成する。
func NewMemory(freshness time.Duration) *Cache {
	return New(NewMemoryStore(), freshness)
}

// SetClock は現在時刻の取得関数を差し替える。テスト用。
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// Freshness は鮮度ウィンドウを返す。
func (c *Cache) Freshness() time.Duration {
	return c.freshness
}

// Get はキーに対応するペイロードと鮮度を返す。
// now - FetchedAt < freshness の場合にFreshがtrueになる。
func (c *Cache) Get(ctx context.Context, key string) (Lookup, error) {
	entry, ok, err := c.store.Load(ctx, key)
	if err != nil {
		return Lookup{}, err
	}
	if !ok {
		return Lookup{}, nil
	}
	return Lookup{
		Payload:   entry.Payload,
		FetchedAt: entry.FetchedAt,
		Found:     true,
		Fresh:     c.now().Sub(entry.FetchedAt) < c.freshness,
	}, nil
}

// Put はペイロードを現在時刻で保存する。既存のエントリは上書きされる。
func (c *Cache) Put(ctx context.Context, key string, payload []byte) error {
	return c.store.Save(ctx, key, Entry{
		Payload:   payload,
		FetchedAt: c.now(),
	})
}
