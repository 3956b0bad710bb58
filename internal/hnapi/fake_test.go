package hnapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/hnfeed/internal/cache"
	"github.com/hitoshi/hnfeed/internal/model"
)

// fakeHN はテスト用のHacker News APIサーバー。
// パスごとのレスポンスと呼び出し回数、アイテム取得の開始・終了イベントを記録する。
type fakeHN struct {
	t      *testing.T
	server *httptest.Server

	mu        sync.Mutex
	responses map[string]fakeResponse
	hits      map[string]int
	events    []string
	userAgent string
	itemDelay time.Duration
}

type fakeResponse struct {
	status int
	body   string
}

func newFakeHN(t *testing.T) *fakeHN {
	t.Helper()
	f := &fakeHN{
		t:         t,
		responses: make(map[string]fakeResponse),
		hits:      make(map[string]int),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeHN) serveHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v0")
	isItem := strings.HasPrefix(path, "/item/")

	f.mu.Lock()
	f.hits[path]++
	f.userAgent = r.Header.Get("User-Agent")
	if isItem {
		f.events = append(f.events, "start "+itemIDFromPath(path))
	}
	resp, ok := f.responses[path]
	delay := f.itemDelay
	f.mu.Unlock()

	if isItem && delay > 0 {
		time.Sleep(delay)
	}
	if isItem {
		f.mu.Lock()
		f.events = append(f.events, "end "+itemIDFromPath(path))
		f.mu.Unlock()
	}

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	fmt.Fprint(w, resp.body)
}

func itemIDFromPath(path string) string {
	return strings.TrimSuffix(strings.TrimPrefix(path, "/item/"), ".json")
}

func (f *fakeHN) set(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = fakeResponse{status: status, body: body}
}

func (f *fakeHN) setListing(name string, ids []int64) {
	body, err := json.Marshal(ids)
	if err != nil {
		f.t.Fatalf("ID一覧のエンコードに失敗: %v", err)
	}
	f.set("/"+name+"stories.json", http.StatusOK, string(body))
}

func (f *fakeHN) setItem(item model.Item) {
	body, err := json.Marshal(item)
	if err != nil {
		f.t.Fatalf("アイテムのエンコードに失敗: %v", err)
	}
	f.set("/item/"+strconv.FormatInt(item.ID, 10)+".json", http.StatusOK, string(body))
}

// setItemDelay はアイテムのレスポンスを返すまでの待ち時間を設定する。
func (f *fakeHN) setItemDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.itemDelay = d
}

func (f *fakeHN) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeHN) totalItemHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for path, count := range f.hits {
		if strings.HasPrefix(path, "/item/") {
			n += count
		}
	}
	return n
}

func (f *fakeHN) lastUserAgent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userAgent
}

func (f *fakeHN) eventLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// fakeClock はテスト用の時計。
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// newTestClient はfakeHNに向けたClientと、その時計を返す。
func newTestClient(t *testing.T, f *fakeHN) (*Client, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	responseCache := cache.NewMemory(cache.DefaultFreshness)
	responseCache.SetClock(clock.Now)

	var buf bytes.Buffer
	c := NewClient(f.server.Client(), responseCache, newTestLogger(&buf), nil, ClientConfig{
		BaseURL: f.server.URL + "/v0/",
	})
	return c, clock
}
