package cache

import (
	"context"
	"sync"
)

// MemoryStore はプロセス内のmapにエントリを保持するStore。
// プロセス再起動で内容は失われる。
// バッチ内の並列フェッチから同時に呼ばれるため、mutexで保護する。
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore はMemoryStoreの新しいインスタンスを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
	}
}

// Load はキーに対応するエントリのコピーを返す。
func (s *MemoryStore) Load(_ context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return Entry{}, false, nil
	}
	return Entry{
		Payload:   cloneBytes(entry.Payload),
		FetchedAt: entry.FetchedAt,
	}, true, nil
}

// Save はエントリのコピーを保存する。
func (s *MemoryStore) Save(_ context.Context, key string, entry Entry) error {
	s.mu.Lock()
	s.entries[key] = Entry{
		Payload:   cloneBytes(entry.Payload),
		FetchedAt: entry.FetchedAt,
	}
	s.mu.Unlock()
	return nil
}

// Len は保持しているエントリ数を返す。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
