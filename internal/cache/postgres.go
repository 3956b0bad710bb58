package cache

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore はPostgreSQLのresponse_cacheテーブルにエントリを保持するStore。
// プロセス再起動後も期限切れフォールバック用のペイロードが残る。
// テーブルは migrate サブコマンドで作成する。
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore はPostgresStoreを生成する。
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load はキーに対応するエントリを取得する。見つからない場合はfalseを返す。
func (s *PostgresStore) Load(ctx context.Context, key string) (Entry, bool, error) {
	var entry Entry
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM response_cache WHERE cache_key = $1`,
		key,
	).Scan(&entry.Payload, &entry.FetchedAt)

	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("キャッシュエントリの取得に失敗しました: %w", err)
	}
	return entry, true, nil
}

// Save はエントリをUPSERTする。
func (s *PostgresStore) Save(ctx context.Context, key string, entry Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO response_cache (cache_key, payload, fetched_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (cache_key) DO UPDATE
		 SET payload = EXCLUDED.payload, fetched_at = EXCLUDED.fetched_at`,
		key, entry.Payload, entry.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("キャッシュエントリの保存に失敗しました: %w", err)
	}
	return nil
}
