package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/mwantia/modexport/settings"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists settings in a single SQLite table.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore opens the database at dbPath, which can be ":memory:".
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Every connection of an in-memory database would otherwise see its own database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	store := &SQLiteStore{
		db: db,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (ss *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS modexport_settings (
		scope TEXT NOT NULL,
		key TEXT NOT NULL,
		kind TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (scope, key)
	);
	`

	_, err := ss.db.Exec(schema)
	return err
}

// Returns the identifier name defined for this store
func (*SQLiteStore) Name() string {
	return "sqlite"
}

func (ss *SQLiteStore) Open(ctx context.Context) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	return ss.db.PingContext(ctx)
}

func (ss *SQLiteStore) Close(ctx context.Context) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	return ss.db.Close()
}

func (ss *SQLiteStore) Get(ctx context.Context, scope, key string) (settings.Value, bool, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var kind, raw string
	err := ss.db.QueryRowContext(ctx,
		"SELECT kind, value FROM modexport_settings WHERE scope = ? AND key = ?", scope, key).Scan(&kind, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return settings.Value{}, false, nil
	}
	if err != nil {
		return settings.Value{}, false, err
	}

	value, err := settings.NewValue(kind, raw)
	if err != nil {
		return settings.Value{}, false, err
	}

	return value, true, nil
}

func (ss *SQLiteStore) Set(ctx context.Context, scope, key string, value settings.Value) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	_, err := ss.db.ExecContext(ctx, `
		INSERT INTO modexport_settings (scope, key, kind, value, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (scope, key) DO UPDATE SET kind = excluded.kind, value = excluded.value, updated_at = excluded.updated_at`,
		scope, key, value.Kind.String(), value.Raw, time.Now().Unix())
	return err
}

func (ss *SQLiteStore) Delete(ctx context.Context, scope, key string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	_, err := ss.db.ExecContext(ctx, "DELETE FROM modexport_settings WHERE scope = ? AND key = ?", scope, key)
	return err
}

func (ss *SQLiteStore) List(ctx context.Context, scope string) (map[string]settings.Value, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.QueryContext(ctx, "SELECT key, kind, value FROM modexport_settings WHERE scope = ?", scope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]settings.Value)
	for rows.Next() {
		var key, kind, raw string
		if err := rows.Scan(&key, &kind, &raw); err != nil {
			return nil, err
		}

		value, err := settings.NewValue(kind, raw)
		if err != nil {
			return nil, err
		}
		result[key] = value
	}

	return result, rows.Err()
}
