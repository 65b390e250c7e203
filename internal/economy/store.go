package economy

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/zeusync/warehouse/internal/core/models"
)

// Store persists balances between sessions.
type Store interface {
	Load(ctx context.Context, agent models.AgentID) (balance int64, found bool, err error)
	Save(ctx context.Context, agent models.AgentID, balance int64) error
	Close() error
}

// SQLiteStore keeps one row per agent.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("economy: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "economy: create db dir")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "economy: open %s", path)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err = initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS ledgers (
		agent TEXT PRIMARY KEY,
		money INTEGER NOT NULL,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "economy: init schema")
	}
	return &SQLiteStore{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return errors.Wrapf(err, "economy: %s", p)
		}
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, agent models.AgentID) (int64, bool, error) {
	var money int64
	err := s.db.QueryRowContext(ctx, `SELECT money FROM ledgers WHERE agent = ?`, agent.String()).Scan(&money)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "economy: load %s", agent)
	}
	return money, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, agent models.AgentID, balance int64) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO ledgers (agent, money, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(agent) DO UPDATE SET money = excluded.money, updated_at = excluded.updated_at`,
		agent.String(), balance)
	return errors.Wrapf(err, "economy: save %s", agent)
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// MemoryStore is a Store for tests and persistence-free runs.
type MemoryStore struct {
	mu     sync.Mutex
	data   map[models.AgentID]int64
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[models.AgentID]int64)}
}

func (m *MemoryStore) Load(_ context.Context, agent models.AgentID) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, false, ErrStoreClosed
	}
	v, ok := m.data[agent]
	return v, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, agent models.AgentID, balance int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.data[agent] = balance
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
