package checkpoint

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cadre-oss/sherpa/internal/errors"
)

// SQLiteStore implements checkpoint storage using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate creates the necessary tables
func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checkpoints (
		id TEXT PRIMARY KEY,
		agent TEXT NOT NULL,
		task TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		belief JSON NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_checkpoints_agent ON checkpoints(agent, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save stores a checkpoint, replacing any with the same ID
func (s *SQLiteStore) Save(cp *Checkpoint) error {
	data, err := json.Marshal(cp.Belief)
	if err != nil {
		return fmt.Errorf("failed to marshal belief: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO checkpoints (id, agent, task, created_at, belief)
		VALUES (?, ?, ?, ?, ?)
	`, cp.ID, cp.Agent, cp.Task, cp.CreatedAt.UTC(), data)

	return err
}

// Get retrieves a checkpoint
func (s *SQLiteStore) Get(id string) (*Checkpoint, error) {
	row := s.db.QueryRow(`
		SELECT id, agent, task, created_at, belief FROM checkpoints WHERE id = ?
	`, id)

	cp, err := scan(row)
	if err == sql.ErrNoRows {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}
	return cp, nil
}

// List lists checkpoints newest first
func (s *SQLiteStore) List(agent string, limit int) ([]*Checkpoint, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`
		SELECT id, agent, task, created_at, belief FROM checkpoints
		WHERE ? = '' OR agent = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, agent, agent, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cps []*Checkpoint
	for rows.Next() {
		cp, err := scan(rows)
		if err != nil {
			return nil, err
		}
		cps = append(cps, cp)
	}

	return cps, rows.Err()
}

// Delete removes a checkpoint
func (s *SQLiteStore) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM checkpoints WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(id)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*Checkpoint, error) {
	var cp Checkpoint
	var data []byte
	if err := row.Scan(&cp.ID, &cp.Agent, &cp.Task, &cp.CreatedAt, &data); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &cp.Belief); err != nil {
		return nil, errors.Wrap(errors.CodeDecodeFailed, fmt.Sprintf("checkpoint %s: stored belief is not valid JSON", cp.ID), err)
	}
	return &cp, nil
}
