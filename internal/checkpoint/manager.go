package checkpoint

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cadre-oss/sherpa/internal/belief"
	"github.com/cadre-oss/sherpa/internal/errors"
)

// Manager snapshots and restores Beliefs through a Store.
type Manager struct {
	store Store
	now   func() time.Time
}

// NewManager creates a manager backed by the named driver ("memory" or "sqlite").
func NewManager(driver, path string) (*Manager, error) {
	var store Store
	var err error

	switch driver {
	case "memory", "":
		store = NewMemoryStore()
	case "sqlite":
		store, err = NewSQLiteStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite store: %w", err)
		}
	default:
		return nil, errors.Newf(errors.CodeConfigInvalid, "unsupported checkpoint driver: %s", driver).
			WithSuggestion("use 'memory' or 'sqlite'")
	}

	return NewManagerWithStore(store), nil
}

// NewManagerWithStore creates a manager over an existing store.
func NewManagerWithStore(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}

// Save snapshots b under a new ID.
func (m *Manager) Save(agent string, b *belief.Belief) (*Checkpoint, error) {
	cp := &Checkpoint{
		ID:        uuid.New().String(),
		Agent:     agent,
		CreatedAt: m.now(),
		Belief:    b.ToRepresentation(),
	}
	if task, ok := b.CurrentTask(); ok {
		cp.Task = task.Content
	}

	if err := m.store.Save(cp); err != nil {
		return nil, fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return cp, nil
}

// Get returns a checkpoint without decoding its belief.
func (m *Manager) Get(id string) (*Checkpoint, error) {
	return m.store.Get(id)
}

// Restore rebuilds the Belief saved under id.
func (m *Manager) Restore(id string) (*belief.Belief, error) {
	cp, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	return Decode(cp)
}

// Decode rebuilds the Belief held by cp.
func Decode(cp *Checkpoint) (*belief.Belief, error) {
	if cp.Belief == nil {
		return nil, errors.Newf(errors.CodeDecodeFailed, "checkpoint %s has no belief", cp.ID)
	}
	b, err := belief.FromRepresentation(cp.Belief)
	if err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", cp.ID, err)
	}
	return b, nil
}

// Latest returns the most recent checkpoint for agent.
func (m *Manager) Latest(agent string) (*Checkpoint, error) {
	cps, err := m.store.List(agent, 1)
	if err != nil {
		return nil, err
	}
	if len(cps) == 0 {
		return nil, errors.Newf(errors.CodeCheckpointNotFound, "no checkpoints for agent %q", agent)
	}
	return cps[0], nil
}

// List returns checkpoints newest first.
func (m *Manager) List(agent string, limit int) ([]*Checkpoint, error) {
	return m.store.List(agent, limit)
}

// Delete removes a checkpoint.
func (m *Manager) Delete(id string) error {
	return m.store.Delete(id)
}
