// Package checkpoint saves and restores an agent's memory during a run so an
// interrupted run can pick up where it stopped.
package checkpoint

import (
	"time"

	"github.com/cadre-oss/sherpa/internal/errors"
)

// Checkpoint is one saved snapshot of an agent's memory.
type Checkpoint struct {
	ID        string         `json:"id" yaml:"id"`
	Agent     string         `json:"agent" yaml:"agent"`
	Task      string         `json:"task" yaml:"task"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
	Belief    map[string]any `json:"belief" yaml:"belief"`
}

// Store defines the interface for checkpoint storage backends
type Store interface {
	Save(cp *Checkpoint) error
	Get(id string) (*Checkpoint, error)
	// List returns the agent's checkpoints, newest first. An empty agent
	// matches every agent; limit <= 0 means no limit.
	List(agent string, limit int) ([]*Checkpoint, error)
	Delete(id string) error
	Close() error
}

func notFound(id string) error {
	return errors.Newf(errors.CodeCheckpointNotFound, "checkpoint not found: %s", id).
		WithSuggestion("run 'sherpa checkpoint list' to see saved checkpoints")
}
