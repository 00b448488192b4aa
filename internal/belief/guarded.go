package belief

import "sync"

// Guarded serializes access to a Belief shared between goroutines. All access
// goes through one lock; fn must not retain the Belief after returning.
type Guarded struct {
	mu sync.Mutex
	b  *Belief
}

// NewGuarded wraps b. A nil b is replaced by an empty Belief.
func NewGuarded(b *Belief) *Guarded {
	if b == nil {
		b = New()
	}
	return &Guarded{b: b}
}

// View runs fn with the lock held. fn should only read.
func (g *Guarded) View(fn func(*Belief) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.b)
}

// Mutate runs fn with the lock held.
func (g *Guarded) Mutate(fn func(*Belief) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.b)
}
