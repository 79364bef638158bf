// Package decision provides the one-shot synchronization primitive that
// connects the blocking launcher process to the review server's handlers.
package decision

import (
	"context"
	"sync"
)

// Decision is the terminal outcome of a review session.
//
// Extra carries session-specific side flags (requested follow-up agent,
// permission level, ...) that are opaque to the core.
type Decision struct {
	Approved bool              `json:"approved"`
	Feedback string            `json:"feedback,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// Channel is a single-resolution channel: one blocking waiter, any number
// of resolvers, first resolution wins. Later resolutions are no-ops.
type Channel struct {
	mu       sync.Mutex
	resolved bool
	ch       chan Decision
}

// New returns an unresolved channel.
func New() *Channel {
	return &Channel{ch: make(chan Decision, 1)}
}

// Resolve records the decision if no decision has been recorded yet.
// Returns whether this call won the race. Never blocks.
func (c *Channel) Resolve(d Decision) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolved {
		return false
	}
	c.resolved = true
	c.ch <- d
	return true
}

// Resolved reports whether a decision has been recorded.
func (c *Channel) Resolved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved
}

// Wait blocks the calling goroutine until a decision is resolved or ctx is
// done. Intended to be called once, by the launching process.
func (c *Channel) Wait(ctx context.Context) (Decision, error) {
	select {
	case d := <-c.ch:
		return d, nil
	case <-ctx.Done():
		return Decision{}, ctx.Err()
	}
}
