package registrations

import (
	"context"
	"sync"

	"github.com/goliatone/go-eventboard/components/eventboard"
)

// StaticEndpoint is reported by StaticClient so endpoint checks pass.
const StaticEndpoint = "static://registrations"

// StaticClient implements eventboard.Source using an in-memory snapshot.
// Useful for demos and tests.
type StaticClient struct {
	mu       sync.RWMutex
	snapshot eventboard.Snapshot
	err      error
}

// NewStaticClient builds a client that always returns snapshot.
func NewStaticClient(snapshot eventboard.Snapshot) *StaticClient {
	return &StaticClient{snapshot: snapshot.Clone()}
}

// Endpoint implements eventboard.Source.
func (c *StaticClient) Endpoint() string {
	return StaticEndpoint
}

// FetchSnapshot returns the configured snapshot or the configured error.
func (c *StaticClient) FetchSnapshot(context.Context) (eventboard.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.snapshot.Clone(), nil
}

// Set replaces the snapshot returned by later fetches and clears any error.
func (c *StaticClient) Set(snapshot eventboard.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snapshot.Clone()
	c.err = nil
}

// Fail makes later fetches return err until Set is called.
func (c *StaticClient) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

var _ eventboard.Source = (*StaticClient)(nil)
