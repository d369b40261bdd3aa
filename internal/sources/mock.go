package sources

import (
	"context"
	"sync"
	"time"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// Mock is an in-memory source for tests and local runs.
type Mock struct {
	Name    string
	FetchFn func(ctx context.Context, batch models.Batch, since time.Time) (*FetchResult, error)

	mu      sync.Mutex
	queries []string
}

// Platform returns the configured platform name.
func (m *Mock) Platform() string {
	return m.Name
}

// Fetch records the query and delegates to FetchFn.
func (m *Mock) Fetch(ctx context.Context, batch models.Batch, since time.Time) (*FetchResult, error) {
	m.mu.Lock()
	m.queries = append(m.queries, batch.Query)
	m.mu.Unlock()

	if m.FetchFn == nil {
		return &FetchResult{}, nil
	}
	return m.FetchFn(ctx, batch, since)
}

// Calls returns how many fetches were made.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

// Queries returns the queries fetched so far.
func (m *Mock) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}
