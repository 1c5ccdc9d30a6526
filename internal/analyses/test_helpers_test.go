package analyses

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/llm"
	"resume-matcher/internal/shared/storage/cache"
)

const canonicalReply = `{"matchScore":72,"summary":"Solid backend fit.","matchingSkills":["Go","PostgreSQL"],"missingSkills":["Kubernetes"],"suggestions":["Mention container orchestration experience."],"keywordAnalysis":{"found":["Go","REST"],"missing":["Kubernetes"]}}`

var (
	sixtyCharResume = strings.Repeat("Go engineer ", 5)
	sixtyCharJD     = strings.Repeat("Hiring Go!! ", 5)
)

type countingClient struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (c *countingClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.reply, c.err
}

func (c *countingClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type failingStore struct {
	cache.Store
	setErr error
	getErr error
}

func (f failingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value, ttl)
}

func (f failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Store.Get(ctx, key)
}

var errStoreDown = errors.New("store down")

var fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, client llm.Client, store cache.Store) *Service {
	t.Helper()
	if store == nil {
		store = cache.NewMemory(100)
	}
	return &Service{
		Analyzer:      analyzer.New(client, analyzer.DefaultOptions()),
		Store:         store,
		TTL:           time.Hour,
		MinTextLength: 50,
		Now:           func() time.Time { return fixedNow },
		NewID:         func() string { return "analysis-1" },
	}
}
