package fetcher

import (
	"context"
	"sync"
	"time"

	"newsbot/internal/model"
)

type Source interface {
	Descriptor() model.SourceDescriptor

	Fetch(ctx context.Context) ([]model.RawEntry, error)
}

// Result is one source's outcome for a cycle. A source that failed or
// timed out carries Err and contributes no entries.
type Result struct {
	Source  model.SourceDescriptor
	Entries []model.RawEntry
	Err     error
}

// Orchestrator fans fetches out over unreliable sources while keeping at
// most concurrencyLimit of them in flight. Each fetch runs under its own
// timeout and is abandoned, not retried, on expiry.
type Orchestrator struct {
	concurrencyLimit int
	timeout          time.Duration
	perSourceCap     int
}

func NewOrchestrator(concurrencyLimit int, timeout time.Duration, perSourceCap int) *Orchestrator {
	return &Orchestrator{
		concurrencyLimit: concurrencyLimit,
		timeout:          timeout,
		perSourceCap:     perSourceCap,
	}
}

// FetchAll fetches every source once and returns one Result per source.
// Results arrive in completion order; callers must not rely on it.
func (o *Orchestrator) FetchAll(ctx context.Context, sources []Source) []Result {
	var wg sync.WaitGroup

	sem := make(chan struct{}, o.concurrencyLimit)
	results := make(chan Result, len(sources))

	for _, src := range sources {
		wg.Add(1)

		go func(src Source) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results <- o.fetchOne(ctx, src)
		}(src)
	}

	wg.Wait()
	close(results)

	out := make([]Result, 0, len(sources))

	for r := range results {
		out = append(out, r)
	}

	return out
}

func (o *Orchestrator) fetchOne(ctx context.Context, src Source) Result {
	fetchCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	entries, err := src.Fetch(fetchCtx)

	if err != nil {
		return Result{Source: src.Descriptor(), Err: err}
	}

	if o.perSourceCap > 0 && len(entries) > o.perSourceCap {
		entries = entries[:o.perSourceCap]
	}

	return Result{Source: src.Descriptor(), Entries: entries}
}
