package fetcher

import (
	"context"
	"log"
	"time"

	"newsbot/internal/aggregator"
	"newsbot/internal/cache"
	"newsbot/internal/model"
	"newsbot/internal/normalizer"
	"newsbot/internal/source"
)

type SourceList interface {
	Sources(country, category string) []model.SourceDescriptor
}

// Fetcher runs the fetch → normalize → cache pipeline and answers the
// on-demand queries from the cache, refreshing it when it has gone cold.
type Fetcher struct {
	registry     SourceList
	orchestrator *Orchestrator
	normalizer   *normalizer.Normalizer
	items        cache.ItemCache

	cacheTTL     time.Duration
	perSourceCap int

	// newSource wraps a descriptor into a fetchable source; tests swap it
	newSource func(model.SourceDescriptor) Source
}

func New(registry SourceList, orchestrator *Orchestrator, n *normalizer.Normalizer,
	items cache.ItemCache, cacheTTL time.Duration, perSourceCap int) *Fetcher {

	return &Fetcher{
		registry:     registry,
		orchestrator: orchestrator,
		normalizer:   n,
		items:        items,
		cacheTTL:     cacheTTL,
		perSourceCap: perSourceCap,
		newSource: func(d model.SourceDescriptor) Source {
			return source.NewRSSSource(d)
		},
	}
}

// Refresh fetches every registry source matching the filter, normalizes the
// survivors into the cache, and sweeps out expired entries. A failing
// source is logged and skipped for the cycle; the cycle itself never fails.
func (f *Fetcher) Refresh(ctx context.Context, country, category string) []model.NewsItem {
	descriptors := f.registry.Sources(country, category)

	sources := make([]Source, 0, len(descriptors))

	for _, d := range descriptors {
		sources = append(sources, f.newSource(d))
	}

	results := f.orchestrator.FetchAll(ctx, sources)

	var items []model.NewsItem

	for _, r := range results {
		if r.Err != nil {
			log.Printf("ERROR: fetch %s fail: %v", r.Source.Name, r.Err)
			continue
		}

		for _, entry := range r.Entries {
			item := f.normalizer.Normalize(entry, r.Source)

			if item.Link == "" {
				continue
			}

			if err := f.items.Put(ctx, item, f.cacheTTL); err != nil {
				log.Printf("ERROR: cache put fail for %s: %v", item.Link, err)
			}

			items = append(items, item)
		}
	}

	if err := f.items.PurgeExpired(ctx); err != nil {
		log.Printf("ERROR: cache purge fail: %v", err)
	}

	return items
}

// Latest returns up to limit items across all sources, newest first.
func (f *Fetcher) Latest(ctx context.Context, limit int) ([]model.NewsItem, error) {
	return f.query(ctx, "", limit)
}

// ByCategory returns up to limit items for one category, newest first.
func (f *Fetcher) ByCategory(ctx context.Context, category string, limit int) ([]model.NewsItem, error) {
	return f.query(ctx, category, limit)
}

func (f *Fetcher) query(ctx context.Context, category string, limit int) ([]model.NewsItem, error) {
	items, err := f.items.Items(ctx)

	if err != nil {
		return nil, err
	}

	out := aggregator.Aggregate(items, category, limit, f.perSourceCap)

	if len(out) > 0 {
		return out, nil
	}

	// cache miss: fall through to a fresh fetch
	fresh := f.Refresh(ctx, "", category)

	return aggregator.Aggregate(fresh, category, limit, f.perSourceCap), nil
}
