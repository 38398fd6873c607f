package aggregator

import (
	"sort"

	"newsbot/internal/model"
)

// Aggregate merges items from any number of fetch cycles and sources into
// one bounded, deterministically ordered slice.
//
// Steps, in order: filter by category when one is given, deduplicate by
// link keeping the last-seen copy, sort newest-first, then fill up to limit
// while holding every source to perSourceCap items.
func Aggregate(items []model.NewsItem, category string, limit, perSourceCap int) []model.NewsItem {
	if limit <= 0 {
		return nil
	}

	deduped := dedupe(filter(items, category))

	sort.Slice(deduped, func(i, j int) bool {
		return less(deduped[i], deduped[j])
	})

	perSource := make(map[string]int)
	out := make([]model.NewsItem, 0, limit)

	for _, item := range deduped {
		if perSourceCap > 0 && perSource[item.SourceName] >= perSourceCap {
			continue
		}

		perSource[item.SourceName]++
		out = append(out, item)

		if len(out) == limit {
			break
		}
	}

	return out
}

func filter(items []model.NewsItem, category string) []model.NewsItem {
	if category == "" {
		return items
	}

	var out []model.NewsItem

	for _, item := range items {
		if item.Category == category {
			out = append(out, item)
		}
	}

	return out
}

// dedupe keeps the most recently seen copy of each link, preserving no
// particular order; the caller sorts afterwards.
func dedupe(items []model.NewsItem) []model.NewsItem {
	index := make(map[string]int, len(items))
	out := make([]model.NewsItem, 0, len(items))

	for _, item := range items {
		if i, ok := index[item.Link]; ok {
			out[i] = item
			continue
		}

		index[item.Link] = len(out)
		out = append(out, item)
	}

	return out
}

// less defines the contractual total order: publishedAt descending with
// unknown (zero) dates after all dated items, then sourceName ascending,
// then link ascending.
func less(a, b model.NewsItem) bool {
	switch {
	case a.PublishedAt.IsZero() != b.PublishedAt.IsZero():
		return !a.PublishedAt.IsZero()
	case !a.PublishedAt.Equal(b.PublishedAt):
		return a.PublishedAt.After(b.PublishedAt)
	case a.SourceName != b.SourceName:
		return a.SourceName < b.SourceName
	default:
		return a.Link < b.Link
	}
}
