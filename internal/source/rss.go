package source

import (
	"context"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"

	"newsbot/internal/model"
)

type RSSSource struct {
	descriptor model.SourceDescriptor
	parser     *gofeed.Parser
}

func NewRSSSource(d model.SourceDescriptor) RSSSource {
	return RSSSource{
		descriptor: d,
		parser:     gofeed.NewParser(),
	}
}

func (s RSSSource) Descriptor() model.SourceDescriptor {
	return s.descriptor
}

func (s RSSSource) Name() string {
	return s.descriptor.Name
}

// Fetch loads the feed and returns its entries untouched. The raw Published
// string is kept alongside the parser's own attempt so the normalizer can
// decide how to interpret it.
func (s RSSSource) Fetch(ctx context.Context) ([]model.RawEntry, error) {
	feed, err := s.parser.ParseURLWithContext(s.descriptor.URL, ctx)

	if err != nil {
		return nil, err
	}

	return lo.Map(feed.Items, func(item *gofeed.Item, _ int) model.RawEntry {
		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		return model.RawEntry{
			Title:           item.Title,
			Link:            item.Link,
			Summary:         summary,
			Published:       item.Published,
			PublishedParsed: item.PublishedParsed,
		}
	}), nil
}
