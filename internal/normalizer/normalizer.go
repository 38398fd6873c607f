package normalizer

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"newsbot/internal/model"
)

const truncationMarker = "..."

type Normalizer struct {
	summaryMaxLen int
}

func New(summaryMaxLen int) *Normalizer {
	return &Normalizer{summaryMaxLen: summaryMaxLen}
}

// Normalize converts a raw feed entry into a canonical item. The link is
// used verbatim as the item's identity; links differing only cosmetically
// (trailing slash, query string) stay distinct items.
func (n *Normalizer) Normalize(entry model.RawEntry, src model.SourceDescriptor) model.NewsItem {
	return model.NewsItem{
		Link:        entry.Link,
		Title:       strings.TrimSpace(entry.Title),
		Summary:     Truncate(CleanText(entry.Summary), n.summaryMaxLen),
		PublishedAt: parseDate(entry),
		SourceName:  src.Name,
		Country:     src.Country,
		Category:    src.Category,
	}
}

// parseDate turns the entry's published date into a timestamp usable for
// ordering. The parser's own result wins when present; otherwise the raw
// string goes through dateparse, which understands most of the formats
// feeds use in the wild. An unparsable date becomes the zero time, which
// the aggregator orders after every dated item.
func parseDate(entry model.RawEntry) time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC()
	}

	raw := strings.TrimSpace(entry.Published)

	if raw == "" {
		return time.Time{}
	}

	t, err := dateparse.ParseAny(raw)

	if err != nil {
		return time.Time{}
	}

	return t.UTC()
}

// CleanText strips markup tags and collapses whitespace runs to single
// spaces.
func CleanText(s string) string {
	var b strings.Builder

	inTag := false

	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Truncate caps s at max runes, appending a marker when cut.
func Truncate(s string, max int) string {
	runes := []rune(s)

	if len(runes) <= max {
		return s
	}

	if max <= len(truncationMarker) {
		return string(runes[:max])
	}

	return string(runes[:max-len(truncationMarker)]) + truncationMarker
}
