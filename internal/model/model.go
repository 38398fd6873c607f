package model

import (
	"time"
)

// SourceDescriptor describes one fetchable feed endpoint. The URL is the
// descriptor's identity.
type SourceDescriptor struct {
	Name     string
	URL      string
	Country  string
	Category string
}

// RawEntry is a feed entry as the parser produced it, before normalization.
// Published keeps the feed's original date string so the normalizer can do
// its own parsing when the feed parser gave up.
type RawEntry struct {
	Title           string
	Link            string
	Summary         string
	Published       string
	PublishedParsed *time.Time
}

// NewsItem is the canonical article record. Link is the identity key: two
// items with the same link are the same logical article. A zero PublishedAt
// means the publication date could not be parsed; such items sort after all
// dated ones.
type NewsItem struct {
	Link        string
	Title       string
	Summary     string
	PublishedAt time.Time
	SourceName  string
	Country     string
	Category    string
}

// Subscriber is a read-only snapshot of one eligible recipient. The
// subscriber store owns the full record.
type Subscriber struct {
	ID        int64
	Username  string
	FirstName string
}

// DeliveryRecord is the outcome of one delivery attempt in a broadcast
// cycle, one per subscriber.
type DeliveryRecord struct {
	SubscriberID int64
	At           time.Time
	Err          error
}

func (r DeliveryRecord) Delivered() bool {
	return r.Err == nil
}
