package notifier

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-shiori/go-readability"

	"newsbot/internal/model"
	"newsbot/internal/normalizer"
)

type NewsProvider interface {
	Latest(ctx context.Context, limit int) ([]model.NewsItem, error)
}

type SubscriberStore interface {
	ListEligible(ctx context.Context, window time.Duration) ([]model.Subscriber, error)
	IncrementDeliveryCount(ctx context.Context, id int64) error
}

type Courier interface {
	Send(ctx context.Context, subscriberID int64, text string) error
}

// Notifier fans one aggregated digest out to every eligible subscriber.
// Each delivery runs independently under its own timeout: one unreachable
// recipient never aborts the batch, and only successful deliveries touch
// the subscriber's counter.
type Notifier struct {
	news        NewsProvider
	subscribers SubscriberStore
	courier     Courier

	digestSize      int
	summaryMaxLen   int
	activityWindow  time.Duration
	deliveryTimeout time.Duration
}

func New(news NewsProvider, subscribers SubscriberStore, courier Courier,
	digestSize, summaryMaxLen int, activityWindow, deliveryTimeout time.Duration) *Notifier {

	return &Notifier{
		news:            news,
		subscribers:     subscribers,
		courier:         courier,
		digestSize:      digestSize,
		summaryMaxLen:   summaryMaxLen,
		activityWindow:  activityWindow,
		deliveryTimeout: deliveryTimeout,
	}
}

// Broadcast runs one delivery cycle: a single aggregated result set, a
// single eligible-subscriber snapshot, one delivery attempt and one record
// per subscriber.
func (n *Notifier) Broadcast(ctx context.Context) []model.DeliveryRecord {
	items, err := n.news.Latest(ctx, n.digestSize)

	if err != nil {
		log.Printf("ERROR: digest aggregation fail: %v", err)
		return nil
	}

	if len(items) == 0 {
		log.Println("broadcast skipped: no items to send")
		return nil
	}

	n.fillSummaries(ctx, items)

	subscribers, err := n.subscribers.ListEligible(ctx, n.activityWindow)

	if err != nil {
		log.Printf("ERROR: eligible subscriber lookup fail: %v", err)
		return nil
	}

	var (
		mu      sync.Mutex
		records []model.DeliveryRecord
		wg      sync.WaitGroup
	)

	for _, sub := range subscribers {
		wg.Add(1)

		go func(sub model.Subscriber) {
			defer wg.Done()

			record := n.deliver(ctx, sub, items)

			mu.Lock()
			records = append(records, record)
			mu.Unlock()
		}(sub)
	}

	wg.Wait()

	return records
}

func (n *Notifier) deliver(ctx context.Context, sub model.Subscriber, items []model.NewsItem) model.DeliveryRecord {
	sendCtx, cancel := context.WithTimeout(ctx, n.deliveryTimeout)
	defer cancel()

	text := RenderDigest(sub.FirstName, items)

	sendErr := n.courier.Send(sendCtx, sub.ID, text)

	record := model.DeliveryRecord{
		SubscriberID: sub.ID,
		At:           time.Now().UTC(),
		Err:          sendErr,
	}

	if sendErr != nil {
		log.Printf("ERROR: delivery to %d fail: %v", sub.ID, sendErr)
		return record
	}

	if err := n.subscribers.IncrementDeliveryCount(ctx, sub.ID); err != nil {
		log.Printf("ERROR: delivery count update for %d fail: %v", sub.ID, err)
	}

	return record
}

// fillSummaries backfills empty summaries from the article pages before the
// shared digest is rendered, so the page is fetched once per cycle rather
// than once per subscriber. Each page fetch runs under the delivery
// timeout; an unresponsive host only costs that item its summary, never
// the cycle.
func (n *Notifier) fillSummaries(ctx context.Context, items []model.NewsItem) {
	for i := range items {
		if items[i].Summary != "" {
			continue
		}

		summary, err := n.pageSummary(ctx, items[i].Link)

		if err != nil {
			log.Printf("ERROR: summary extraction for %s fail: %v", items[i].Link, err)
			continue
		}

		items[i].Summary = normalizer.Truncate(normalizer.CleanText(summary), n.summaryMaxLen)
	}
}

func (n *Notifier) pageSummary(ctx context.Context, link string) (string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, n.deliveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, link, nil)

	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)

	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	article, err := readability.FromReader(resp.Body, nil)

	if err != nil {
		return "", err
	}

	return strings.TrimSpace(article.TextContent), nil
}
