package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"newsbot/internal/cache"
	"newsbot/internal/config"
	"newsbot/internal/fetcher"
	"newsbot/internal/model"
	"newsbot/internal/normalizer"
	"newsbot/internal/notifier"
	"newsbot/internal/scheduler"
	"newsbot/internal/source"
	"newsbot/internal/storage"
)

type ViewFunc func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error

type Bot struct {
	api      *tgbotapi.BotAPI
	cmdViews map[string]ViewFunc
}

func New(api *tgbotapi.BotAPI) *Bot {
	return &Bot{api: api}
}

func (b *Bot) RegisterCmdView(cmd string, view ViewFunc) {
	if b.cmdViews == nil {
		b.cmdViews = make(map[string]ViewFunc)
	}

	b.cmdViews[cmd] = view
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if p := recover(); p != nil {
			log.Println("ERROR: panic in ViewFunc recovered")
		}
	}()

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	view, ok := b.cmdViews[update.Message.Command()]

	if !ok {
		return
	}

	if viewErr := view(ctx, b.api, update); viewErr != nil {
		log.Printf("ERROR: execute view fail: %v", viewErr)

		if _, sendErr := b.api.Send(tgbotapi.NewMessage(update.Message.Chat.ID, "Internal error")); sendErr != nil {
			log.Printf("ERROR: failed to send error message")
		}
	}
}

// dispatch handles one update in its own goroutine so a slow command (a
// cold-cache /news runs a full refresh) never blocks the poll loop for
// other users.
func (b *Bot) dispatch(update tgbotapi.Update) {
	go func() {
		updateCtx, updateCancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer updateCancel()

		b.handleUpdate(updateCtx, update)
	}()
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			b.dispatch(update)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func ViewCmdStart(subscribers *storage.SubscriberPostgresStorage) ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		user := update.Message.From

		if err := subscribers.Upsert(ctx, model.Subscriber{
			ID:        update.FromChat().ID,
			Username:  user.UserName,
			FirstName: user.FirstName,
		}); err != nil {
			return err
		}

		const welcome = "Hello! I will send you a news digest every day. " +
			"Use /news for the latest headlines, /news <category> to filter, " +
			"/mute and /unmute to control daily delivery."

		if _, err := bot.Send(tgbotapi.NewMessage(update.FromChat().ID, welcome)); err != nil {
			return err
		}

		return nil
	}
}

func ViewCmdNews(news *fetcher.Fetcher, subscribers *storage.SubscriberPostgresStorage, limit int) ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		if err := subscribers.Touch(ctx, update.FromChat().ID); err != nil {
			log.Printf("ERROR: activity update fail: %v", err)
		}

		category := strings.TrimSpace(update.Message.CommandArguments())

		var (
			items []model.NewsItem
			err   error
		)

		if category == "" {
			items, err = news.Latest(ctx, limit)
		} else {
			items, err = news.ByCategory(ctx, category, limit)
		}

		if err != nil {
			return err
		}

		if len(items) == 0 {
			_, sendErr := bot.Send(tgbotapi.NewMessage(update.FromChat().ID, "No news available right now, try again later."))
			return sendErr
		}

		msg := tgbotapi.NewMessage(update.FromChat().ID, notifier.RenderDigest("", items))
		msg.ParseMode = "MarkdownV2"
		msg.DisableWebPagePreview = true

		_, sendErr := bot.Send(msg)

		return sendErr
	}
}

func ViewCmdSetNotifications(subscribers *storage.SubscriberPostgresStorage, enabled bool, reply string) ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		if err := subscribers.SetNotifications(ctx, update.FromChat().ID, enabled); err != nil {
			return err
		}

		if _, err := bot.Send(tgbotapi.NewMessage(update.FromChat().ID, reply)); err != nil {
			return err
		}

		return nil
	}
}

func newItemCache(cfg config.Config) cache.ItemCache {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache()
	}

	return cache.NewRedisCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("ERROR: %v", err)
		return
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Println("ERROR: failed to create botAPI")
		return
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseDSN)
	if err != nil {
		log.Printf("ERROR: failed to connect to db %v", err)
		return
	}
	defer db.Close()

	registry := source.LoadCatalog(cfg.CatalogPath)
	log.Printf("source catalog loaded: %d sources", registry.Len())

	var (
		subscriberStorage = storage.NewSubscriberStorage(db)
		itemCache         = newItemCache(cfg)
		orchestrator      = fetcher.NewOrchestrator(cfg.ConcurrencyLimit, cfg.FetchTimeout, cfg.PerSourceItemCap)
		news              = fetcher.New(
			registry,
			orchestrator,
			normalizer.New(cfg.SummaryMaxLen),
			itemCache,
			cfg.CacheTTL,
			cfg.PerSourceItemCap,
		)
		dispatcher = notifier.New(
			news,
			subscriberStorage,
			notifier.NewTelegramCourier(botAPI),
			cfg.AggregateLimit,
			cfg.SummaryMaxLen,
			cfg.ActivityWindow,
			cfg.DeliveryTimeout,
		)
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	daily, err := scheduler.New(cfg.DailySendHour, cfg.DailySendMinute, func(jobCtx context.Context) {
		records := dispatcher.Broadcast(jobCtx)

		delivered := 0
		for _, r := range records {
			if r.Delivered() {
				delivered++
			}
		}

		log.Printf("broadcast done: %d/%d delivered", delivered, len(records))
	})
	if err != nil {
		log.Printf("ERROR: failed to create scheduler: %v", err)
		return
	}

	daily.Start()
	defer daily.Stop()
	log.Printf("daily broadcast scheduled at %02d:%02d", cfg.DailySendHour, cfg.DailySendMinute)

	bot := New(botAPI)
	bot.RegisterCmdView("start", ViewCmdStart(subscriberStorage))
	bot.RegisterCmdView("news", ViewCmdNews(news, subscriberStorage, cfg.AggregateLimit))
	bot.RegisterCmdView("mute", ViewCmdSetNotifications(subscriberStorage, false, "Daily digest disabled. Use /unmute to turn it back on."))
	bot.RegisterCmdView("unmute", ViewCmdSetNotifications(subscriberStorage, true, "Daily digest enabled."))

	if err := bot.Run(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Println("ERROR: failed to run bot")
			return
		}

		log.Println("Bot has stopped")
	}
}
