package main

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func commandUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: 1},
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(text)},
			},
		},
	}
}

func TestDispatchDoesNotBlockOnSlowCommand(t *testing.T) {
	b := New(nil)

	release := make(chan struct{})
	defer close(release)

	slowStarted := make(chan struct{})
	fastDone := make(chan struct{})

	b.RegisterCmdView("slow", func(context.Context, *tgbotapi.BotAPI, tgbotapi.Update) error {
		close(slowStarted)
		<-release
		return nil
	})

	b.RegisterCmdView("fast", func(context.Context, *tgbotapi.BotAPI, tgbotapi.Update) error {
		close(fastDone)
		return nil
	})

	b.dispatch(commandUpdate("/slow"))

	<-slowStarted

	b.dispatch(commandUpdate("/fast"))

	select {
	case <-fastDone:
	case <-time.After(time.Second):
		t.Fatal("second command blocked behind a slow one")
	}
}

func TestDispatchIgnoresNonCommands(t *testing.T) {
	b := New(nil)

	called := false

	b.RegisterCmdView("news", func(context.Context, *tgbotapi.BotAPI, tgbotapi.Update) error {
		called = true
		return nil
	})

	b.handleUpdate(context.Background(), tgbotapi.Update{
		Message: &tgbotapi.Message{Text: "plain text", Chat: &tgbotapi.Chat{ID: 1}},
	})

	b.handleUpdate(context.Background(), tgbotapi.Update{})

	if called {
		t.Error("non-command update reached a command view")
	}
}
