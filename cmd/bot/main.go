// cmd/bot/main.go
package main

import (
	"context"
	"expense-ledger/internal/app"
	"expense-ledger/internal/bot"
	"expense-ledger/internal/config"
	"expense-ledger/internal/logger"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	cfg := config.MustLoad()
	logger.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if cfg.BotToken == "" {
		slog.Error("TELEGRAM_BOT_TOKEN not set")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		slog.Error("Failed to start bot", "error", err)
		os.Exit(1)
	}
	slog.Info("Bot started", "username", api.Self.UserName)

	dispatcher := bot.NewDispatcher(a.Expenses)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			slog.Info("Bot stopped")
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			chatID := update.Message.Chat.ID
			reply := dispatcher.Handle(ctx, chatID, update.Message.Text)
			if _, err := api.Send(tgbotapi.NewMessage(chatID, reply)); err != nil {
				slog.Error("Failed to send reply", "error", err, "chat_id", chatID)
			}
		}
	}
}
