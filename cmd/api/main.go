// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"expense-ledger/internal/app"
	"expense-ledger/internal/bot"
	"expense-ledger/internal/config"
	"expense-ledger/internal/handler"
	"expense-ledger/internal/logger"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.MustLoad()
	logger.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

func run(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close()

	handlers := handler.Handlers{
		Auth:     handler.NewAuthHandler(a.Accounts),
		Category: handler.NewCategoryHandler(a.Categories),
		Expense:  handler.NewExpenseHandler(a.Expenses),
		User:     handler.NewUserHandler(a.Accounts),
	}
	if cfg.BotToken != "" && cfg.BotWebhookURL != "" {
		h, err := telegramWebhook(cfg, a)
		if err != nil {
			return fmt.Errorf("set up Telegram webhook: %w", err)
		}
		handlers.Telegram = h
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           handler.NewRouter(handlers, a.Tokens, a.Resolver),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server started", "addr", cfg.ServerPort, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// telegramWebhook registers the bot's webhook with its secret token and
// routes updates through the same dispatcher the polling bot uses.
func telegramWebhook(cfg config.Config, a *app.App) (*handler.TelegramHandler, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	webhookURL := cfg.BotWebhookURL + "/telegram"
	params := tgbotapi.Params{"url": webhookURL, "secret_token": cfg.BotWebhookSecret}
	if _, err := api.MakeRequest("setWebhook", params); err != nil {
		return nil, err
	}
	slog.Info("Telegram webhook set", "url", webhookURL)

	return handler.NewTelegramHandler(bot.NewDispatcher(a.Expenses), api, cfg.BotWebhookSecret), nil
}
