package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mivora/geminibot/internal/bot"
	"github.com/mivora/geminibot/internal/config"
	"github.com/mivora/geminibot/internal/convo"
	"github.com/mivora/geminibot/internal/discord"
	"github.com/mivora/geminibot/internal/fetch"
	"github.com/mivora/geminibot/internal/gemini"
	"github.com/mivora/geminibot/internal/ledger"
	"github.com/mivora/geminibot/internal/policy"
)

func main() {
	// A missing .env is fine; production supplies real environment variables.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	led, err := ledger.Open(cfg.LedgerDBPath)
	if err != nil {
		logger.Fatal("failed to open invocation ledger", zap.Error(err))
	}
	defer led.Close()

	provider, err := gemini.NewClient(context.Background(), cfg.GoogleAPIKey, cfg.ModelName, gemini.DefaultSafetyConfig())
	if err != nil {
		logger.Fatal("failed to create gemini client", zap.Error(err))
	}

	store, err := convo.NewStore(cfg.DefaultContextSize)
	if err != nil {
		logger.Fatal("failed to create context store", zap.Error(err))
	}
	gate := policy.NewGate(cfg.BotName, cfg.AllowedImageTypes)
	fetcher := fetch.NewClient(cfg.FetchTimeout)

	b := bot.New(logger, store, gate, provider, fetcher, led, cfg.Preamble)

	gateway, err := discord.NewGateway(cfg.DiscordToken, b, logger)
	if err != nil {
		logger.Fatal("failed to create discord gateway", zap.Error(err))
	}
	if err := gateway.Open(); err != nil {
		logger.Fatal("failed to connect to discord", zap.Error(err))
	}

	logger.Info("bot running",
		zap.String("bot_name", cfg.BotName),
		zap.String("model", cfg.ModelName),
		zap.Int("default_context_size", cfg.DefaultContextSize))

	// Graceful shutdown: stop accepting new events; in-flight model calls
	// are not aborted.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	if err := gateway.Close(); err != nil {
		logger.Error("failed to close discord session", zap.Error(err))
	}
}
