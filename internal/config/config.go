package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultContextSize is the per-channel turn capacity used until an admin
// changes it.
const DefaultContextSize = 10

// allowedImageTypes is the fixed allow-list of attachment content types that
// may be forwarded to the model as inline images.
var allowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/bmp",
	"image/tiff",
	"image/svg+xml",
}

// Config holds the bot's runtime configuration.
type Config struct {
	DiscordToken       string
	GoogleAPIKey       string
	BotName            string
	ModelName          string
	Preamble           string
	DefaultContextSize int
	LedgerDBPath       string
	FetchTimeout       time.Duration
	AllowedImageTypes  []string
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return Config{}, fmt.Errorf("DISCORD_TOKEN is required in environment")
	}
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		return Config{}, fmt.Errorf("GOOGLE_API_KEY is required in environment")
	}

	contextSize := envIntOrDefault("DEFAULT_CONTEXT_SIZE", DefaultContextSize)
	if contextSize < 0 {
		return Config{}, fmt.Errorf("DEFAULT_CONTEXT_SIZE must be 0 or greater, got %d", contextSize)
	}

	fetchTimeout := envIntOrDefault("FETCH_TIMEOUT_SECONDS", 30)
	if fetchTimeout <= 0 {
		return Config{}, fmt.Errorf("FETCH_TIMEOUT_SECONDS must be greater than 0, got %d", fetchTimeout)
	}

	botName := envOrDefault("BOT_NAME", "gemini")

	return Config{
		DiscordToken:       token,
		GoogleAPIKey:       apiKey,
		BotName:            botName,
		ModelName:          envOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		Preamble:           envOrDefault("BOT_PREAMBLE", fmt.Sprintf("You name is %s, you are an AI discord bot.", botName)),
		DefaultContextSize: contextSize,
		LedgerDBPath:       envOrDefault("LEDGER_DB_PATH", "bot.db"),
		FetchTimeout:       time.Duration(fetchTimeout) * time.Second,
		AllowedImageTypes:  allowedImageTypes,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
