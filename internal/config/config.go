package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL   string
	HTTPAddr      string
	OpsAddr       string // healthz + /metrics
	LogLevel      string
	Env           string // dev|prod
	SentryDSN     string
	Location      *time.Location
	BotToken      string  // optional: telegram ops notifications
	NotifyChatIDs []int64 // telegram chats for admin notifications
	DeleteTimeout time.Duration
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Europe/Istanbul")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	chatIDs, err := parseIDs(os.Getenv("NOTIFY_CHAT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("NOTIFY_CHAT_IDS: %w", err)
	}

	delTimeout, err := time.ParseDuration(getenv("DELETE_TIMEOUT", "20s"))
	if err != nil {
		return nil, fmt.Errorf("DELETE_TIMEOUT: %w", err)
	}

	cfg := &Config{
		DatabaseURL:   mustEnv("DATABASE_URL"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		OpsAddr:       getenv("OPS_ADDR", ":9090"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		Env:           getenv("ENV", "dev"),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		Location:      loc,
		BotToken:      os.Getenv("BOT_TOKEN"),
		NotifyChatIDs: chatIDs,
		DeleteTimeout: delTimeout,
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
