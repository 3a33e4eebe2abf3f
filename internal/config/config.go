package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingAPIKey is returned by Validate when KLIPY_API_KEY is unset.
var ErrMissingAPIKey = errors.New("KLIPY_API_KEY is not set")

// Config captures the runtime configuration for the klipy preview server and CLI.
type Config struct {
	APIKey           string
	CustomerID       string
	BaseURL          string
	HTTPTimeout      time.Duration
	AppPort          int
	LogLevel         string
	RowHeight        float64
	CategoryCacheTTL time.Duration
	RateLimitRPS     float64
	RateLimitBurst   int
	TrackingWorkers  int
	TrackingQueue    int
	CORSOrigins      []string
	ScreenWidth      int
	ScreenHeight     int
	PixelRatio       int
}

// Load reads configuration from environment variables, applying defaults
// suitable for local development.
func Load() (Config, error) {
	cfg := Config{
		APIKey:           getString("KLIPY_API_KEY", ""),
		CustomerID:       getString("KLIPY_CUSTOMER_ID", ""),
		BaseURL:          getString("KLIPY_BASE_URL", "https://api.klipy.co"),
		HTTPTimeout:      getDuration("KLIPY_HTTP_TIMEOUT", 15*time.Second),
		AppPort:          getInt("KLIPY_PORT", 8080),
		LogLevel:         getString("KLIPY_LOG_LEVEL", "info"),
		RowHeight:        getFloat("KLIPY_ROW_HEIGHT", 100),
		CategoryCacheTTL: getDuration("KLIPY_CATEGORY_CACHE_TTL", 15*time.Minute),
		RateLimitRPS:     getFloat("KLIPY_RATE_LIMIT_RPS", 10),
		RateLimitBurst:   getInt("KLIPY_RATE_LIMIT_BURST", 20),
		TrackingWorkers:  getInt("KLIPY_TRACKING_WORKERS", 2),
		TrackingQueue:    getInt("KLIPY_TRACKING_QUEUE", 64),
		CORSOrigins:      getList("KLIPY_CORS_ORIGINS", []string{"*"}),
		ScreenWidth:      getInt("KLIPY_SCREEN_WIDTH", 390),
		ScreenHeight:     getInt("KLIPY_SCREEN_HEIGHT", 844),
		PixelRatio:       getInt("KLIPY_PIXEL_RATIO", 3),
	}

	return cfg, nil
}

// Validate reports settings that make API calls impossible.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
