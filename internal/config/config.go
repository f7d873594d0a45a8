package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DaviiSA/JA-app/internal/llm"
	"github.com/joho/godotenv"
)

const (
	defaultPort                   = "8080"
	defaultSessionCapacity        = 1024
	defaultSessionRateLimitPerMin = 60
	defaultMaxUploadMB            = 64
	defaultPhotoDecodeConcurrency = 8
)

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost",
}

type Config struct {
	Port     string
	Env      string
	LogLevel string
	LLM      llm.Config

	SessionCapacity        int
	SessionRateLimitPerMin int
	MaxUploadBytes         int64
	PhotoDecodeConcurrency int
	CORSAllowOrigins       []string
}

// Load reads the given env files (.env when none are named), then the
// process environment. A missing file is skipped; a malformed one is an
// error. Variables already set in the environment win.
func Load(filenames ...string) (*Config, error) {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(), nil
}

func FromEnv() *Config {
	env := firstNonEmpty(getEnv("APP_ENV"), "local")

	return &Config{
		Port:     firstNonEmpty(getEnv("PORT"), defaultPort),
		Env:      env,
		LogLevel: firstNonEmpty(getEnv("LOG_LEVEL"), defaultLogLevel(env)),
		LLM: llm.Config{
			Provider:     firstNonEmpty(getEnv("LLM_PROVIDER"), llm.ProviderGemini),
			GeminiAPIKey: firstNonEmpty(getEnv("GEMINI_API_KEY"), getEnv("API_KEY"), getEnv("GOOGLE_API_KEY")),
			GeminiModel:  firstNonEmpty(getEnv("GEMINI_MODEL"), llm.DefaultGeminiModel),
			OpenAIAPIKey: getEnv("OPENAI_API_KEY"),
			OpenAIModel:  firstNonEmpty(getEnv("OPENAI_MODEL"), llm.DefaultOpenAIModel),
			Timeout:      time.Duration(intFromEnv("LLM_TIMEOUT_MS", 0, 0)) * time.Millisecond,
			MockFallback: strings.EqualFold(env, "local"),
		},
		SessionCapacity:        intFromEnv("SESSION_CAPACITY", defaultSessionCapacity, 1),
		SessionRateLimitPerMin: intFromEnv("SESSION_RATE_LIMIT_PER_MINUTE", defaultSessionRateLimitPerMin, 0),
		MaxUploadBytes:         int64(intFromEnv("MAX_UPLOAD_MB", defaultMaxUploadMB, 1)) << 20,
		PhotoDecodeConcurrency: intFromEnv("PHOTO_DECODE_CONCURRENCY", defaultPhotoDecodeConcurrency, 0),
		CORSAllowOrigins:       listFromEnv("CORS_ALLOW_ORIGINS", defaultCORSOrigins),
	}
}

func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func defaultLogLevel(env string) string {
	if strings.EqualFold(env, "local") {
		return "debug"
	}
	return "info"
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// intFromEnv falls back to the default when the value is missing,
// malformed or below floor.
func intFromEnv(key string, fallback int, floor int) int {
	raw := getEnv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < floor {
		return fallback
	}
	return parsed
}

func listFromEnv(key string, fallback []string) []string {
	raw := getEnv(key)
	if raw == "" {
		return append([]string(nil), fallback...)
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return append([]string(nil), fallback...)
	}
	return values
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
