package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"

	DefaultGeminiModel = "gemini-3-flash-preview"
	DefaultOpenAIModel = "gpt-4o-mini"
)

var (
	ErrUnknownProvider     = errors.New("unknown llm provider")
	ErrProviderUnavailable = errors.New("llm provider unavailable")
)

// Provider sends one prompt to a text-generation service.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	Provider     string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	// Timeout bounds a single call; zero leaves it to the remote service.
	Timeout time.Duration
	// MockFallback lets an unusable provider be replaced by the mock one.
	// Otherwise every call fails and callers show their fallback text.
	MockFallback bool
}

// NewProvider builds the configured provider. When it cannot be initialized
// the result is the mock provider if cfg.MockFallback is set, and a provider
// whose calls always fail if not.
func NewProvider(cfg Config, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}

	requested := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if requested == "" {
		requested = ProviderGemini
	}

	var (
		provider Provider
		err      error
	)
	switch requested {
	case ProviderGemini:
		provider, err = NewGeminiProvider(context.Background(), cfg, logger)
	case ProviderOpenAI:
		provider, err = NewOpenAIProvider(cfg, logger)
	case ProviderMock:
		return NewMockProvider(logger)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownProvider, requested)
	}
	if err == nil {
		return provider
	}

	if cfg.MockFallback {
		logger.Warn("llm provider unavailable, using mock",
			zap.String("provider", requested),
			zap.Error(err),
		)
		return NewMockProvider(logger)
	}
	logger.Error("llm provider unavailable, reports will use the fallback text",
		zap.String("provider", requested),
		zap.Error(err),
	)
	return newUnavailableProvider(requested, err, logger)
}
