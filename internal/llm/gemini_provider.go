package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type GeminiProvider struct {
	model   string
	client  *genai.Client
	timeout time.Duration
	logger  *zap.Logger
}

func NewGeminiProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*GeminiProvider, error) {
	apiKey := strings.TrimSpace(cfg.GeminiAPIKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY (or API_KEY) is required")
	}

	model := strings.TrimSpace(cfg.GeminiModel)
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}

	return &GeminiProvider{
		model:   model,
		client:  client,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

func (g *GeminiProvider) Name() string {
	return ProviderGemini
}

func (g *GeminiProvider) Model() string {
	return g.model
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return observeProviderOperation(ctx, g.logger, g.Name(), "generate", func() (string, error) {
		callCtx, cancel := withCallTimeout(ctx, g.timeout)
		defer cancel()

		response, err := g.client.Models.GenerateContent(
			callCtx,
			g.model,
			genai.Text(prompt),
			nil,
		)
		if err != nil {
			return "", err
		}

		text := strings.TrimSpace(response.Text())
		if text == "" {
			return "", ErrEmptyResponse
		}
		return text, nil
	})
}
