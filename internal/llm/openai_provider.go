package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const openAIURL = "https://api.openai.com/v1/chat/completions"

type OpenAIProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	timeout  time.Duration
	logger   *zap.Logger
}

func NewOpenAIProvider(cfg Config, logger *zap.Logger) (*OpenAIProvider, error) {
	apiKey := strings.TrimSpace(cfg.OpenAIAPIKey)
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	model := strings.TrimSpace(cfg.OpenAIModel)
	if model == "" {
		model = DefaultOpenAIModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAIProvider{
		apiKey:   apiKey,
		model:    model,
		endpoint: openAIURL,
		client:   http.DefaultClient,
		timeout:  cfg.Timeout,
		logger:   logger,
	}, nil
}

func (o *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

func (o *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return observeProviderOperation(ctx, o.logger, o.Name(), "generate", func() (string, error) {
		return o.call(ctx, prompt)
	})
}

func (o *OpenAIProvider) call(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	callCtx, cancel := withCallTimeout(ctx, o.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(callCtx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+o.apiKey)

	response, err := o.client.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		responseBytes, _ := io.ReadAll(io.LimitReader(response.Body, 4096))
		return "", &providerHTTPError{
			provider:   o.Name(),
			statusCode: response.StatusCode,
			message:    strings.TrimSpace(string(responseBytes)),
		}
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
