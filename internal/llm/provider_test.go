package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProviderWithoutKeyFailsCalls(t *testing.T) {
	provider := NewProvider(Config{}, zap.NewNop())
	assert.Equal(t, ProviderGemini, provider.Name())

	text, err := provider.Generate(context.Background(), "OS-4521")
	assert.Empty(t, text)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, "unavailable", providerErrorCategory(err))
}

func TestNewProviderWithoutKeyUsesMockWhenAllowed(t *testing.T) {
	provider := NewProvider(Config{MockFallback: true}, zap.NewNop())
	assert.Equal(t, ProviderMock, provider.Name())
}

func TestNewProviderSelectsGemini(t *testing.T) {
	provider := NewProvider(Config{
		Provider:     "gemini",
		GeminiAPIKey: "test-gemini-key",
	}, zap.NewNop())
	require.Equal(t, ProviderGemini, provider.Name())

	gemini, ok := provider.(*GeminiProvider)
	require.True(t, ok)
	assert.Equal(t, DefaultGeminiModel, gemini.Model())
}

func TestNewProviderSelectsOpenAI(t *testing.T) {
	provider := NewProvider(Config{
		Provider:     "OpenAI",
		OpenAIAPIKey: "test-openai-key",
	}, zap.NewNop())
	assert.Equal(t, ProviderOpenAI, provider.Name())
}

func TestNewProviderUnknown(t *testing.T) {
	provider := NewProvider(Config{Provider: "anthropic"}, zap.NewNop())
	_, err := provider.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrUnknownProvider)

	provider = NewProvider(Config{Provider: "anthropic", MockFallback: true}, zap.NewNop())
	assert.Equal(t, ProviderMock, provider.Name())
}

func TestNewProviderExplicitMock(t *testing.T) {
	provider := NewProvider(Config{Provider: "mock"}, zap.NewNop())
	assert.Equal(t, ProviderMock, provider.Name())
}

func TestMockProviderEchoesPrompt(t *testing.T) {
	text, err := NewMockProvider(nil).Generate(context.Background(), "OS-4521 MO-001")
	require.NoError(t, err)
	assert.Contains(t, text, "OS-4521 MO-001")
}

func TestOpenAIProviderGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultOpenAIModel, body.Model)
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "prompt", body.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  resumo pronto  "}}]}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{OpenAIAPIKey: "key"}, zap.NewNop())
	require.NoError(t, err)
	provider.endpoint = server.URL

	text, err := provider.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "resumo pronto", text)
}

func TestOpenAIProviderHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`slow down`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{OpenAIAPIKey: "key"}, zap.NewNop())
	require.NoError(t, err)
	provider.endpoint = server.URL

	_, err = provider.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "429"))
	assert.Equal(t, "rate_limited", providerErrorCategory(err))
}

func TestOpenAIProviderEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{OpenAIAPIKey: "key"}, zap.NewNop())
	require.NoError(t, err)
	provider.endpoint = server.URL

	_, err = provider.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
