package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// MockProvider answers locally so the service runs without a credential.
type MockProvider struct {
	logger *zap.Logger
}

func NewMockProvider(logger *zap.Logger) *MockProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MockProvider{logger: logger}
}

func (m *MockProvider) Name() string {
	return ProviderMock
}

func (m *MockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return observeProviderOperation(ctx, m.logger, m.Name(), "generate", func() (string, error) {
		body := strings.TrimSpace(prompt)
		if body == "" {
			body = "Nenhum dado informado."
		}
		return fmt.Sprintf("[resumo simulado]\n%s", body), nil
	})
}
