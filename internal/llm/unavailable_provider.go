package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// unavailableProvider stands in for a provider that failed to initialize.
type unavailableProvider struct {
	name   string
	cause  error
	logger *zap.Logger
}

func newUnavailableProvider(name string, cause error, logger *zap.Logger) *unavailableProvider {
	return &unavailableProvider{name: name, cause: cause, logger: logger}
}

func (u *unavailableProvider) Name() string {
	return u.name
}

func (u *unavailableProvider) Generate(ctx context.Context, _ string) (string, error) {
	return observeProviderOperation(ctx, u.logger, u.name, "generate", func() (string, error) {
		return "", fmt.Errorf("%w: %w", ErrProviderUnavailable, u.cause)
	})
}
