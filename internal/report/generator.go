package report

import (
	"context"
	"strings"

	"github.com/DaviiSA/JA-app/internal/domain"
	"github.com/DaviiSA/JA-app/internal/llm"
	"github.com/DaviiSA/JA-app/internal/middleware"
	"go.uber.org/zap"
)

// Generator is the only caller of the text-generation provider. Failures
// stay inside: callers always get text back.
type Generator struct {
	provider llm.Provider
	logger   *zap.Logger
}

func NewGenerator(provider llm.Provider, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{provider: provider, logger: logger}
}

func (g *Generator) ProviderName() string {
	return g.provider.Name()
}

func (g *Generator) Generate(ctx context.Context, state domain.FormState) string {
	text, ok := g.TryGenerate(ctx, state)
	if !ok {
		return domain.SummaryFallback
	}
	return text
}

// TryGenerate is Generate that also reports whether the provider produced
// the text or the fallback was substituted.
func (g *Generator) TryGenerate(ctx context.Context, state domain.FormState) (string, bool) {
	text, err := g.provider.Generate(ctx, BuildPrompt(state))
	if err == nil && strings.TrimSpace(text) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		g.logger.Error("Erro ao gerar resumo",
			zap.String("request_id", middleware.RequestIDFromContext(ctx)),
			zap.String("provider", g.provider.Name()),
			zap.String("work_order", state.WorkOrder),
			zap.Error(err),
		)
		return domain.SummaryFallback, false
	}
	return text, true
}
