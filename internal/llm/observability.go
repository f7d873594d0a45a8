package llm

import (
	"context"
	"time"

	"github.com/DaviiSA/JA-app/internal/metrics"
	"github.com/DaviiSA/JA-app/internal/middleware"
	"go.uber.org/zap"
)

func observeProviderOperation(ctx context.Context, logger *zap.Logger, provider string, operation string, call func() (string, error)) (string, error) {
	started := time.Now()
	requestID := middleware.RequestIDFromContext(ctx)

	logger.Debug("provider call started",
		zap.String("request_id", requestID),
		zap.String("component", "provider"),
		zap.String("provider", provider),
		zap.String("operation", operation),
	)

	result, err := call()

	status := "success"
	errorCategory := providerErrorCategory(err)
	if err != nil {
		status = "error"
	}

	duration := time.Since(started)
	metrics.RecordProviderCall(provider, operation, status, errorCategory, duration)
	logger.Info("provider call finished",
		zap.String("request_id", requestID),
		zap.String("component", "provider"),
		zap.String("provider", provider),
		zap.String("operation", operation),
		zap.String("status", status),
		zap.String("error_category", errorCategory),
		zap.Int64("duration_ms", duration.Milliseconds()),
	)

	return result, err
}
