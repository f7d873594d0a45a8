package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

var ErrEmptyResponse = errors.New("provider returned no text")

type providerHTTPError struct {
	provider   string
	statusCode int
	message    string
}

func (e *providerHTTPError) Error() string {
	if strings.TrimSpace(e.message) == "" {
		return fmt.Sprintf("%s request failed with status %d", e.provider, e.statusCode)
	}
	return fmt.Sprintf("%s request failed with status %d: %s", e.provider, e.statusCode, e.message)
}

func withCallTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// providerErrorCategory buckets a provider failure for logs and metrics.
func providerErrorCategory(err error) string {
	if err == nil {
		return "none"
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if errors.Is(err, ErrEmptyResponse) {
		return "empty_response"
	}
	if errors.Is(err, ErrProviderUnavailable) {
		return "unavailable"
	}

	var httpErr *providerHTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.statusCode == 429:
			return "rate_limited"
		case httpErr.statusCode == 401 || httpErr.statusCode == 403:
			return "unauthorized"
		case httpErr.statusCode >= 500:
			return "upstream_error"
		default:
			return "bad_request"
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "network"
	}

	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "timeout"):
		return "timeout"
	case strings.Contains(message, "429"), strings.Contains(message, "resource_exhausted"):
		return "rate_limited"
	case strings.Contains(message, "api key"), strings.Contains(message, "permission_denied"):
		return "unauthorized"
	}
	return "unknown"
}
