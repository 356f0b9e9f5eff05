package llm

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// IsRetryable reports whether a draft request error is worth another
// attempt: rate limits, server-side failures, and network timeouts
// are; everything else (bad request, auth, canceled context) is not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// A canceled or expired request context never retries; the caller
	// owns that deadline.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// String fallback for transport errors the client does not type.
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"connection refused", "connection reset", "timeout", "temporarily unavailable", "eof"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
