package assistant

import (
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNotConfigured is returned by NewClient when no API key is available.
var ErrNotConfigured = errors.New("OpenAI API key not configured")

// ErrUnavailable wraps every upstream failure so callers can map the whole
// class to a single service-unavailable response.
var ErrUnavailable = errors.New("assistant unavailable")

// classifyError translates an OpenAI API failure into a stable message for
// callers. Every classified error wraps ErrUnavailable.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == "insufficient_quota":
			return fmt.Errorf("%w: OpenAI API quota exceeded, check billing: %v", ErrUnavailable, err)
		case apiErr.Code == "invalid_api_key":
			return fmt.Errorf("%w: invalid OpenAI API key: %v", ErrUnavailable, err)
		case apiErr.Type == "rate_limit_error" || apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: OpenAI API rate limit exceeded: %v", ErrUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
