package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrConfiguration marks credential problems detected before any request is sent.
	ErrConfiguration = errors.New("ai analyzer misconfigured")
	// ErrMissingAPIKey is returned when no API key was supplied.
	ErrMissingAPIKey = fmt.Errorf("%w: api key is required", ErrConfiguration)
	// ErrMalformedAPIKey is returned when the key does not have the expected shape.
	ErrMalformedAPIKey = fmt.Errorf("%w: api key is malformed", ErrConfiguration)
	// ErrUnparseableResponse is returned when the model reply has no extractable JSON.
	ErrUnparseableResponse = errors.New("ai response contained no parseable json")
	// ErrEmptyResponse is returned when the provider answered without any choices.
	ErrEmptyResponse = errors.New("ai response contained no choices")
)

// ProviderErrorKind classifies a failed provider call.
type ProviderErrorKind string

const (
	ProviderAuth        ProviderErrorKind = "auth"
	ProviderRateLimited ProviderErrorKind = "rate_limited"
	ProviderFailure     ProviderErrorKind = "failure"
	ProviderNetwork     ProviderErrorKind = "network"
)

// ProviderError wraps a non-2xx response or a transport failure.
type ProviderError struct {
	Kind       ProviderErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("ai provider %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ai provider %s: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ValidateAPIKey reports whether key is usable without contacting the provider.
func ValidateAPIKey(key, requiredPrefix string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return ErrMissingAPIKey
	}
	if trimmed != key || strings.ContainsAny(trimmed, " \t\r\n") {
		return ErrMalformedAPIKey
	}
	if requiredPrefix != "" && !strings.HasPrefix(trimmed, requiredPrefix) {
		return ErrMalformedAPIKey
	}
	if len(trimmed) < 16 {
		return ErrMalformedAPIKey
	}
	return nil
}

// classifyError converts a go-openai client error into a ProviderError.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &ProviderError{Kind: kindForStatus(apiErr.HTTPStatusCode), StatusCode: apiErr.HTTPStatusCode, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return &ProviderError{Kind: kindForStatus(reqErr.HTTPStatusCode), StatusCode: reqErr.HTTPStatusCode, Err: err}
	}

	return &ProviderError{Kind: ProviderNetwork, Err: err}
}

func kindForStatus(status int) ProviderErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ProviderAuth
	case http.StatusTooManyRequests:
		return ProviderRateLimited
	default:
		return ProviderFailure
	}
}

// ErrorKind returns a short label for metrics and logs.
func ErrorKind(err error) string {
	var providerErr *ProviderError
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.As(err, &providerErr):
		return string(providerErr.Kind)
	case errors.Is(err, ErrUnparseableResponse), errors.Is(err, ErrEmptyResponse):
		return "parse"
	default:
		return "unknown"
	}
}
