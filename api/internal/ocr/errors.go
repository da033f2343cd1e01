package ocr

import (
	"fmt"
	"strings"
)

type Kind int

const (
	MissingCredential Kind = iota + 1
	RequestFailure
	EmptyResponse
)

func (k Kind) String() string {
	switch k {
	case MissingCredential:
		return "missing credential"
	case RequestFailure:
		return "request failure"
	case EmptyResponse:
		return "empty response"
	default:
		return "unknown"
	}
}

// ProviderError describes why a provider call produced no text.
// StatusCode is the backend HTTP status when one was observed.
type ProviderError struct {
	Provider   string
	Kind       Kind
	Key        string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	switch e.Kind {
	case MissingCredential:
		return fmt.Sprintf("%s: environment variable %s is not set", e.Provider, e.Key)
	case EmptyResponse:
		return fmt.Sprintf("%s: empty response", e.Provider)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func Missing(provider, key string) error {
	return &ProviderError{Provider: provider, Kind: MissingCredential, Key: key}
}

func Empty(provider string) error {
	return &ProviderError{Provider: provider, Kind: EmptyResponse}
}

func Failed(provider string, status int, err error) error {
	return &ProviderError{Provider: provider, Kind: RequestFailure, StatusCode: status, Err: err}
}

// HTTPStatusError carries a non-2xx reply body from a raw HTTP backend.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}
