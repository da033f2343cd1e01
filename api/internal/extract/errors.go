package extract

import (
	"errors"
	"fmt"
)

// ErrNoJSON means the provider answered but no JSON object could be recovered.
var ErrNoJSON = errors.New("provider response contains no JSON object")

// ConfigError is a setup problem the operator can fix: a provider credential
// is not configured. It is never retried and never masked by OCR.
type ConfigError struct {
	Provider string
	Key      string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: set environment variable %s to use this provider", e.Provider, e.Key)
}

// OCRError wraps a failure of the OCR engine itself.
type OCRError struct {
	Engine string
	Err    error
}

func (e *OCRError) Error() string { return fmt.Sprintf("ocr %s: %v", e.Engine, e.Err) }
func (e *OCRError) Unwrap() error { return e.Err }

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
