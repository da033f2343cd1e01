package extract

import (
	"errors"
	"net/http"
	"regexp"

	"dance-poster/api/internal/ocr"
)

var reQuota = regexp.MustCompile(`(?i)quota|rate limit|resource exhausted|429|RESOURCE_EXHAUSTED`)

// IsQuotaOrRateLimit reports whether err is a transient capacity failure:
// an HTTP 429 from the backend or a message that says so.
func IsQuotaOrRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var pe *ocr.ProviderError
	if errors.As(err, &pe) && pe.StatusCode == http.StatusTooManyRequests {
		return true
	}
	var he *ocr.HTTPStatusError
	if errors.As(err, &he) && he.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return reQuota.MatchString(err.Error())
}
