package extract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"dance-poster/api/internal/ocr"
)

func TestIsQuotaOrRateLimit(t *testing.T) {
	assert.True(t, IsQuotaOrRateLimit(ocr.Failed("openai", 429, errors.New("too many"))))
	assert.True(t, IsQuotaOrRateLimit(fmt.Errorf("call: %w", &ocr.HTTPStatusError{StatusCode: 429})))
	assert.True(t, IsQuotaOrRateLimit(errors.New("googleapi: Error 429: Resource has been exhausted")))
	assert.True(t, IsQuotaOrRateLimit(errors.New("You exceeded your current QUOTA")))
	assert.True(t, IsQuotaOrRateLimit(errors.New("Rate limit reached for gpt-4o")))
	assert.True(t, IsQuotaOrRateLimit(errors.New("rpc error: code = RESOURCE_EXHAUSTED")))
	assert.True(t, IsQuotaOrRateLimit(errors.New("resource exhausted")))

	assert.False(t, IsQuotaOrRateLimit(nil))
	assert.False(t, IsQuotaOrRateLimit(ocr.Failed("claude", 500, errors.New("overloaded"))))
	assert.False(t, IsQuotaOrRateLimit(ocr.Empty("gemini")))
	assert.False(t, IsQuotaOrRateLimit(ErrNoJSON))
}
