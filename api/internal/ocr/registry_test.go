package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedProvider string

func (p namedProvider) Name() string          { return string(p) }
func (p namedProvider) CredentialKey() string { return "KEY_" + string(p) }
func (p namedProvider) Invoke(context.Context, string, string) (string, error) {
	return "", nil
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry("", namedProvider("gemini"), namedProvider("openai"), namedProvider("claude"), nil)

	assert.Equal(t, "openai", r.Lookup("OpenAI ").Name())
	assert.Equal(t, "gemini", r.Lookup("mistral").Name(), "unknown names fall back to the default")
	assert.Equal(t, "gemini", r.Lookup("").Name())
	assert.Equal(t, []string{"claude", "gemini", "openai"}, r.Names())
	assert.Equal(t, DefaultProvider, r.Default())
}

func TestRegistryLookupWithoutDefault(t *testing.T) {
	r := NewRegistry("gemini", namedProvider("claude"))
	assert.Nil(t, r.Lookup("copilot"))
}

func TestProviderErrorMessages(t *testing.T) {
	err := Missing("claude", "ANTHROPIC_API_KEY")
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")

	cause := &HTTPStatusError{StatusCode: 429, Body: "slow down"}
	err = Failed("openai", 429, cause)
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, RequestFailure, pe.Kind)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "openai 429")

	assert.Equal(t, "gemini: empty response", Empty("gemini").Error())
}

func TestManagerFallsBackToDefault(t *testing.T) {
	m := NewManager(Selection{Mode: "ocr", Provider: "gemini"})
	assert.Equal(t, Selection{Mode: "ocr", Provider: "gemini"}, m.Get(42))

	m.Set(42, Selection{Mode: "ai", Provider: "claude"})
	assert.Equal(t, Selection{Mode: "ai", Provider: "claude"}, m.Get(42))
	assert.Equal(t, "ocr", m.Get(7).Mode)
}
