package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dance-poster/api/internal/ocr"
)

func TestInvokeMissingCredential(t *testing.T) {
	e := New(func(string) string { return "" }, "")
	assert.Equal(t, DefaultModel, e.Model)

	_, err := e.Invoke(context.Background(), "QUJD", "image/png")
	var pe *ocr.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ocr.MissingCredential, pe.Kind)
	assert.Equal(t, CredentialKey, pe.Key)
}

func TestFirstTextSkipsEmptyParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			nil,
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("  ")}}},
			{Content: &genai.Content{Parts: []genai.Part{&genai.Blob{MIMEType: "image/png"}, genai.Text(`{"title":"x"}`)}}},
		},
	}
	assert.Equal(t, `{"title":"x"}`, firstText(resp))
	assert.Equal(t, "", firstText(nil))
}
