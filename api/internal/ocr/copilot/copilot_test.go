package copilot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dance-poster/api/internal/ocr"
)

func TestInvokeTargetsDeployment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/vision-4o/chat/completions", r.URL.Path)
		assert.Equal(t, DefaultAPIVersion, r.URL.Query().Get("api-version"))
		assert.Equal(t, "az-key", r.Header.Get("api-key"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer srv.Close()

	vars := map[string]string{
		CredentialKey: "az-key",
		EndpointKey:   srv.URL + "/",
		DeploymentKey: "vision-4o",
	}
	out, err := New(func(k string) string { return vars[k] }, "", 0).Invoke(context.Background(), "QUJD", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
}

func TestInvokeRequiresEndpoint(t *testing.T) {
	vars := map[string]string{CredentialKey: "az-key"}
	_, err := New(func(k string) string { return vars[k] }, "", 0).Invoke(context.Background(), "QUJD", "image/jpeg")

	var pe *ocr.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ocr.MissingCredential, pe.Kind)
	assert.Equal(t, EndpointKey, pe.Key)
}

func TestDefaultDeployment(t *testing.T) {
	e := New(nil, "", 0)
	assert.Equal(t,
		"https://res.openai.azure.com/openai/deployments/gpt-4o/chat/completions?api-version=2024-06-01",
		e.completionsURL("https://res.openai.azure.com", DefaultDeployment))
	assert.Equal(t, CredentialKey, e.CredentialKey())
}
