// Package copilot talks to an Azure OpenAI deployment.
package copilot

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dance-poster/api/internal/ocr"
	"dance-poster/api/internal/ocr/openai"
	"dance-poster/api/internal/util"
)

const (
	Name              = "copilot"
	CredentialKey     = "AZURE_OPENAI_API_KEY"
	EndpointKey       = "AZURE_OPENAI_ENDPOINT"
	DeploymentKey     = "AZURE_OPENAI_DEPLOYMENT"
	DefaultDeployment = "gpt-4o"
	DefaultAPIVersion = "2024-06-01"
)

type Engine struct {
	APIVersion string
	MaxTokens  int
	env        ocr.Env
	httpc      *http.Client
}

func New(env ocr.Env, apiVersion string, maxTokens int) *Engine {
	if env == nil {
		env = ocr.OSEnv
	}
	if strings.TrimSpace(apiVersion) == "" {
		apiVersion = DefaultAPIVersion
	}
	if maxTokens <= 0 {
		maxTokens = openai.DefaultMaxTokens
	}
	return &Engine{
		APIVersion: apiVersion,
		MaxTokens:  maxTokens,
		env:        env,
		httpc:      util.NewHTTPClient(60 * time.Second),
	}
}

func (e *Engine) Name() string          { return Name }
func (e *Engine) CredentialKey() string { return CredentialKey }

func (e *Engine) Invoke(ctx context.Context, imageB64, mime string) (string, error) {
	key := e.env(CredentialKey)
	if key == "" {
		return "", ocr.Missing(Name, CredentialKey)
	}
	endpoint := strings.TrimRight(e.env(EndpointKey), "/")
	if endpoint == "" {
		return "", ocr.Missing(Name, EndpointKey)
	}
	deployment := e.env(DeploymentKey)
	if deployment == "" {
		deployment = DefaultDeployment
	}

	return openai.ChatCompletion(ctx, e.httpc, openai.Request{
		Provider:  Name,
		URL:       e.completionsURL(endpoint, deployment),
		Header:    http.Header{"api-key": {key}},
		Model:     deployment,
		MaxTokens: e.MaxTokens,
		DataURL:   util.MakeDataURL(mime, imageB64),
	})
}

func (e *Engine) completionsURL(endpoint, deployment string) string {
	q := url.Values{"api-version": {e.APIVersion}}
	return endpoint + "/openai/deployments/" + url.PathEscape(deployment) + "/chat/completions?" + q.Encode()
}
