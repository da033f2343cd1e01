package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dance-poster/api/internal/ocr"
	"dance-poster/api/internal/util"
)

const (
	Name             = "openai"
	CredentialKey    = "OPENAI_API_KEY"
	DefaultModel     = "gpt-4o"
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultMaxTokens = 1024
)

type Engine struct {
	Model     string
	MaxTokens int
	BaseURL   string
	env       ocr.Env
	httpc     *http.Client
}

type Option func(*Engine)

func WithHTTPClient(c *http.Client) Option { return func(e *Engine) { e.httpc = c } }
func WithBaseURL(u string) Option         { return func(e *Engine) { e.BaseURL = strings.TrimRight(u, "/") } }
func WithMaxTokens(n int) Option          { return func(e *Engine) { e.MaxTokens = n } }

func New(env ocr.Env, model string, opts ...Option) *Engine {
	if env == nil {
		env = ocr.OSEnv
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	e := &Engine{
		Model:     model,
		MaxTokens: DefaultMaxTokens,
		BaseURL:   DefaultBaseURL,
		env:       env,
		httpc:     util.NewHTTPClient(60 * time.Second),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Name() string          { return Name }
func (e *Engine) CredentialKey() string { return CredentialKey }

func (e *Engine) Invoke(ctx context.Context, imageB64, mime string) (string, error) {
	key := e.env(CredentialKey)
	if key == "" {
		return "", ocr.Missing(Name, CredentialKey)
	}
	return ChatCompletion(ctx, e.httpc, Request{
		Provider:  Name,
		URL:       e.BaseURL + "/chat/completions",
		Header:    http.Header{"Authorization": {"Bearer " + key}},
		Model:     e.Model,
		MaxTokens: e.MaxTokens,
		DataURL:   util.MakeDataURL(mime, imageB64),
	})
}

// Request is one vision chat-completions call against an OpenAI-compatible API.
type Request struct {
	Provider  string
	URL       string
	Header    http.Header
	Model     string
	MaxTokens int
	DataURL   string
}

// ChatCompletion sends the extraction prompt with one image and returns the
// first choice's content.
func ChatCompletion(ctx context.Context, httpc *http.Client, in Request) (string, error) {
	body := map[string]any{
		"model":      in.Model,
		"max_tokens": in.MaxTokens,
		"messages": []any{
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": ocr.ExtractionPrompt},
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": in.DataURL}},
				},
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", ocr.Failed(in.Provider, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, in.URL, bytes.NewReader(payload))
	if err != nil {
		return "", ocr.Failed(in.Provider, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range in.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return "", ocr.Failed(in.Provider, 0, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return "", ocr.Failed(in.Provider, resp.StatusCode, &ocr.HTTPStatusError{StatusCode: resp.StatusCode, Body: string(x)})
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", ocr.Failed(in.Provider, 0, fmt.Errorf("decode response: %w", err))
	}
	if len(raw.Choices) == 0 || strings.TrimSpace(raw.Choices[0].Message.Content) == "" {
		return "", ocr.Empty(in.Provider)
	}
	return raw.Choices[0].Message.Content, nil
}
