package claude

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"dance-poster/api/internal/ocr"
)

const (
	Name             = "claude"
	CredentialKey    = "ANTHROPIC_API_KEY"
	DefaultModel     = "claude-3-5-sonnet-20241022"
	DefaultMaxTokens = 1024
)

type Engine struct {
	Model     string
	MaxTokens int64
	env       ocr.Env
	opts      []option.RequestOption
}

// New builds the adapter. Extra request options (base URL, HTTP client) are
// appended after the API key.
func New(env ocr.Env, model string, maxTokens int, opts ...option.RequestOption) *Engine {
	if env == nil {
		env = ocr.OSEnv
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Engine{Model: model, MaxTokens: int64(maxTokens), env: env, opts: opts}
}

func (e *Engine) Name() string          { return Name }
func (e *Engine) CredentialKey() string { return CredentialKey }

func (e *Engine) Invoke(ctx context.Context, imageB64, mime string) (string, error) {
	key := e.env(CredentialKey)
	if key == "" {
		return "", ocr.Missing(Name, CredentialKey)
	}
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(key)}, e.opts...)...)

	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.Model),
		MaxTokens: e.MaxTokens,
		Messages: []anthropic.MessageParam{
			{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewTextBlock(ocr.ExtractionPrompt),
					anthropic.NewImageBlockBase64(mime, imageB64),
				},
			},
		},
	})
	if err != nil {
		return "", ocr.Failed(Name, statusCode(err), err)
	}

	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			if strings.TrimSpace(b.Text) != "" {
				return b.Text, nil
			}
		}
	}
	return "", ocr.Empty(Name)
}

func statusCode(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
