package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"dance-poster/api/internal/ocr"
)

const (
	Name          = "gemini"
	CredentialKey = "GEMINI_API_KEY"
	DefaultModel  = "gemini-2.0-flash"
)

type Engine struct {
	Model string
	env   ocr.Env
	opts  []option.ClientOption
}

// New builds the adapter. Extra client options are appended after the API key.
func New(env ocr.Env, model string, opts ...option.ClientOption) *Engine {
	if env == nil {
		env = ocr.OSEnv
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Engine{Model: strings.TrimSpace(model), env: env, opts: opts}
}

func (e *Engine) Name() string          { return Name }
func (e *Engine) CredentialKey() string { return CredentialKey }

func (e *Engine) Invoke(ctx context.Context, imageB64, mime string) (string, error) {
	key := e.env(CredentialKey)
	if key == "" {
		return "", ocr.Missing(Name, CredentialKey)
	}
	img, err := base64.StdEncoding.DecodeString(imageB64)
	if err != nil {
		return "", ocr.Failed(Name, 0, fmt.Errorf("bad base64: %w", err))
	}

	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(key)}, e.opts...)...)
	if err != nil {
		return "", ocr.Failed(Name, 0, err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}

	resp, err := m.GenerateContent(ctx,
		genai.Text(ocr.ExtractionPrompt),
		&genai.Blob{MIMEType: mime, Data: img},
	)
	if err != nil {
		return "", ocr.Failed(Name, statusCode(err), err)
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", ocr.Empty(Name)
	}
	return txt, nil
}

func statusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok && strings.TrimSpace(string(t)) != "" {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(f float32) *float32 { return &f }
