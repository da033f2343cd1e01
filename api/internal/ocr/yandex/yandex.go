// Package yandex recognizes poster text with Yandex Vision OCR.
package yandex

import (
	"bytes"
	"context"
	"encoding/base64"
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
	Name            = "yandex"
	DefaultEndpoint = "https://ocr.api.cloud.yandex.net/ocr/v1/recognizeText"
)

var DefaultLanguages = []string{"ko", "en"}

type Engine struct {
	Endpoint  string
	Languages []string
	Model     string
	iamc      *IamClient
	folderID  string
	httpc     *http.Client
}

func New(oauth2Token, folderID string) *Engine {
	return &Engine{
		Endpoint:  DefaultEndpoint,
		Languages: DefaultLanguages,
		Model:     "page",
		iamc:      NewIamClient(oauth2Token),
		folderID:  folderID,
		httpc:     util.NewHTTPClient(60 * time.Second),
	}
}

func (e *Engine) Name() string { return Name }

type request struct {
	Content       string   `json:"content"`
	MimeType      string   `json:"mimeType,omitempty"`
	LanguageCodes []string `json:"languageCodes,omitempty"`
	Model         string   `json:"model,omitempty"`
}

type textAnnotation struct {
	FullText string `json:"fullText,omitempty"`
	Blocks   []struct {
		Lines []struct {
			Text string `json:"text,omitempty"`
		} `json:"lines,omitempty"`
	} `json:"blocks,omitempty"`
}

type response struct {
	Result *struct {
		TextAnnotation *textAnnotation `json:"textAnnotation,omitempty"`
	} `json:"result,omitempty"`
}

func (e *Engine) Recognize(ctx context.Context, image []byte) (string, error) {
	payload, err := json.Marshal(request{
		Content:       base64.StdEncoding.EncodeToString(image),
		MimeType:      util.SniffMimeForOCR(image),
		LanguageCodes: e.Languages,
		Model:         e.Model,
	})
	if err != nil {
		return "", err
	}

	resp, err := e.post(ctx, payload, false)
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		// the cached token may have been revoked early; retry once with a fresh one
		if resp, err = e.post(ctx, payload, true); err != nil {
			return "", err
		}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return "", fmt.Errorf("yandex ocr: %w", &ocr.HTTPStatusError{StatusCode: resp.StatusCode, Body: string(x)})
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("yandex ocr: decode: %w", err)
	}
	return ocr.NormalizeText(out.text()), nil
}

func (e *Engine) post(ctx context.Context, payload []byte, refresh bool) (*http.Response, error) {
	if refresh {
		e.iamc.Invalidate()
	}
	iamToken, err := e.iamc.Token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+iamToken)
	req.Header.Set("x-folder-id", e.folderID)
	return e.httpc.Do(req)
}

// text prefers fullText and falls back to joining recognized lines.
func (r *response) text() string {
	if r == nil || r.Result == nil || r.Result.TextAnnotation == nil {
		return ""
	}
	ta := r.Result.TextAnnotation
	if t := strings.TrimSpace(ta.FullText); t != "" {
		return t
	}
	var lines []string
	for _, b := range ta.Blocks {
		for _, l := range b.Lines {
			if s := strings.TrimSpace(l.Text); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return strings.Join(lines, "\n")
}
