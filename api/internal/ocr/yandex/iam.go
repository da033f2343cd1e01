package yandex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"dance-poster/api/internal/ocr"
	"dance-poster/api/internal/util"
)

const (
	DefaultIAMEndpoint = "https://iam.api.cloud.yandex.net/iam/v1/tokens"
	OAuthKey           = "YC_OAUTH_TOKEN"

	// used when the exchange reply carries no expiresAt
	defaultTokenTTL = 12 * time.Hour
	refreshMargin   = time.Hour
)

// IamClient trades the OAuth token for IAM tokens and reuses one until it is
// close to expiry or invalidated.
type IamClient struct {
	Endpoint string
	Now      func() time.Time

	httpc *http.Client
	oauth string

	mu      sync.Mutex
	token   string
	renewAt time.Time
}

func NewIamClient(oauth string) *IamClient {
	return &IamClient{
		Endpoint: DefaultIAMEndpoint,
		Now:      time.Now,
		httpc:    util.NewHTTPClient(20 * time.Second),
		oauth:    strings.TrimSpace(oauth),
	}
}

type iamReply struct {
	IamToken  string    `json:"iamToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Token returns the cached IAM token, exchanging the OAuth token when the
// cache is empty or due for renewal.
func (c *IamClient) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.Now()
	if c.token != "" && now.Before(c.renewAt) {
		return c.token, nil
	}
	if c.oauth == "" {
		return "", ocr.Missing(Name, OAuthKey)
	}

	reply, err := c.exchange(ctx)
	if err != nil {
		return "", err
	}
	ttl := defaultTokenTTL
	if !reply.ExpiresAt.IsZero() {
		ttl = reply.ExpiresAt.Sub(now)
	}
	c.token = reply.IamToken
	c.renewAt = now.Add(ttl - refreshMargin)
	return c.token, nil
}

func (c *IamClient) exchange(ctx context.Context) (iamReply, error) {
	body, err := json.Marshal(map[string]string{"yandexPassportOauthToken": c.oauth})
	if err != nil {
		return iamReply{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return iamReply{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return iamReply{}, fmt.Errorf("yandex iam: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return iamReply{}, fmt.Errorf("yandex iam: %w", &ocr.HTTPStatusError{StatusCode: resp.StatusCode, Body: string(x)})
	}

	var out iamReply
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return iamReply{}, fmt.Errorf("yandex iam: decode: %w", err)
	}
	if out.IamToken == "" {
		return iamReply{}, fmt.Errorf("yandex iam: %w", ocr.Empty(Name))
	}
	return out, nil
}

// Invalidate forces the next Token call to exchange again.
func (c *IamClient) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.renewAt = time.Time{}
	c.mu.Unlock()
}
