package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "PORT", "GEMINI_MODEL", "CLAUDE_MODEL", "OCR_ENGINE",
		"MAX_TOKENS", "REQUEST_TIMEOUT", "CACHE_TTL", "YC_OAUTH_TOKEN", "YC_FOLDER_ID",
		"MAX_UPLOAD_BYTES", "TESSERACT_LANG",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.ClaudeModel)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.Equal(t, EngineTesseract, cfg.OCREngine)
	assert.Equal(t, "kor+eng", cfg.TesseractLang)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.EqualValues(t, 10<<20, cfg.MaxUploadBytes)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
gemini_model: gemini-1.5-pro
max_tokens: 2048
cache_ttl: 2h
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("REQUEST_TIMEOUT", "15s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port, "env beats file")
	assert.Equal(t, "gemini-1.5-pro", cfg.GeminiModel)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, 2*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad int":          {"MAX_TOKENS": "many"},
		"zero tokens":      {"MAX_TOKENS": "0"},
		"bad duration":     {"REQUEST_TIMEOUT": "soon"},
		"unknown engine":   {"OCR_ENGINE": "abbyy"},
		"yandex w/o creds": {"OCR_ENGINE": "yandex"},
		"missing file":     {"CONFIG_FILE": "/nonexistent/config.yaml"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadYandexEngine(t *testing.T) {
	clearEnv(t)
	t.Setenv("OCR_ENGINE", "Yandex")
	t.Setenv("YC_OAUTH_TOKEN", "oauth")
	t.Setenv("YC_FOLDER_ID", "folder")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EngineYandex, cfg.OCREngine)
}

func TestRequireTelegram(t *testing.T) {
	assert.Error(t, (&Config{}).RequireTelegram())
	assert.NoError(t, (&Config{TelegramBotToken: "t"}).RequireTelegram())
}
