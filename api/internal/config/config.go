package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds process settings. Provider API keys are deliberately absent:
// adapters read them from the environment at call time.
type Config struct {
	Port      string `yaml:"port"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	GeminiModel     string `yaml:"gemini_model"`
	OpenAIModel     string `yaml:"openai_model"`
	ClaudeModel     string `yaml:"claude_model"`
	AzureAPIVersion string `yaml:"azure_openai_api_version"`
	MaxTokens       int    `yaml:"max_tokens"`

	OCREngine     string `yaml:"ocr_engine"`
	TesseractPath string `yaml:"tesseract_path"`
	TesseractLang string `yaml:"tesseract_lang"`
	TessdataDir   string `yaml:"tessdata_dir"`
	YCOAuthToken  string `yaml:"yc_oauth_token"`
	YCFolderID    string `yaml:"yc_folder_id"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`

	TelegramBotToken string        `yaml:"telegram_bot_token"`
	WebhookURL       string        `yaml:"webhook_url"`
	DatabaseURL      string        `yaml:"database_url"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`
}

const (
	EngineTesseract = "tesseract"
	EngineYandex    = "yandex"
)

func defaults() Config {
	return Config{
		Port:            "8000",
		LogLevel:        "info",
		LogFormat:       "text",
		GeminiModel:     "gemini-2.0-flash",
		OpenAIModel:     "gpt-4o",
		ClaudeModel:     "claude-3-5-sonnet-20241022",
		AzureAPIVersion: "2024-06-01",
		MaxTokens:       1024,
		OCREngine:       EngineTesseract,
		TesseractPath:   "tesseract",
		TesseractLang:   "kor+eng",
		RequestTimeout:  60 * time.Second,
		MaxUploadBytes:  10 << 20,
		CacheTTL:        24 * time.Hour,
	}
}

// Load reads .env (if any), then the YAML file named by CONFIG_FILE, then the
// environment. Later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(c *Config) error {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.GeminiModel = getEnv("GEMINI_MODEL", c.GeminiModel)
	c.OpenAIModel = getEnv("OPENAI_MODEL", c.OpenAIModel)
	c.ClaudeModel = getEnv("CLAUDE_MODEL", c.ClaudeModel)
	c.AzureAPIVersion = getEnv("AZURE_OPENAI_API_VERSION", c.AzureAPIVersion)
	c.OCREngine = strings.ToLower(getEnv("OCR_ENGINE", c.OCREngine))
	c.TesseractPath = getEnv("TESSERACT_PATH", c.TesseractPath)
	c.TesseractLang = getEnv("TESSERACT_LANG", c.TesseractLang)
	c.TessdataDir = getEnv("TESSDATA_DIR", c.TessdataDir)
	c.YCOAuthToken = getEnv("YC_OAUTH_TOKEN", c.YCOAuthToken)
	c.YCFolderID = getEnv("YC_FOLDER_ID", c.YCFolderID)
	c.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
	c.WebhookURL = getEnv("WEBHOOK_URL", c.WebhookURL)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)

	var err error
	if c.MaxTokens, err = getInt("MAX_TOKENS", c.MaxTokens); err != nil {
		return err
	}
	var n int
	if n, err = getInt("MAX_UPLOAD_BYTES", int(c.MaxUploadBytes)); err != nil {
		return err
	}
	c.MaxUploadBytes = int64(n)
	if c.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	if c.CacheTTL, err = getDuration("CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	switch c.OCREngine {
	case EngineTesseract:
	case EngineYandex:
		if c.YCOAuthToken == "" || c.YCFolderID == "" {
			return errors.New("OCR_ENGINE=yandex requires YC_OAUTH_TOKEN and YC_FOLDER_ID")
		}
	default:
		return fmt.Errorf("unknown OCR_ENGINE %q", c.OCREngine)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("MAX_TOKENS must be > 0, got %d", c.MaxTokens)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0, got %s", c.RequestTimeout)
	}
	return nil
}

// RequireTelegram checks the settings only the bot binary needs.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return errors.New("missing required env TELEGRAM_BOT_TOKEN")
	}
	return nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}
