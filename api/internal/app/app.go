// Package app wires configuration into the extraction stack shared by the
// HTTP service and the Telegram bot.
package app

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"dance-poster/api/internal/config"
	"dance-poster/api/internal/extract"
	"dance-poster/api/internal/ocr"
	"dance-poster/api/internal/ocr/claude"
	"dance-poster/api/internal/ocr/copilot"
	"dance-poster/api/internal/ocr/gemini"
	"dance-poster/api/internal/ocr/openai"
	"dance-poster/api/internal/ocr/tesseract"
	"dance-poster/api/internal/ocr/yandex"
	"dance-poster/api/internal/store"
)

func NewLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("bad LOG_LEVEL, using info")
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// Providers registers every vision backend. Credentials are checked per call.
func Providers(cfg *config.Config) *ocr.Registry {
	return ocr.NewRegistry(ocr.DefaultProvider,
		gemini.New(ocr.OSEnv, cfg.GeminiModel),
		openai.New(ocr.OSEnv, cfg.OpenAIModel, openai.WithMaxTokens(cfg.MaxTokens)),
		claude.New(ocr.OSEnv, cfg.ClaudeModel, cfg.MaxTokens),
		copilot.New(ocr.OSEnv, cfg.AzureAPIVersion, cfg.MaxTokens),
	)
}

func Recognizer(cfg *config.Config, log logrus.FieldLogger) ocr.Recognizer {
	if cfg.OCREngine == config.EngineYandex {
		return yandex.New(cfg.YCOAuthToken, cfg.YCFolderID)
	}
	return tesseract.New(tesseract.Config{
		Binary:      cfg.TesseractPath,
		Lang:        cfg.TesseractLang,
		TessdataDir: cfg.TessdataDir,
	}, nil, log)
}

// Stack is the assembled extractor plus the optional cache database.
type Stack struct {
	Extractor extract.Extractor
	Providers *ocr.Registry
	DB        *sql.DB
	Repo      *store.ExtractionRepo
}

func (s *Stack) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Build assembles the service; with DATABASE_URL set results are cached in
// Postgres.
func Build(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Stack, error) {
	reg := Providers(cfg)
	svc := extract.NewService(reg, Recognizer(cfg, log), log)
	st := &Stack{Extractor: svc, Providers: reg}

	dsn := strings.TrimSpace(cfg.DatabaseURL)
	if dsn == "" {
		log.Info("DATABASE_URL not set, extraction cache disabled")
		return st, nil
	}
	db, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	log.WithField("dsn", store.SafeDSNSummary(dsn)).Info("db connected")

	repo := store.NewExtractionRepo(db, cfg.CacheTTL)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	st.DB, st.Repo = db, repo
	st.Extractor = extract.NewCached(svc, repo, log)
	return st, nil
}

// Ping reports database health, or nil when no database is configured.
func (s *Stack) Ping(ctx context.Context) error {
	if s.DB == nil {
		return nil
	}
	return s.DB.PingContext(ctx)
}

// RunPurge drops expired cache rows every interval until ctx is done.
func (s *Stack) RunPurge(ctx context.Context, ttl, interval time.Duration, log logrus.FieldLogger) {
	if s.Repo == nil || ttl <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Repo.PurgeOlderThan(ctx, ttl)
			if err != nil {
				log.WithError(err).Warn("cache purge failed")
				continue
			}
			if n > 0 {
				log.WithField("rows", n).Info("cache purged")
			}
		}
	}
}
