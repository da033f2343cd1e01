package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"dance-poster/api/internal/app"
	"dance-poster/api/internal/config"
	"dance-poster/api/internal/extract"
	"dance-poster/api/internal/handle"
	"dance-poster/api/internal/httpserver"
	"dance-poster/api/internal/ocr"
	"dance-poster/api/internal/telegram"
	"dance-poster/api/internal/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	if err := cfg.RequireTelegram(); err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := app.NewLogger(cfg)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = resolveDSN()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("build extractor")
	}
	defer st.Close()
	go st.RunPurge(ctx, cfg.CacheTTL, time.Hour, log)

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.WithError(err).Fatal("telegram")
	}
	bot.Debug = false

	r := &telegram.Router{
		Bot:       bot,
		Extractor: st.Extractor,
		Selections: ocr.NewManager(ocr.Selection{
			Mode:     string(extract.ModeOCR),
			Provider: st.Providers.Default(),
		}),
		Providers: st.Providers.Names(),
		Log:       log,
		HTTP:      util.NewHTTPClient(60 * time.Second),
		Timeout:   cfg.RequestTimeout,
	}

	// the HTTP API rides along on the same port as the webhook
	h := handle.New(st.Extractor, log, cfg.MaxUploadBytes, cfg.RequestTimeout, handle.WithPing(st.Ping))
	mux := h.Routes()
	addr := "0.0.0.0:" + cfg.Port

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		runWebhookMode(ctx, addr, bot, r, mux, webhookURL, log)
		return
	}
	runPollingMode(ctx, addr, bot, r, mux, log)
}

func runWebhookMode(ctx context.Context, addr string, bot *tgbotapi.BotAPI, r *telegram.Router, mux *http.ServeMux, baseURL string, log logrus.FieldLogger) {
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.WithError(err).Fatal("webhook")
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.WithError(err).Fatal("set webhook")
	}

	updates := make(chan tgbotapi.Update, bot.Buffer)
	mux.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		upd, err := bot.HandleUpdate(req)
		if err != nil {
			log.WithError(err).Warn("bad webhook update")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		updates <- *upd
	})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				go r.HandleUpdate(ctx, upd)
			}
		}
	}()

	log.WithField("path", path).Info("webhook mode")
	if err := httpserver.Run(ctx, addr, mux, log); err != nil {
		log.WithError(err).Fatal("http server")
	}
}

func runPollingMode(ctx context.Context, addr string, bot *tgbotapi.BotAPI, r *telegram.Router, mux *http.ServeMux, log logrus.FieldLogger) {
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.WithError(err).Warn("delete webhook")
	}
	go func() {
		if err := httpserver.Run(ctx, addr, mux, log); err != nil {
			log.WithError(err).Error("http server")
		}
	}()

	log.Info("polling mode")
	runPolling(ctx, bot, log, func(upd tgbotapi.Update) {
		go r.HandleUpdate(ctx, upd)
	})
}

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return time.Second
}

func clampDelay(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, log logrus.FieldLogger, handle func(tgbotapi.Update)) {
	offset := 0
	for {
		select {
		case <-ctx.Done():
			log.Info("polling stopped")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := clampDelay(retryDelayFromError(err), time.Second, 15*time.Second)
			log.WithError(err).WithField("retry_in", d).Warn("polling error")
			sleep(ctx, d)
			continue
		}
		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}
		if len(updates) == 0 {
			sleep(ctx, 200*time.Millisecond)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// resolveDSN builds a DSN from POSTGRES_* / PG* vars when any is set.
func resolveDSN() string {
	if os.Getenv("POSTGRES_PASSWORD") == "" && os.Getenv("PGHOST") == "" {
		return ""
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getenvDefault("POSTGRES_USER", "poster"), os.Getenv("POSTGRES_PASSWORD")),
		Host:     net.JoinHostPort(getenvDefault("PGHOST", "db"), getenvDefault("PGPORT", "5432")),
		Path:     "/" + getenvDefault("POSTGRES_DB", "poster"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// shortHash is an FNV-1a digest of the token, used as the webhook path.
func shortHash(s string) string {
	h := uint64(1469598103934665603)
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexdigits[h&0xF]
		h >>= 4
	}
	return string(out)
}
