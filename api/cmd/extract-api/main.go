package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"dance-poster/api/internal/app"
	"dance-poster/api/internal/config"
	"dance-poster/api/internal/handle"
	"dance-poster/api/internal/httpserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := app.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("build extractor")
	}
	defer st.Close()
	go st.RunPurge(ctx, cfg.CacheTTL, time.Hour, log)

	h := handle.New(st.Extractor, log, cfg.MaxUploadBytes, cfg.RequestTimeout, handle.WithPing(st.Ping))

	log.WithFields(logrus.Fields{
		"providers":  st.Providers.Names(),
		"ocr_engine": cfg.OCREngine,
	}).Info("extract-api starting")
	if err := httpserver.Run(ctx, ":"+cfg.Port, h.Routes(), log); err != nil {
		log.WithError(err).Fatal("http server")
	}
}
