package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"dance-poster/api/internal/extract"
	"dance-poster/api/internal/util"
)

type Handle struct {
	ext       extract.Extractor
	log       logrus.FieldLogger
	maxUpload int64
	timeout   time.Duration
	ping      func(context.Context) error
}

type Option func(*Handle)

// WithPing makes /healthz report the given dependency check.
func WithPing(ping func(context.Context) error) Option {
	return func(h *Handle) { h.ping = ping }
}

func New(ext extract.Extractor, log logrus.FieldLogger, maxUpload int64, timeout time.Duration, opts ...Option) *Handle {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	h := &Handle{ext: ext, log: log, maxUpload: maxUpload, timeout: timeout}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Routes registers every endpoint on a fresh mux.
func (h *Handle) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/v1/extract", h.Extract)
	return mux
}

func (h *Handle) Health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withRequestID reuses the caller's X-Request-ID or mints a new one.
func withRequestID(w http.ResponseWriter, r *http.Request) context.Context {
	ctx := util.WithRequestID(r.Context(), r.Header.Get(util.RequestIDHeader))
	w.Header().Set(util.RequestIDHeader, util.RequestID(ctx))
	return ctx
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
