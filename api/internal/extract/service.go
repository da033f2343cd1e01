// Package extract turns a poster image into canonical fields, either through a
// remote vision model or through local OCR and heuristics.
package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"dance-poster/api/internal/ocr"
	"dance-poster/api/internal/ocr/types"
	"dance-poster/api/internal/parser"
	"dance-poster/api/internal/util"
)

type Mode string

const (
	ModeOCR Mode = "ocr"
	ModeAI  Mode = "ai"
)

// ParseMode accepts "ai" and treats everything else, including the legacy
// "free" and the empty string, as OCR.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeAI)) {
		return ModeAI
	}
	return ModeOCR
}

var ErrEmptyImage = errors.New("image is empty")

type Request struct {
	Image    []byte
	MIME     string
	Mode     Mode
	Provider string
}

type Extractor interface {
	Extract(ctx context.Context, req Request) (types.Result, error)
}

// Preflighter checks a request before any work is done and reports the
// provider that will actually serve it ("" for OCR).
type Preflighter interface {
	Preflight(req Request) (provider string, err error)
}

// Service is stateless across calls and safe for concurrent use.
type Service struct {
	Providers *ocr.Registry
	OCR       ocr.Recognizer
	Env       ocr.Env
	Now       func() time.Time
	Log       logrus.FieldLogger
}

func NewService(providers *ocr.Registry, recognizer ocr.Recognizer, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		Providers: providers,
		OCR:       recognizer,
		Env:       ocr.OSEnv,
		Now:       time.Now,
		Log:       log,
	}
}

func (s *Service) Extract(ctx context.Context, req Request) (types.Result, error) {
	if len(req.Image) == 0 {
		return types.Result{}, ErrEmptyImage
	}
	start := time.Now()
	log := s.Log.WithFields(logrus.Fields{
		"mode":       req.Mode,
		"request_id": util.RequestID(ctx),
	})

	if req.Mode != ModeAI {
		res, err := s.runOCR(ctx, req.Image)
		logOutcome(log, res, err, start)
		return res, err
	}

	p, err := s.provider(req)
	if err != nil {
		if IsConfigError(err) {
			log.WithError(err).Warn("provider not configured")
		}
		return types.Result{}, err
	}
	log = log.WithField("provider", p.Name())

	fields, err := s.runAI(ctx, p, req)
	var pe *ocr.ProviderError
	switch {
	case err == nil:
		res := types.Result{Fields: fields, Provenance: p.Name()}
		logOutcome(log, res, nil, start)
		return res, nil
	case errors.As(err, &pe) && pe.Kind == ocr.MissingCredential:
		cerr := &ConfigError{Provider: p.Name(), Key: pe.Key}
		log.WithError(cerr).Warn("provider not configured")
		return types.Result{}, cerr
	case errors.Is(err, ErrNoJSON):
		logOutcome(log, types.Result{}, err, start)
		return types.Result{}, err
	case IsQuotaOrRateLimit(err):
		log.WithError(err).Warn("provider quota exhausted, falling back to ocr")
		res, ocrErr := s.runOCR(ctx, req.Image)
		logOutcome(log, res, ocrErr, start)
		return res, ocrErr
	default:
		logOutcome(log, types.Result{}, err, start)
		return types.Result{}, err
	}
}

// Preflight resolves the provider of an AI request and verifies its
// credential is present. OCR requests always pass.
func (s *Service) Preflight(req Request) (string, error) {
	if req.Mode != ModeAI {
		return "", nil
	}
	p, err := s.provider(req)
	if err != nil {
		return "", err
	}
	return p.Name(), nil
}

func (s *Service) provider(req Request) (ocr.Provider, error) {
	p := s.Providers.Lookup(req.Provider)
	if p == nil {
		return nil, fmt.Errorf("no provider registered for %q", req.Provider)
	}
	if s.Env(p.CredentialKey()) == "" {
		return nil, &ConfigError{Provider: p.Name(), Key: p.CredentialKey()}
	}
	return p, nil
}

func (s *Service) runAI(ctx context.Context, p ocr.Provider, req Request) (types.Fields, error) {
	mime := util.PickMIME(req.MIME, "", req.Image)
	text, err := p.Invoke(ctx, base64.StdEncoding.EncodeToString(req.Image), mime)
	if err != nil {
		return types.Fields{}, err
	}
	raw := ExtractJSON(text)
	if raw == nil {
		return types.Fields{}, fmt.Errorf("%s: %w", p.Name(), ErrNoJSON)
	}
	return Sanitize(Normalize(raw), s.Now()), nil
}

func (s *Service) runOCR(ctx context.Context, image []byte) (types.Result, error) {
	if s.OCR == nil {
		return types.Result{}, &OCRError{Engine: "none", Err: errors.New("no OCR engine configured")}
	}
	text, err := s.OCR.Recognize(ctx, image)
	if err != nil {
		return types.Result{}, &OCRError{Engine: s.OCR.Name(), Err: err}
	}
	now := s.Now()
	return types.Result{
		Fields:     Sanitize(parser.Parse(text, now), now),
		Provenance: types.ProvenanceOCR,
	}, nil
}

func logOutcome(log logrus.FieldLogger, res types.Result, err error, start time.Time) {
	log = log.WithField("duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		log.WithError(err).Error("extraction failed")
		return
	}
	log.WithField("provenance", res.Provenance).Info("extraction done")
}
