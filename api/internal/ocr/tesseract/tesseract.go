// Package tesseract runs the local tesseract binary over poster images.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"dance-poster/api/internal/ocr"
)

const (
	Name        = "tesseract"
	DefaultLang = "kor+eng"
)

// Runner lets tests stub the external command.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	log logrus.FieldLogger
}

func (r execRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	fields := logrus.Fields{
		"cmd":         name,
		"args":        strings.Join(args, " "),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		r.log.WithFields(fields).WithError(err).WithField("stderr", truncate(errb.String(), 8<<10)).Error("exec failed")
	} else {
		r.log.WithFields(fields).WithField("stdout_bytes", out.Len()).Debug("exec ok")
	}
	return out.Bytes(), errb.Bytes(), err
}

type Config struct {
	Binary      string
	Lang        string
	TessdataDir string
	PSM         int
}

type Engine struct {
	cfg    Config
	runner Runner
}

// New returns an engine backed by the real binary when runner is nil.
func New(cfg Config, runner Runner, log logrus.FieldLogger) *Engine {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = DefaultLang
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if runner == nil {
		runner = execRunner{log: log}
	}
	return &Engine{cfg: cfg, runner: runner}
}

func (e *Engine) Name() string { return Name }

// Recognize feeds the image on stdin: tesseract stdin stdout -l <lang>.
func (e *Engine) Recognize(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("tesseract: empty image")
	}
	args := []string{"stdin", "stdout", "-l", e.cfg.Lang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, image, e.cfg.Binary, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, truncate(msg, 512))
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return ocr.NormalizeText(string(out)), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
