package ocr

import (
	"context"
	"os"
	"strings"
	"sync"
)

// Provider is a remote vision model that turns a poster image into free text.
type Provider interface {
	Name() string
	// CredentialKey is the environment variable the provider cannot run without.
	CredentialKey() string
	Invoke(ctx context.Context, imageB64, mime string) (string, error)
}

// Recognizer is a plain OCR engine.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Env looks up a credential at call time.
type Env func(key string) string

// OSEnv reads the process environment.
func OSEnv(key string) string { return strings.TrimSpace(os.Getenv(key)) }

// Selection is the extraction mode and provider remembered for a chat.
type Selection struct {
	Mode     string
	Provider string
}

// Manager keeps per-chat selections, falling back to a default.
type Manager struct {
	def Selection
	m   sync.Map // chatID -> Selection
}

func NewManager(def Selection) *Manager {
	return &Manager{def: def}
}

func (m *Manager) Get(chatID int64) Selection {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Selection)
	}
	return m.def
}

func (m *Manager) Set(chatID int64, s Selection) {
	m.m.Store(chatID, s)
}
