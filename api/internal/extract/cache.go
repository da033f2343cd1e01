package extract

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"dance-poster/api/internal/ocr/types"
	"dance-poster/api/internal/util"
)

type CacheKey struct {
	ImageHash string
	Mode      Mode
	Provider  string
}

// Cache stores finished results. Find reports ok=false on a miss.
type Cache interface {
	Find(ctx context.Context, key CacheKey) (types.Result, bool, error)
	Save(ctx context.Context, key CacheKey, res types.Result) error
}

// Cached serves repeated images from a Cache. Cache failures are logged and
// never fail the extraction. When Next is a Preflighter its checks run before
// the lookup, so a cached answer never hides a missing credential.
type Cached struct {
	Next  Extractor
	Cache Cache
	Log   logrus.FieldLogger
}

func NewCached(next Extractor, cache Cache, log logrus.FieldLogger) *Cached {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Cached{Next: next, Cache: cache, Log: log}
}

func (c *Cached) Extract(ctx context.Context, req Request) (types.Result, error) {
	if c.Cache == nil || len(req.Image) == 0 {
		return c.Next.Extract(ctx, req)
	}
	provider := req.Provider
	if pf, ok := c.Next.(Preflighter); ok {
		name, err := pf.Preflight(req)
		if err != nil {
			return types.Result{}, err
		}
		provider = name
	}
	key := keyFor(req, provider)
	log := c.Log.WithFields(logrus.Fields{
		"request_id": util.RequestID(ctx),
		"mode":       key.Mode,
		"provider":   key.Provider,
	})

	if res, ok, err := c.Cache.Find(ctx, key); err != nil {
		log.WithError(err).Warn("cache lookup failed")
	} else if ok {
		log.Debug("cache hit")
		return res, nil
	}

	res, err := c.Next.Extract(ctx, req)
	if err != nil {
		return res, err
	}
	// An OCR fallback answers an AI request only for now; retry the provider next time.
	if key.Mode == ModeAI && res.Provenance == types.ProvenanceOCR {
		return res, nil
	}
	if err := c.Cache.Save(ctx, key, res); err != nil {
		log.WithError(err).Warn("cache save failed")
	}
	return res, nil
}

func keyFor(req Request, provider string) CacheKey {
	k := CacheKey{ImageHash: util.ImageHash(req.Image), Mode: ModeOCR}
	if req.Mode == ModeAI {
		k.Mode = ModeAI
		k.Provider = strings.ToLower(strings.TrimSpace(provider))
	}
	return k
}
