package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dance-poster/api/internal/extract"
	"dance-poster/api/internal/ocr/types"
)

var ErrNotFound = sql.ErrNoRows

const schema = `
create table if not exists poster_extractions (
  id          bigserial primary key,
  created_at  timestamptz not null default now(),
  image_hash  text not null,
  mode        text not null,
  provider    text not null default '',
  provenance  text not null,
  fields_json jsonb not null,
  unique (image_hash, mode, provider)
)`

// ExtractionRepo caches finished extractions by image hash, mode and provider.
type ExtractionRepo struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewExtractionRepo(db *sql.DB, ttl time.Duration) *ExtractionRepo {
	return &ExtractionRepo{DB: db, TTL: ttl}
}

func (r *ExtractionRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

type ExtractionRow struct {
	ID        int64
	CreatedAt time.Time
	ImageHash string
	Mode      string
	Provider  string
	Result    types.Result
}

// FindByHash returns the newest row for the key. Rows older than maxAge
// (when maxAge > 0) are reported as ErrNotFound.
func (r *ExtractionRepo) FindByHash(ctx context.Context, imageHash, mode, provider string, maxAge time.Duration) (*ExtractionRow, error) {
	const q = `
select id, created_at, image_hash, mode, provider, provenance, fields_json
from poster_extractions
where image_hash = $1 and mode = $2 and provider = $3
order by created_at desc
limit 1`
	var (
		row ExtractionRow
		js  []byte
	)
	err := r.DB.QueryRowContext(ctx, q, imageHash, mode, provider).
		Scan(&row.ID, &row.CreatedAt, &row.ImageHash, &row.Mode, &row.Provider, &row.Result.Provenance, &js)
	if err != nil {
		return nil, err
	}
	if maxAge > 0 && time.Since(row.CreatedAt) > maxAge {
		return nil, ErrNotFound
	}
	if err := json.Unmarshal(js, &row.Result.Fields); err != nil {
		// a broken row is as good as a miss
		return nil, ErrNotFound
	}
	return &row, nil
}

// Upsert stores res, replacing any row with the same key.
func (r *ExtractionRepo) Upsert(ctx context.Context, imageHash, mode, provider string, res types.Result) error {
	js, err := json.Marshal(res.Fields)
	if err != nil {
		return err
	}
	const q = `
insert into poster_extractions (image_hash, mode, provider, provenance, fields_json)
values ($1, $2, $3, $4, $5)
on conflict (image_hash, mode, provider) do update
set provenance = excluded.provenance,
    fields_json = excluded.fields_json,
    created_at = now()`
	_, err = r.DB.ExecContext(ctx, q, imageHash, mode, provider, res.Provenance, js)
	return err
}

// PurgeOlderThan deletes cache rows past their usefulness.
func (r *ExtractionRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	res, err := r.DB.ExecContext(ctx, `delete from poster_extractions where created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

// Find implements extract.Cache.
func (r *ExtractionRepo) Find(ctx context.Context, key extract.CacheKey) (types.Result, bool, error) {
	row, err := r.FindByHash(ctx, key.ImageHash, string(key.Mode), key.Provider, r.TTL)
	if errors.Is(err, ErrNotFound) {
		return types.Result{}, false, nil
	}
	if err != nil {
		return types.Result{}, false, err
	}
	return row.Result, true, nil
}

// Save implements extract.Cache.
func (r *ExtractionRepo) Save(ctx context.Context, key extract.CacheKey, res types.Result) error {
	return r.Upsert(ctx, key.ImageHash, string(key.Mode), key.Provider, res)
}
