package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resume-matcher/internal/shared/telemetry"
)

// Postgres keeps entries in the cache_entries table. Expired rows are hidden
// from Get and removed by Sweep.
type Postgres struct {
	DB  *sql.DB
	Now func() time.Time
}

func (p *Postgres) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	const query = `
INSERT INTO cache_entries (key, value, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`
	if _, err := p.DB.ExecContext(ctx, query, key, value, p.now().Add(ttl)); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM cache_entries WHERE key = $1 AND expires_at > $2`
	var value []byte
	err := p.DB.QueryRowContext(ctx, query, key, p.now()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return value, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

// Sweep deletes expired rows and returns how many were removed.
func (p *Postgres) Sweep(ctx context.Context) (int64, error) {
	const query = `DELETE FROM cache_entries WHERE expires_at <= $1`
	res, err := p.DB.ExecContext(ctx, query, p.now())
	if err != nil {
		return 0, fmt.Errorf("cache sweep: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cache sweep rows affected: %w", err)
	}
	return n, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (p *Postgres) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.Sweep(ctx)
			if err != nil {
				if ctx.Err() == nil {
					telemetry.Error("cache.sweep_failed", map[string]any{"err": err})
				}
				continue
			}
			if n > 0 {
				telemetry.Info("cache.swept", map[string]any{"removed": n})
			}
		}
	}
}

var _ Store = (*Postgres)(nil)
