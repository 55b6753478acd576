package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresGateway stores each collection as one JSONB row, keyed by
// collection name. The row is replaced wholesale on every flush.
type PostgresGateway struct {
	pool *pgxpool.Pool
}

func NewPostgresGateway(ctx context.Context, databaseURL string) (*PostgresGateway, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	cfg.MinConns = 1
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = time.Hour
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	g := &PostgresGateway{pool: pool}
	if err := g.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return g, nil
}

func (g *PostgresGateway) ensureSchema(ctx context.Context) error {
	const q = `
		CREATE TABLE IF NOT EXISTS collection_snapshots (
			collection text PRIMARY KEY,
			data       jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := g.pool.Exec(ctx, q)
	return err
}

func (g *PostgresGateway) Save(ctx context.Context, collection string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s snapshot: %w", collection, err)
	}

	const q = `
		INSERT INTO collection_snapshots (collection, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (collection) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = now()`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := g.pool.Exec(ctx, q, collection, data); err != nil {
		return fmt.Errorf("failed to write %s snapshot: %w", collection, err)
	}
	return nil
}

func (g *PostgresGateway) LoadAll(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot

	if err := g.load(ctx, CollectionUsers, &snap.Users); err != nil {
		return nil, err
	}
	if err := g.load(ctx, CollectionLaptops, &snap.Laptops); err != nil {
		return nil, err
	}
	if err := g.load(ctx, CollectionBookings, &snap.Bookings); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (g *PostgresGateway) load(ctx context.Context, collection string, out any) error {
	const q = `SELECT data FROM collection_snapshots WHERE collection = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var data []byte
	err := g.pool.QueryRow(ctx, q, collection).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s snapshot: %w", collection, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s snapshot: %w", collection, err)
	}
	return nil
}

func (g *PostgresGateway) Close() {
	g.pool.Close()
}
