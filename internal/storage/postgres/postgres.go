// Package postgres implements the operation log store on PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lugondev/go-ammcore/internal/config"
	"github.com/lugondev/go-ammcore/internal/oplog"
	"github.com/lugondev/go-ammcore/internal/storage"
	"github.com/lugondev/go-ammcore/pkg/types"
)

// Repository is a pgx-backed oplog.Repository.
type Repository struct {
	pool  *pgxpool.Pool
	batch *storage.PostgresBatchHelper
}

// NewRepository connects, pings and migrates the operation log schema.
func NewRepository(ctx context.Context, cfg *config.PostgresConfig) (*Repository, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.ConnMaxLifetime) * time.Second
	}
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrator := NewMigrator(pool)
	if err := migrator.Up(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Repository{
		pool:  pool,
		batch: storage.NewPostgresBatchHelper(pool),
	}, nil
}

const insertEntryQuery = `
	INSERT INTO operation_logs (id, pool, log_type, data, succeeded, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO NOTHING
`

// SaveEntry persists one operation log entry.
func (r *Repository) SaveEntry(ctx context.Context, entry *oplog.Entry) error {
	m := storage.FromEntry(entry)
	_, err := r.pool.Exec(ctx, insertEntryQuery,
		m.ID, m.Pool, m.LogType, m.Data, m.Succeeded, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save operation log: %w", err)
	}
	return nil
}

// SaveEntryBatch persists many entries in a single round trip.
func (r *Repository) SaveEntryBatch(ctx context.Context, entries []*oplog.Entry) error {
	return r.batch.BatchInsert(ctx, len(entries), func(batch *pgx.Batch, i int) {
		m := storage.FromEntry(entries[i])
		batch.Queue(insertEntryQuery,
			m.ID, m.Pool, m.LogType, m.Data, m.Succeeded, m.CreatedAt,
		)
	})
}

// ListEntriesByPool returns the newest entries for one pool.
func (r *Repository) ListEntriesByPool(ctx context.Context, pool types.Pubkey, limit int) ([]*oplog.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, pool, log_type, data, succeeded, created_at
		FROM operation_logs
		WHERE pool = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, pool.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list operation logs: %w", err)
	}
	defer rows.Close()

	var entries []*oplog.Entry
	for rows.Next() {
		var m storage.OperationLogModel
		if err := rows.Scan(&m.ID, &m.Pool, &m.LogType, &m.Data, &m.Succeeded, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation log: %w", err)
		}
		entry, err := m.ToEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to decode operation log row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
