// Package storage holds the persistence models and helpers shared by the
// concrete store backends.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lugondev/go-ammcore/internal/oplog"
	"github.com/lugondev/go-ammcore/pkg/types"
)

// OperationLogModel is the row form of an operation log entry.
type OperationLogModel struct {
	ID        string    `json:"id"`
	Pool      string    `json:"pool"`
	LogType   int16     `json:"log_type"`
	Data      []byte    `json:"data"`
	Succeeded bool      `json:"succeeded"`
	CreatedAt time.Time `json:"created_at"`
}

// FromEntry converts a log entry into its row form.
func FromEntry(e *oplog.Entry) *OperationLogModel {
	return &OperationLogModel{
		ID:        e.ID.String(),
		Pool:      e.Pool.String(),
		LogType:   int16(e.LogType),
		Data:      e.Data,
		Succeeded: e.Succeeded,
		CreatedAt: e.CreatedAt,
	}
}

// ToEntry converts a row back into a log entry.
func (m *OperationLogModel) ToEntry() (*oplog.Entry, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	pool, err := types.PubkeyFromBase58(m.Pool)
	if err != nil {
		return nil, err
	}
	return &oplog.Entry{
		ID:        id,
		Pool:      pool,
		LogType:   oplog.LogType(m.LogType),
		Data:      m.Data,
		Succeeded: m.Succeeded,
		CreatedAt: m.CreatedAt,
	}, nil
}

// PostgresBatchHelper provides reusable batch operations for PostgreSQL.
type PostgresBatchHelper struct {
	pool *pgxpool.Pool
}

// NewPostgresBatchHelper creates a new PostgreSQL batch helper.
func NewPostgresBatchHelper(pool *pgxpool.Pool) *PostgresBatchHelper {
	return &PostgresBatchHelper{
		pool: pool,
	}
}

// BatchInsert performs batch insert with the given queue function.
func (h *PostgresBatchHelper) BatchInsert(
	ctx context.Context,
	items int,
	queueFunc func(batch *pgx.Batch, index int),
) error {
	if items == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := 0; i < items; i++ {
		queueFunc(batch, i)
	}

	br := h.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < items; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}

	return br.Close()
}
