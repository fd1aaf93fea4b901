package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ruralpay/payengine/internal/csvio"
	"github.com/ruralpay/payengine/internal/models"
)

// SnapshotSink receives the final account snapshot of a run. Sinks only
// write; nothing is read back into the processor.
type SnapshotSink interface {
	Export(ctx context.Context, runID string, rows []models.AccountRow) error
}

// CSVSink writes the snapshot in the client,available,held,total,locked format.
type CSVSink struct {
	w io.Writer
}

func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: w}
}

func (s *CSVSink) Export(_ context.Context, _ string, rows []models.AccountRow) error {
	return csvio.NewWriter(s.w).WriteSnapshot(rows)
}

// PostgresSink upserts the snapshot into account_snapshots, one row per
// client and run, inside a single transaction.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

const createSnapshotTable = `
	CREATE TABLE IF NOT EXISTS account_snapshots (
		run_id     TEXT          NOT NULL,
		client_id  INTEGER       NOT NULL,
		available  NUMERIC(24,4) NOT NULL,
		held       NUMERIC(24,4) NOT NULL,
		total      NUMERIC(24,4) NOT NULL,
		locked     BOOLEAN       NOT NULL,
		created_at TIMESTAMPTZ   NOT NULL,
		PRIMARY KEY (run_id, client_id)
	)`

// EnsureSchema creates the snapshot table if it does not exist yet.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createSnapshotTable)
	return err
}

func (s *PostgresSink) Export(ctx context.Context, runID string, rows []models.AccountRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, row := range rows {
		if err := s.insertRow(ctx, tx, runID, row, now); err != nil {
			return fmt.Errorf("export client %d: %w", row.Client, err)
		}
	}

	return tx.Commit()
}

func (s *PostgresSink) insertRow(ctx context.Context, tx *sql.Tx, runID string, row models.AccountRow, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO account_snapshots (run_id, client_id, available, held, total, locked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id, client_id) DO UPDATE
		SET available = EXCLUDED.available, held = EXCLUDED.held, total = EXCLUDED.total,
			locked = EXCLUDED.locked, created_at = EXCLUDED.created_at`,
		runID, int(row.Client),
		models.FormatAmount(row.Available), models.FormatAmount(row.Held), models.FormatAmount(row.Total),
		row.Locked, at)
	return err
}

// RedisSink stores each account as a hash under
// payengine:<run>:account:<client> and indexes the clients of a run in a set.
type RedisSink struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisSink(client *redis.Client, ttl time.Duration) *RedisSink {
	return &RedisSink{redis: client, ttl: ttl}
}

func accountKey(runID string, client models.ClientID) string {
	return fmt.Sprintf("payengine:%s:account:%d", runID, client)
}

func runIndexKey(runID string) string {
	return fmt.Sprintf("payengine:%s:clients", runID)
}

func (s *RedisSink) Export(ctx context.Context, runID string, rows []models.AccountRow) error {
	index := runIndexKey(runID)
	for _, row := range rows {
		key := accountKey(runID, row.Client)
		if err := s.redis.HSet(ctx, key,
			"available", models.FormatAmount(row.Available),
			"held", models.FormatAmount(row.Held),
			"total", models.FormatAmount(row.Total),
			"locked", strconv.FormatBool(row.Locked),
		).Err(); err != nil {
			return fmt.Errorf("export client %d: %w", row.Client, err)
		}
		if err := s.expire(ctx, key); err != nil {
			return err
		}
		if err := s.redis.SAdd(ctx, index, strconv.Itoa(int(row.Client))).Err(); err != nil {
			return fmt.Errorf("index client %d: %w", row.Client, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return s.expire(ctx, index)
}

func (s *RedisSink) expire(ctx context.Context, key string) error {
	if s.ttl <= 0 {
		return nil
	}
	return s.redis.Expire(ctx, key, s.ttl).Err()
}
