package services

import (
	"context"
	"fmt"
	"io"

	"github.com/ruralpay/payengine/internal/config"
	"github.com/ruralpay/payengine/internal/database"
)

// Run feeds src into p using the mode named in cfg.
func Run(ctx context.Context, cfg *config.Config, src EventSource, p *Processor) (int, error) {
	if cfg.Mode == config.ModePipelined {
		return RunPipelined(ctx, src, p, cfg.Buffer)
	}
	return Fold(ctx, src, p)
}

// OpenSink connects the snapshot sink selected in cfg. The returned close
// function releases the underlying connection.
func OpenSink(ctx context.Context, cfg *config.Config, stdout io.Writer) (SnapshotSink, func() error, error) {
	nop := func() error { return nil }

	switch cfg.Sink {
	case config.SinkPostgres:
		db, err := database.InitDB(ctx)
		if err != nil {
			return nil, nop, err
		}
		sink := NewPostgresSink(db)
		if err := sink.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nop, fmt.Errorf("create snapshot table: %w", err)
		}
		return sink, db.Close, nil

	case config.SinkRedis:
		rdb, err := database.InitRedis(ctx)
		if err != nil {
			return nil, nop, err
		}
		return NewRedisSink(rdb, cfg.RedisTTL), rdb.Close, nil

	default:
		return NewCSVSink(stdout), nop, nil
	}
}
