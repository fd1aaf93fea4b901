// Command payengine replays a CSV file of ledger events and prints the
// resulting account balances as CSV on stdout.
//
//	payengine transactions.csv > accounts.csv
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ruralpay/payengine/internal/config"
	"github.com/ruralpay/payengine/internal/csvio"
	"github.com/ruralpay/payengine/internal/logging"
	"github.com/ruralpay/payengine/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("payengine", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	envFile := flags.String("config", ".env", "optional config file")
	flags.String("mode", config.ModeFold, "processing mode: fold or pipelined")
	flags.Int("buffer", 1024, "event buffer size in pipelined mode")
	flags.String("sink", config.SinkCSV, "additional snapshot export: csv, postgres or redis")
	flags.String("log-level", "info", "log level")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: payengine [flags] <transactions.csv>")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return 1
	}
	if flags.NArg() < 1 {
		flags.Usage()
		return 1
	}

	for key, name := range map[string]string{
		"engine.mode":   "mode",
		"engine.buffer": "buffer",
		"output.sink":   "sink",
		"log.level":     "log-level",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			fmt.Fprintf(stderr, "bind flag %s: %v\n", name, err)
			return 1
		}
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger, err := logging.New(cfg.LogLevel, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer logger.Sync()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	if err := process(ctx, cfg, flags.Arg(0), runID, stdout, logger); err != nil {
		logger.Error("run failed", zap.Error(err))
		return 1
	}
	return 0
}

func process(ctx context.Context, cfg *config.Config, path, runID string, stdout io.Writer, logger *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	p := services.NewProcessor(logger)
	n, err := services.Run(ctx, cfg, csvio.NewReader(f), p)
	if err != nil {
		if errors.Is(err, csvio.ErrMalformedRecord) {
			return fmt.Errorf("%s: %w", path, err)
		}
		return err
	}

	rows := p.Snapshot()
	if err := services.NewCSVSink(stdout).Export(ctx, runID, rows); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	if cfg.Sink != config.SinkCSV {
		sink, closeSink, err := services.OpenSink(ctx, cfg, stdout)
		if err != nil {
			return fmt.Errorf("open %s sink: %w", cfg.Sink, err)
		}
		defer closeSink()
		if err := sink.Export(ctx, runID, rows); err != nil {
			return fmt.Errorf("export to %s: %w", cfg.Sink, err)
		}
	}

	st := p.Stats()
	logger.Info("run complete",
		zap.Int("events", n),
		zap.Int("accounts", st.Accounts),
		zap.Any("outcomes", st.Outcomes),
		zap.String("mode", cfg.Mode),
		zap.String("sink", cfg.Sink),
	)
	return nil
}
