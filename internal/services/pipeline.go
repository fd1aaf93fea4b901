package services

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/ruralpay/payengine/internal/models"
)

// EventSource yields events in input order and returns io.EOF at the end of
// the stream.
type EventSource interface {
	Next() (models.Event, error)
}

// Fold applies every event from src to p on the calling goroutine. It stops
// at the first ingestion error, leaving earlier events applied.
func Fold(ctx context.Context, src EventSource, p *Processor) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		p.Apply(ev)
		n++
	}
}

// RunPipelined overlaps reading and applying: one goroutine reads events
// into a bounded channel while another applies them in order.
func RunPipelined(ctx context.Context, src EventSource, p *Processor, buffer int) (int, error) {
	if buffer < 1 {
		buffer = 1
	}
	events := make(chan models.Event, buffer)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(events)
		for {
			ev, err := src.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	n := 0
	g.Go(func() error {
		for ev := range events {
			p.Apply(ev)
			n++
		}
		return nil
	})

	err := g.Wait()
	return n, err
}
