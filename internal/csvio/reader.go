// Package csvio reads ledger events from and writes account snapshots to
// CSV streams.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ruralpay/payengine/internal/models"
)

// ErrMalformedRecord matches every *RecordError.
var ErrMalformedRecord = errors.New("malformed record")

// RecordError reports an input record that could not be turned into an event.
type RecordError struct {
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

func (e *RecordError) Is(target error) bool { return target == ErrMalformedRecord }

var requiredColumns = []string{"type", "client", "tx"}

// Reader decodes events from a CSV stream with a header row naming the
// columns type, client, tx and (optionally) amount, in any order.
type Reader struct {
	csv    *csv.Reader
	cols   map[string]int
	header bool
}

func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	// Rows may stop short of the header, leaving the amount absent.
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &Reader{csv: cr}
}

// Next returns the next event, or io.EOF once the input is exhausted.
func (r *Reader) Next() (models.Event, error) {
	if !r.header {
		if err := r.readHeader(); err != nil {
			return models.Event{}, err
		}
	}

	rec, err := r.csv.Read()
	if err != nil {
		return models.Event{}, r.wrap(err)
	}
	line, _ := r.csv.FieldPos(0)

	ev, err := r.decode(rec)
	if err != nil {
		return models.Event{}, &RecordError{Line: line, Err: err}
	}
	return ev, nil
}

func (r *Reader) readHeader() error {
	rec, err := r.csv.Read()
	if err != nil {
		return r.wrap(err)
	}

	cols := make(map[string]int, len(rec))
	for i, name := range rec {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return &RecordError{Line: 1, Err: fmt.Errorf("header is missing column %q", name)}
		}
	}

	r.cols = cols
	r.header = true
	return nil
}

func (r *Reader) wrap(err error) error {
	if err == io.EOF {
		return io.EOF
	}
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &RecordError{Line: perr.Line, Err: perr.Err}
	}
	return fmt.Errorf("read events: %w", err)
}

func (r *Reader) field(rec []string, name string) (string, bool) {
	i, ok := r.cols[name]
	if !ok || i >= len(rec) {
		return "", false
	}
	return strings.TrimSpace(rec[i]), true
}

func (r *Reader) decode(rec []string) (models.Event, error) {
	if len(rec) > len(r.cols) {
		return models.Event{}, fmt.Errorf("expected at most %d fields, got %d", len(r.cols), len(rec))
	}

	var ev models.Event

	kind, ok := r.field(rec, "type")
	if !ok {
		return ev, errors.New("missing type")
	}
	// Unrecognised types are not a record fault; the processor ignores them.
	ev.Type = models.TxType(kind)

	client, ok := r.field(rec, "client")
	if !ok {
		return ev, errors.New("missing client")
	}
	c, err := strconv.ParseUint(client, 10, 16)
	if err != nil {
		return ev, fmt.Errorf("client %q: %w", client, err)
	}
	ev.Client = models.ClientID(c)

	tx, ok := r.field(rec, "tx")
	if !ok {
		return ev, errors.New("missing tx")
	}
	t, err := strconv.ParseUint(tx, 10, 32)
	if err != nil {
		return ev, fmt.Errorf("tx %q: %w", tx, err)
	}
	ev.Tx = models.TxID(t)

	if raw, ok := r.field(rec, "amount"); ok && raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return ev, fmt.Errorf("amount %q: %w", raw, err)
		}
		ev.Amount = &d
	}

	return ev, nil
}
