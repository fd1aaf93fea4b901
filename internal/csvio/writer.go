package csvio

import (
	"encoding/csv"
	"io"

	"github.com/ruralpay/payengine/internal/models"
)

var snapshotHeader = []string{"client", "available", "held", "total", "locked"}

// Writer encodes account snapshots as CSV.
type Writer struct {
	csv *csv.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteSnapshot writes the header followed by one line per account and
// flushes the underlying writer.
func (w *Writer) WriteSnapshot(rows []models.AccountRow) error {
	if err := w.csv.Write(snapshotHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.csv.Write(row.Fields()); err != nil {
			return err
		}
	}
	w.csv.Flush()
	return w.csv.Error()
}
