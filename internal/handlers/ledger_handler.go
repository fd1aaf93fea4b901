package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ruralpay/payengine/internal/csvio"
	"github.com/ruralpay/payengine/internal/models"
	"github.com/ruralpay/payengine/internal/services"
)

const maxUploadBytes = 64 << 20

type LedgerHandler struct {
	processor *services.Processor
	validator *services.ValidationHelper
	log       *zap.Logger
}

func NewLedgerHandler(processor *services.Processor, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{
		processor: processor,
		validator: services.NewValidationHelper(),
		log:       logger,
	}
}

// IngestCSV applies a CSV stream of events (type,client,tx,amount) in order.
// A malformed record stops the stream; events before it stay applied.
func (h *LedgerHandler) IngestCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	n, err := services.Fold(r.Context(), csvio.NewReader(r.Body), h.processor)
	if err != nil {
		h.log.Warn("ingest stopped", zap.Int("applied", n), zap.Error(err))

		var rerr *csvio.RecordError
		if errors.As(err, &rerr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error":   "Malformed record",
				"line":    rerr.Line,
				"cause":   rerr.Err.Error(),
				"applied": n,
			})
			return
		}
		services.SendErrorResponse(w, "Failed to read events", http.StatusBadRequest, err)
		return
	}

	h.log.Info("events ingested", zap.Int("applied", n))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"events":  n,
	})
}

// ApplyEvent applies a single JSON-encoded event.
func (h *LedgerHandler) ApplyEvent(w http.ResponseWriter, r *http.Request) {
	var ev models.Event

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&ev); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&ev); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	out := h.processor.Apply(ev)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"applied": out == services.OutcomeApplied,
		"outcome": out.String(),
	})
}

// ListAccounts returns the current snapshot as JSON, or as CSV when the
// client asks for text/csv.
func (h *LedgerHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	rows := h.processor.Snapshot()

	if strings.Contains(r.Header.Get("Accept"), "text/csv") {
		w.Header().Set("Content-Type", "text/csv")
		if err := csvio.NewWriter(w).WriteSnapshot(rows); err != nil {
			h.log.Error("write snapshot", zap.Error(err))
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"accounts": rows,
	})
}

func (h *LedgerHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "clientId"), 10, 16)
	if err != nil {
		services.SendErrorResponse(w, "Invalid client id", http.StatusBadRequest, nil)
		return
	}

	client := models.ClientID(id)
	acct, ok := h.processor.Account(client)
	if !ok {
		services.SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.AccountRow{Client: client, Account: acct})
}

func (h *LedgerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.processor.Stats())
}
