package rest

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	domain "github.com/davidleathers/voice-outreach-backend/internal/domain/outcome"
	"github.com/davidleathers/voice-outreach-backend/internal/errors"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/eventlog"
	"github.com/davidleathers/voice-outreach-backend/internal/service/ingest"
	"github.com/davidleathers/voice-outreach-backend/internal/service/outcome"
	"github.com/davidleathers/voice-outreach-backend/internal/service/stats"
)

// Version is stamped at build time.
var Version = "dev"

// EventQueue decouples webhook acceptance from outcome processing.
type EventQueue interface {
	Enqueue(event domain.Event) bool
}

// Handler holds the service dependencies for the HTTP endpoints.
type Handler struct {
	ingester  *ingest.Ingester
	queue     EventQueue
	log       *eventlog.Log
	logger    *slog.Logger
	startedAt time.Time
}

// NewHandler builds the endpoint handler. queue may be nil when outcome
// processing is disabled (events are still recorded).
func NewHandler(ingester *ingest.Ingester, queue EventQueue, log *eventlog.Log, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		ingester:  ingester,
		queue:     queue,
		log:       log,
		logger:    logger,
		startedAt: time.Now(),
	}
}

type webhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	CallID  string `json:"callId"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// handleWebhook accepts a provider callback, records it, and hands it to the
// outcome pipeline. Malformed payloads are rejected without touching the log.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Error: "invalid JSON payload"})
		return
	}

	event, err := h.ingester.Ingest(r.Context(), raw)
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) && appErr.Code == "MISSING_CALL_ID" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Error: appErr.Message})
			return
		}
		// The event is already in the in-memory window; only the durable
		// write failed. Report the failure but keep the 200 path distinct.
		h.logger.ErrorContext(r.Context(), "event persistence failed",
			"call_id", event.ProviderCallID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Success: false, Error: "event accepted but not persisted"})
		return
	}

	if h.queue != nil {
		if !h.queue.Enqueue(event) {
			h.logger.WarnContext(r.Context(), "outcome queue full, event dropped from processing",
				"call_id", event.ProviderCallID)
		}
	}

	writeJSON(w, http.StatusOK, webhookResponse{
		Success: true,
		Message: "event received",
		CallID:  event.ProviderCallID,
	})
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	EventCount    int    `json:"event_count"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "healthy",
		Version:       Version,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		EventCount:    h.log.Count(),
	})
}

type logsResponse struct {
	Count int            `json:"count"`
	Logs  []domain.Event `json:"logs"`
}

func (h *Handler) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	events := h.log.Events()
	writeJSON(w, http.StatusOK, logsResponse{Count: len(events), Logs: events})
}

// handleGetStats computes statistics over the in-memory window. Once the
// window has evicted entries the numbers cover only the most recent 1000
// events; the durable sink holds the full history.
func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stats.Aggregate(h.log.Events()))
}

type deleteLogsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// handleDeleteLogs clears the in-memory window only. Durable sink contents
// are untouched.
func (h *Handler) handleDeleteLogs(w http.ResponseWriter, r *http.Request) {
	h.log.Reset()
	h.logger.InfoContext(r.Context(), "event log cleared", "request_id", RequestID(r.Context()))
	writeJSON(w, http.StatusOK, deleteLogsResponse{Success: true, Message: "event log cleared"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

var _ EventQueue = (*outcome.Consumer)(nil)
