package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/storage"
	"github.com/Balaji2106/demo-autoremediation/internal/ingest"
	"github.com/Balaji2106/demo-autoremediation/internal/remedy"
)

type errorResponse struct {
	Error errorBody `json:"error"`
}
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
type dataResponse struct {
	Data any `json:"data"`
}

const (
	errCodeBadRequest    = "BAD_REQUEST"
	errCodeUnauthorized  = "UNAUTHORIZED"
	errCodeNotFound      = "NOT_FOUND"
	errCodeInternalError = "INTERNAL_ERROR"
)

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}})
}

func jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dataResponse{Data: data})
}

func jsonCreated(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(dataResponse{Data: data})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]string{"status": "ok"})
}

// handleWebhook receives a failure event from an upstream platform. The
// payload body is source-specific JSON; unknown sources are accepted and
// normalized generically.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	source := domain.ParseSource(chi.URLParam(r, "source"))

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "body must be a JSON object")
		return
	}

	result, err := s.ingest.Process(r.Context(), domain.FailureEvent{
		Source:     source,
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Error("failed to process failure event", "source", source, "error", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to process event")
		return
	}

	switch result.Outcome {
	case ingest.OutcomeCreated:
		jsonCreated(w, result)
	default:
		jsonOK(w, result)
	}
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ticketID")
	t, err := s.tickets.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrTicketNotFound) {
			jsonError(w, http.StatusNotFound, errCodeNotFound, "ticket not found")
			return
		}
		s.log.Error("failed to get ticket", "ticket_id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	entries, err := s.audit.ListByTicket(r.Context(), id)
	if err != nil {
		s.log.Error("failed to load audit trail", "ticket_id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonOK(w, map[string]any{"ticket": t, "audit_trail": entries})
}

// handleGetTicketByRun answers the dedup lookup: which ticket owns a run id.
// Absence is a normal answer, not an error.
func (s *Server) handleGetTicketByRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	t, err := s.tickets.GetByRunID(r.Context(), runID)
	if err != nil {
		s.log.Error("failed to get ticket by run", "run_id", runID, "error", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if t == nil {
		jsonOK(w, map[string]any{"exists": false})
		return
	}
	jsonOK(w, map[string]any{"exists": true, "ticket_id": t.ID, "status": t.Status})
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ticketID")
	t, err := s.ingest.Acknowledge(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrTicketNotFound) {
			jsonError(w, http.StatusNotFound, errCodeNotFound, "ticket not found")
			return
		}
		s.log.Error("failed to acknowledge ticket", "ticket_id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	jsonOK(w, t)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 365 {
			jsonError(w, http.StatusBadRequest, errCodeBadRequest, "days must be an integer between 1 and 365")
			return
		}
		days = parsed
	}

	stats, err := remedy.CollectStats(r.Context(), s.audit, days)
	if err != nil {
		s.log.Error("failed to collect remediation stats", "error", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	jsonOK(w, stats)
}
