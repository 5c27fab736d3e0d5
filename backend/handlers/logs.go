package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/PhilHem/netlog/backend/models"
	"github.com/PhilHem/netlog/backend/service"
)

type LogsResponse struct {
	Logs []models.LogView `json:"logs"`
}

type CreateLogResponse struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

// LogsHandler serves ingestion and query endpoints.
//
// Both query endpoints answer 400 for a source other than db or txt.
type LogsHandler struct {
	svc     *service.Service
	maxBody int64
}

func NewLogsHandler(svc *service.Service, maxBody int64) *LogsHandler {
	return &LogsHandler{svc: svc, maxBody: maxBody}
}

func (h *LogsHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "API is working!"})
}

// CreateLog ingests a JSON encoded entry.
func (h *LogsHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	var in models.LogInput
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		slog.WarnContext(r.Context(), "invalid log body", "source", "handlers", "error", err.Error())
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "Invalid request body"})
		return
	}
	h.ingest(w, r, in)
}

// CreateLogForm ingests a form encoded entry.
func (h *LogsHandler) CreateLogForm(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "Invalid form"})
		return
	}
	h.ingest(w, r, models.LogInput{
		SourceIP:    r.PostForm.Get("source_ip"),
		Destination: r.PostForm.Get("destination"),
		Timestamp:   r.PostForm.Get("timestamp"),
		RecordType:  r.PostForm.Get("record_type"),
	})
}

func (h *LogsHandler) ingest(w http.ResponseWriter, r *http.Request, in models.LogInput) {
	backend, err := h.svc.Ingest(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CreateLogResponse{Message: "log is recorded", Type: string(backend)})
}

// GetLogs answers ?start=&end=&source=. Without both bounds every entry of
// the source is returned.
func (h *LogsHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	slog.InfoContext(r.Context(), "logs queried", "source", "handlers", "start", q.Get("start"), "end", q.Get("end"), "backend", source(r))

	logs, err := h.svc.Range(r.Context(), source(r), q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LogsResponse{Logs: logs})
}

// GetLogsByIP answers /logs/{source_ip}?source=.
func (h *LogsHandler) GetLogsByIP(w http.ResponseWriter, r *http.Request) {
	ip := r.PathValue("source_ip")
	slog.InfoContext(r.Context(), "logs queried by ip", "source", "handlers", "source_ip", ip, "backend", source(r))

	logs, err := h.svc.ByIP(r.Context(), source(r), ip)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LogsResponse{Logs: logs})
}

func source(r *http.Request) string {
	if s := r.URL.Query().Get("source"); s != "" {
		return s
	}
	return "db"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an error to exactly one response status.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	var perr *service.TimestampParseError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: verr.Error()})
	case errors.Is(err, service.ErrInvalidBackend):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "invalid record type. (db/txt)"})
	case errors.As(err, &perr):
		slog.ErrorContext(r.Context(), "bad query bound", "source", "handlers", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: perr.Error()})
	default:
		slog.ErrorContext(r.Context(), "request failed", "source", "handlers", "path", r.URL.Path, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: err.Error()})
	}
}
