package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/PhilHem/netlog/backend/models"

	"gorm.io/gorm"
)

type DiagnosticsResponse struct {
	Diagnostics []models.Diagnostic `json:"diagnostics"`
	Total       int64               `json:"total"`
	Page        int                 `json:"page"`
	PerPage     int                 `json:"per_page"`
}

// DiagnosticsHandler exposes the persisted warning and error records.
type DiagnosticsHandler struct {
	db *gorm.DB
}

func NewDiagnosticsHandler(db *gorm.DB) *DiagnosticsHandler {
	return &DiagnosticsHandler{db: db}
}

func (h *DiagnosticsHandler) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	diagnostics := []models.Diagnostic{}
	q := h.db.WithContext(r.Context()).Model(&models.Diagnostic{})

	// Pagination
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 50
	}

	// Filters
	if level := r.URL.Query().Get("level"); level != "" {
		q = q.Where("level = ?", level)
	}
	if source := r.URL.Query().Get("source"); source != "" {
		q = q.Where("source = ?", source)
	}
	if reqID := r.URL.Query().Get("request_id"); reqID != "" {
		q = q.Where("request_id = ?", reqID)
	}
	if search := r.URL.Query().Get("search"); search != "" {
		q = q.Where("message LIKE ? OR data LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		writeError(w, r, err)
		return
	}

	offset := (page - 1) * perPage
	if err := q.Order("created_at DESC").Offset(offset).Limit(perPage).Find(&diagnostics).Error; err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, DiagnosticsResponse{
		Diagnostics: diagnostics,
		Total:       total,
		Page:        page,
		PerPage:     perPage,
	})
}

func (h *DiagnosticsHandler) GetDiagnosticSources(w http.ResponseWriter, r *http.Request) {
	sources := []string{}
	err := h.db.WithContext(r.Context()).Model(&models.Diagnostic{}).
		Distinct("source").Where("source != ''").Pluck("source", &sources).Error
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health answers ok, or 503 when the relational backend is unreachable.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
