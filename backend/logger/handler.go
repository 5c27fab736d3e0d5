package logger

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/PhilHem/netlog/backend/models"

	"gorm.io/gorm"
)

type ctxKey struct{}

// WithRequestID returns a context whose log records carry id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Handler writes every record as JSON to out and persists records at or
// above persistLevel into the diagnostics table.
type Handler struct {
	db           *gorm.DB
	jsonHandler  slog.Handler
	persistLevel slog.Level
	attrs        []slog.Attr
}

func NewHandler(db *gorm.DB, out io.Writer, persistLevel slog.Level) *Handler {
	return &Handler{
		db:           db,
		jsonHandler:  slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}),
		persistLevel: persistLevel,
		attrs:        []slog.Attr{},
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level,
// defaulting to warn.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelWarn
	}
	return l
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	reqID := RequestID(ctx)
	if reqID != "" {
		r = r.Clone()
		r.AddAttrs(slog.String("request_id", reqID))
	}

	// Write to stdout
	_ = h.jsonHandler.Handle(ctx, r)

	if h.db == nil || r.Level < h.persistLevel {
		return nil
	}

	attrs := make(map[string]any)
	var source string

	collect := func(a slog.Attr) {
		switch a.Key {
		case "source":
			source = a.Value.String()
		case "request_id":
		default:
			attrs[a.Key] = a.Value.Any()
		}
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(a)
		return true
	})

	var data string
	if len(attrs) > 0 {
		b, _ := json.Marshal(attrs)
		data = string(b)
	}

	entry := models.Diagnostic{
		CreatedAt: time.Now(),
		Level:     r.Level.String(),
		Message:   r.Message,
		Source:    source,
		RequestID: reqID,
		Data:      data,
	}

	return h.db.WithContext(ctx).Create(&entry).Error
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &Handler{
		db:           h.db,
		jsonHandler:  h.jsonHandler.WithAttrs(attrs),
		persistLevel: h.persistLevel,
		attrs:        newAttrs,
	}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return h
}

// CleanupOldDiagnostics removes diagnostics older than maxAge every interval
// until ctx is done.
func CleanupOldDiagnostics(ctx context.Context, db *gorm.DB, maxAge, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := PruneDiagnostics(db, time.Now().Add(-maxAge)); err != nil {
				slog.Error("failed to prune diagnostics", "source", "logger", "error", err.Error())
			}
		}
	}
}

// PruneDiagnostics deletes diagnostics created before cutoff.
func PruneDiagnostics(db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.Where("created_at < ?", cutoff).Delete(&models.Diagnostic{})
	return res.RowsAffected, res.Error
}
