package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/PhilHem/netlog/backend/metrics"
	"github.com/PhilHem/netlog/backend/models"
)

var _ Store = (*TextStore)(nil)

// ScanResult is the outcome of reading the whole text file.
type ScanResult struct {
	Entries  []models.LogEntry
	Warnings []*LineParseError
	// Missing is set when the file does not exist yet.
	Missing bool
}

// TextStore appends entries to a UTF-8 text file, one per line.
// A process must own a single TextStore per path: appends are serialized
// through its mutex.
type TextStore struct {
	path string
	mu   sync.Mutex
	log  *slog.Logger
}

func NewTextStore(path string, log *slog.Logger) *TextStore {
	if log == nil {
		log = slog.Default()
	}
	return &TextStore{path: path, log: log}
}

func (s *TextStore) Path() string {
	return s.path
}

func (s *TextStore) Insert(ctx context.Context, entry models.LogEntry) error {
	line, err := EncodeLine(entry)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrStorageWrite, s.path, err)
	}

	// One write per record so the line lands in a single append.
	if _, err := f.WriteString("\n" + line); err != nil {
		f.Close()
		return fmt.Errorf("%w: append %s: %v", ErrStorageWrite, s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrStorageWrite, s.path, err)
	}

	s.log.InfoContext(ctx, "log recorded in file", "source", "textstore", "path", s.path)
	return nil
}

// Scan reads and parses the whole file. Malformed lines are skipped and
// reported as warnings; they never fail the scan.
func (s *TextStore) Scan(ctx context.Context) (ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return ScanResult{}, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.ErrorContext(ctx, "log file could not be found", "source", "textstore", "path", s.path)
		return ScanResult{Entries: []models.LogEntry{}, Missing: true}, nil
	}
	if err != nil {
		return ScanResult{}, fmt.Errorf("%w: read %s: %v", ErrStorageRead, s.path, err)
	}

	res := ScanResult{Entries: []models.LogEntry{}}
	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		entry, err := DecodeLine(line, i+1)
		if err != nil {
			var perr *LineParseError
			if errors.As(err, &perr) {
				res.Warnings = append(res.Warnings, perr)
			}
			metrics.LineParseWarnings.Inc()
			s.log.WarnContext(ctx, "line could not be parsed", "source", "textstore", "line", line, "line_no", i+1, "error", err.Error())
			continue
		}
		res.Entries = append(res.Entries, entry)
	}

	return res, nil
}

func (s *TextStore) Range(ctx context.Context, r Range) ([]models.LogEntry, error) {
	return s.filter(ctx, func(e models.LogEntry) bool { return r.Contains(e.Timestamp) })
}

func (s *TextStore) ByIP(ctx context.Context, ip string) ([]models.LogEntry, error) {
	return s.filter(ctx, func(e models.LogEntry) bool { return e.SourceIP == ip })
}

func (s *TextStore) filter(ctx context.Context, keep func(models.LogEntry) bool) ([]models.LogEntry, error) {
	res, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.LogEntry, 0, len(res.Entries))
	for _, e := range res.Entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}
