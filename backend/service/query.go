package service

import (
	"context"
	"fmt"
	"time"

	"github.com/PhilHem/netlog/backend/metrics"
	"github.com/PhilHem/netlog/backend/models"
	"github.com/PhilHem/netlog/backend/storage"
)

// TimestampParseError reports a malformed query bound.
type TimestampParseError struct {
	Bound string
	Value string
}

func (e *TimestampParseError) Error() string {
	return fmt.Sprintf("%s %q does not match YYYY-MM-DD HH:MM:SS", e.Bound, e.Value)
}

// ParseRange parses the optional start and end bounds. Empty strings are
// absent bounds.
func ParseRange(start, end string) (storage.Range, error) {
	var r storage.Range
	if start != "" {
		t, err := models.ParseTimestamp(start)
		if err != nil {
			return r, &TimestampParseError{Bound: "start", Value: start}
		}
		r.Start = &t
	}
	if end != "" {
		t, err := models.ParseTimestamp(end)
		if err != nil {
			return r, &TimestampParseError{Bound: "end", Value: end}
		}
		r.End = &t
	}
	return r, nil
}

// Range returns the entries of source whose timestamp lies in [start, end].
// If either bound is empty every entry is returned.
func (s *Service) Range(ctx context.Context, source, start, end string) ([]models.LogView, error) {
	backend, st, err := s.resolve(source)
	if err != nil {
		return nil, err
	}

	r, err := ParseRange(start, end)
	if err != nil {
		return nil, err
	}
	if !r.Bounded() && (r.Start != nil || r.End != nil) {
		s.log.WarnContext(ctx, "only one range bound given, returning all logs", "source", "query", "start", start, "end", end)
	}

	began := time.Now()
	entries, err := st.Range(ctx, r)
	metrics.QueryDuration.WithLabelValues(string(backend), "range", metrics.Status(err)).Observe(time.Since(began).Seconds())
	if err != nil {
		return nil, err
	}

	return views(entries), nil
}

// ByIP returns the entries of source whose source IP equals ip exactly.
func (s *Service) ByIP(ctx context.Context, source, ip string) ([]models.LogView, error) {
	backend, st, err := s.resolve(source)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	entries, err := st.ByIP(ctx, ip)
	metrics.QueryDuration.WithLabelValues(string(backend), "ip", metrics.Status(err)).Observe(time.Since(began).Seconds())
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		s.log.WarnContext(ctx, "no logs found for IP", "source", "query", "backend", string(backend), "source_ip", ip)
	}
	return views(entries), nil
}
