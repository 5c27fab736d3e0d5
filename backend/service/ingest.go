package service

import (
	"context"

	"github.com/PhilHem/netlog/backend/metrics"
	"github.com/PhilHem/netlog/backend/models"
	"github.com/PhilHem/netlog/backend/storage"
)

// Ingest validates in and writes it to the backend named by in.RecordType.
// Nothing is written when validation or backend resolution fails.
func (s *Service) Ingest(ctx context.Context, in models.LogInput) (storage.Backend, error) {
	entry, err := models.Validate(in)
	if err != nil {
		metrics.IngestedLogs.WithLabelValues("none", "invalid").Inc()
		s.log.WarnContext(ctx, "log rejected", "source", "ingest", "error", err.Error())
		return "", err
	}

	backend, st, err := s.resolve(in.RecordType)
	if err != nil {
		metrics.IngestedLogs.WithLabelValues("none", "invalid").Inc()
		s.log.WarnContext(ctx, "log rejected", "source", "ingest", "record_type", in.RecordType, "error", err.Error())
		return "", err
	}

	err = st.Insert(ctx, entry)
	metrics.IngestedLogs.WithLabelValues(string(backend), metrics.Status(err)).Inc()
	if err != nil {
		return backend, err
	}

	s.log.InfoContext(ctx, "log recorded", "source", "ingest", "backend", string(backend), "source_ip", entry.SourceIP)
	return backend, nil
}
