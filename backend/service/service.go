// Package service validates incoming log entries, routes them to exactly one
// backend and answers range and point queries over either backend.
package service

import (
	"fmt"
	"log/slog"

	"github.com/PhilHem/netlog/backend/models"
	"github.com/PhilHem/netlog/backend/storage"
)

// ErrInvalidBackend is returned for a selector other than db or txt.
var ErrInvalidBackend = storage.ErrUnknownBackend

type Service struct {
	stores map[storage.Backend]storage.Store
	log    *slog.Logger
}

// New wires the relational and text stores. A nil store leaves that backend
// unavailable.
func New(db, text storage.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	stores := make(map[storage.Backend]storage.Store, 2)
	if db != nil {
		stores[storage.BackendDB] = db
	}
	if text != nil {
		stores[storage.BackendText] = text
	}
	return &Service{stores: stores, log: log}
}

// resolve turns a selector into its store once, at the service boundary.
func (s *Service) resolve(selector string) (storage.Backend, storage.Store, error) {
	b, err := storage.ParseBackend(selector)
	if err != nil {
		return "", nil, err
	}
	st, ok := s.stores[b]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s backend is not configured", ErrInvalidBackend, b)
	}
	return b, st, nil
}

func views(entries []models.LogEntry) []models.LogView {
	out := make([]models.LogView, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.View())
	}
	return out
}
