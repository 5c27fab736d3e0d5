// Package storage holds the two interchangeable log backends: a relational
// table and an append-only text file.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PhilHem/netlog/backend/models"
)

var (
	ErrStorageConnect = errors.New("storage unreachable")
	ErrStorageWrite   = errors.New("storage write failed")
	ErrStorageRead    = errors.New("storage read failed")
	ErrUnknownBackend = errors.New("unknown backend")
)

// Backend selects which store an operation targets.
type Backend string

const (
	BackendDB   Backend = "db"
	BackendText Backend = "txt"
)

// ParseBackend resolves a selector string.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendDB, BackendText:
		return Backend(s), nil
	}
	return "", fmt.Errorf("%w %q (db/txt)", ErrUnknownBackend, s)
}

// Range is an inclusive time window. A nil bound means "not given".
type Range struct {
	Start *time.Time
	End   *time.Time
}

// Bounded reports whether both bounds are present. Any missing bound makes
// the query a full dump.
func (r Range) Bounded() bool {
	return r.Start != nil && r.End != nil
}

// Contains reports start <= t <= end. Unbounded ranges contain everything.
func (r Range) Contains(t time.Time) bool {
	if !r.Bounded() {
		return true
	}
	return !t.Before(*r.Start) && !t.After(*r.End)
}

// Store is implemented by every backend.
type Store interface {
	Insert(ctx context.Context, entry models.LogEntry) error
	Range(ctx context.Context, r Range) ([]models.LogEntry, error)
	ByIP(ctx context.Context, ip string) ([]models.LogEntry, error)
}
