package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/PhilHem/netlog/backend/models"

	"gorm.io/gorm"
)

// Columns are listed explicitly; scans are positional.
const (
	insertLogSQL  = "INSERT INTO logs (sourceIP, destination, timeStamp) VALUES (?, ?, ?)"
	selectLogsSQL = "SELECT sourceIP, destination, timeStamp FROM logs"
)

var _ Store = (*DBStore)(nil)

// DBStore keeps log entries in the relational logs table. Every operation
// acquires its own pooled connection and releases it before returning.
type DBStore struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewDBStore(db *gorm.DB, log *slog.Logger) *DBStore {
	if log == nil {
		log = slog.Default()
	}
	return &DBStore{db: db, log: log}
}

func (s *DBStore) Insert(ctx context.Context, entry models.LogEntry) error {
	err := s.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		err := conn.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(insertLogSQL, entry.SourceIP, entry.Destination, entry.Timestamp.UTC()).Error; err != nil {
				return fmt.Errorf("%w: insert log: %v", ErrStorageWrite, err)
			}
			return nil
		})
		if err != nil && !errors.Is(err, ErrStorageWrite) {
			return fmt.Errorf("%w: commit: %v", ErrStorageWrite, err)
		}
		return err
	})
	if err != nil {
		err = classify(err)
		s.log.ErrorContext(ctx, "failed to insert log", "source", "dbstore", "error", err.Error())
		return err
	}

	s.log.DebugContext(ctx, "db connection released", "source", "dbstore")
	return nil
}

func (s *DBStore) Range(ctx context.Context, r Range) ([]models.LogEntry, error) {
	if !r.Bounded() {
		return s.query(ctx, selectLogsSQL)
	}
	return s.query(ctx, selectLogsSQL+" WHERE timeStamp BETWEEN ? AND ?", r.Start.UTC(), r.End.UTC())
}

func (s *DBStore) ByIP(ctx context.Context, ip string) ([]models.LogEntry, error) {
	return s.query(ctx, selectLogsSQL+" WHERE sourceIP = ?", ip)
}

// Ping checks that a connection can be acquired.
func (s *DBStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageConnect, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageConnect, err)
	}
	return nil
}

func (s *DBStore) query(ctx context.Context, query string, args ...any) ([]models.LogEntry, error) {
	logs := []models.LogEntry{}

	err := s.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		rows, err := conn.Raw(query, args...).Rows()
		if err != nil {
			return fmt.Errorf("%w: query logs: %v", ErrStorageRead, err)
		}
		defer func() {
			if err := rows.Close(); err != nil {
				s.log.ErrorContext(ctx, "error while closing rows", "source", "dbstore", "error", err.Error())
			}
		}()

		for rows.Next() {
			var e models.LogEntry
			if err := rows.Scan(&e.SourceIP, &e.Destination, &e.Timestamp); err != nil {
				return fmt.Errorf("%w: scan log row: %v", ErrStorageRead, err)
			}
			e.Timestamp = e.Timestamp.UTC()
			logs = append(logs, e)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w: iterate rows: %v", ErrStorageRead, err)
		}
		return nil
	})
	if err != nil {
		err = classify(err)
		s.log.ErrorContext(ctx, "failed to query logs", "source", "dbstore", "error", err.Error())
		return nil, err
	}

	return logs, nil
}

// classify maps errors raised before a statement ran (pool acquisition,
// closed database) to ErrStorageConnect.
func classify(err error) error {
	if errors.Is(err, ErrStorageWrite) || errors.Is(err, ErrStorageRead) || errors.Is(err, ErrStorageConnect) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageConnect, err)
}
