package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PhilHem/netlog/backend/models"
	"github.com/PhilHem/netlog/backend/storage"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	svc  *Service
	db   *gorm.DB
	text *storage.TextStore
}

func setup(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&models.NetworkLog{}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	text := storage.NewTextStore(filepath.Join(dir, "log_record.txt"), nil)
	return fixture{
		svc:  New(storage.NewDBStore(db, nil), text, nil),
		db:   db,
		text: text,
	}
}

func (f fixture) counts(t *testing.T) (dbRows int64, textLines int) {
	t.Helper()
	f.db.Model(&models.NetworkLog{}).Count(&dbRows)
	res, err := f.text.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return dbRows, len(res.Entries)
}

func input(ip, recordType string) models.LogInput {
	return models.LogInput{
		SourceIP:    ip,
		Destination: "10.0.0.2",
		Timestamp:   "2024-01-01 10:00:00",
		RecordType:  recordType,
	}
}

// RED: Test that each record lands only in its designated backend
func TestIngest_SingleBackendPerCall(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if b, err := f.svc.Ingest(ctx, input("10.0.0.1", "db")); err != nil || b != storage.BackendDB {
		t.Fatalf("db ingest failed: %v, %v", b, err)
	}
	if db, txt := f.counts(t); db != 1 || txt != 0 {
		t.Fatalf("Expected 1 db row and no text lines, got %d/%d", db, txt)
	}

	if b, err := f.svc.Ingest(ctx, input("10.0.0.1", "txt")); err != nil || b != storage.BackendText {
		t.Fatalf("txt ingest failed: %v, %v", b, err)
	}
	if db, txt := f.counts(t); db != 1 || txt != 1 {
		t.Fatalf("Expected 1 db row and 1 text line, got %d/%d", db, txt)
	}
}

// RED: Test that short source IPs are rejected before any write
func TestIngest_RejectsShortSourceIP(t *testing.T) {
	f := setup(t)

	for _, rt := range []string{"db", "txt"} {
		_, err := f.svc.Ingest(context.Background(), input("1.2.3", rt))
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Expected ValidationError for %s, got %v", rt, err)
		}
	}

	if db, txt := f.counts(t); db != 0 || txt != 0 {
		t.Errorf("Nothing should be stored, got %d/%d", db, txt)
	}
	if _, err := os.Stat(f.text.Path()); !os.IsNotExist(err) {
		t.Error("Text file should not be created by a rejected entry")
	}
}

func TestIngest_InvalidRecordType(t *testing.T) {
	f := setup(t)

	for _, rt := range []string{"", "csv", "DB"} {
		_, err := f.svc.Ingest(context.Background(), input("10.0.0.1", rt))
		if !errors.Is(err, ErrInvalidBackend) {
			t.Errorf("Expected ErrInvalidBackend for %q, got %v", rt, err)
		}
	}

	if db, txt := f.counts(t); db != 0 || txt != 0 {
		t.Errorf("Nothing should be stored, got %d/%d", db, txt)
	}
}

func TestIngest_UnconfiguredBackend(t *testing.T) {
	text := storage.NewTextStore(filepath.Join(t.TempDir(), "log_record.txt"), nil)
	svc := New(nil, text, nil)

	_, err := svc.Ingest(context.Background(), input("10.0.0.1", "db"))
	if !errors.Is(err, ErrInvalidBackend) {
		t.Errorf("Expected ErrInvalidBackend, got %v", err)
	}
}

// RED: Test that text round trip returns exactly the stored fields
func TestRange_TextRoundTrip(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	in := input("192.168.1.20", "txt")
	if _, err := f.svc.Ingest(ctx, in); err != nil {
		t.Fatal(err)
	}

	logs, err := f.svc.Range(ctx, "txt", in.Timestamp, in.Timestamp)
	if err != nil {
		t.Fatal(err)
	}
	want := models.LogView{SourceIP: in.SourceIP, Destination: in.Destination, Timestamp: in.Timestamp}
	if len(logs) != 1 || logs[0] != want {
		t.Errorf("Expected [%+v], got %+v", want, logs)
	}
}

func TestRange_BothBackendsAgree(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	stamps := []string{"2024-01-01 09:00:00", "2024-01-01 10:00:00", "2024-01-01 11:00:00"}
	for _, rt := range []string{"db", "txt"} {
		for _, ts := range stamps {
			in := input("10.0.0.1", rt)
			in.Timestamp = ts
			if _, err := f.svc.Ingest(ctx, in); err != nil {
				t.Fatal(err)
			}
		}
	}

	cases := []struct {
		start, end string
		want       int
	}{
		{"2024-01-01 10:00:00", "2024-01-01 11:00:00", 2},
		{"2024-01-01 11:00:00", "2024-01-01 10:00:00", 0},
		{"", "", 3},
		{"2024-01-01 10:30:00", "", 3},
	}
	for _, c := range cases {
		dbLogs, err := f.svc.Range(ctx, "db", c.start, c.end)
		if err != nil {
			t.Fatal(err)
		}
		txtLogs, err := f.svc.Range(ctx, "txt", c.start, c.end)
		if err != nil {
			t.Fatal(err)
		}
		if len(dbLogs) != c.want || len(txtLogs) != c.want {
			t.Errorf("[%s, %s]: expected %d, got db=%d txt=%d", c.start, c.end, c.want, len(dbLogs), len(txtLogs))
			continue
		}
		for i := range dbLogs {
			if dbLogs[i] != txtLogs[i] {
				t.Errorf("Backends disagree at %d: %+v vs %+v", i, dbLogs[i], txtLogs[i])
			}
		}
	}
}

func TestRange_MalformedBound(t *testing.T) {
	f := setup(t)

	for _, source := range []string{"db", "txt"} {
		_, err := f.svc.Range(context.Background(), source, "yesterday", "")
		var perr *TimestampParseError
		if !errors.As(err, &perr) || perr.Bound != "start" {
			t.Errorf("Expected start TimestampParseError for %s, got %v", source, err)
		}
	}
}

func TestRange_UnknownSource(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Range(context.Background(), "xml", "", "")
	if !errors.Is(err, ErrInvalidBackend) {
		t.Errorf("Expected ErrInvalidBackend, got %v", err)
	}
}

func TestByIP_EmptyListWhenNoMatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	if _, err := f.svc.Ingest(ctx, input("10.0.0.1", "db")); err != nil {
		t.Fatal(err)
	}

	for _, source := range []string{"db", "txt"} {
		logs, err := f.svc.ByIP(ctx, source, "10.9.9.9")
		if err != nil {
			t.Fatal(err)
		}
		if logs == nil || len(logs) != 0 {
			t.Errorf("Expected empty non-nil list for %s, got %#v", source, logs)
		}
	}

	logs, err := f.svc.ByIP(ctx, "db", "10.0.0.1")
	if err != nil || len(logs) != 1 {
		t.Errorf("Expected one db match, got %v, %v", logs, err)
	}
}

// RED: Test that a txt destination the file format cannot hold is refused, not altered
func TestIngest_TextRejectsTrailingWhitespace(t *testing.T) {
	f := setup(t)
	in := input("10.0.0.1", "txt")
	in.Destination = "10.0.0.2 "

	_, err := f.svc.Ingest(context.Background(), in)
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if _, err := os.Stat(f.text.Path()); !os.IsNotExist(err) {
		t.Error("Text file should not be created by a rejected entry")
	}
}
