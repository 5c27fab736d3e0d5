package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/PhilHem/netlog/backend/models"
)

func TestEncodeLine(t *testing.T) {
	line, err := EncodeLine(models.LogEntry{
		SourceIP:    "10.0.0.1",
		Destination: "10.0.0.2",
		Timestamp:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}

	want := "[2024-01-01 10:00:00] IP: 10.0.0.1 -> 10.0.0.2"
	if line != want {
		t.Errorf("Expected %q, got %q", want, line)
	}
}

// RED: Test that values which would corrupt the line format are refused
func TestEncodeLine_RejectsUnencodable(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	cases := []models.LogEntry{
		{SourceIP: "10.0.0.1", Destination: "a\nb", Timestamp: ts},
		{SourceIP: "10.0.0.1\r", Destination: "b", Timestamp: ts},
		{SourceIP: "10.0.0.1", Destination: "x -> y", Timestamp: ts},
		{SourceIP: "1 -> 2.3.4", Destination: "y", Timestamp: ts},
		{SourceIP: "10.0.0.1", Destination: "  ", Timestamp: ts},
		{SourceIP: "10.0.0.1", Destination: "10.0.0.2 ", Timestamp: ts},
		{SourceIP: "10.0.0.1", Destination: "10.0.0.2\t", Timestamp: ts},
	}

	for _, c := range cases {
		_, err := EncodeLine(c)
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Expected ValidationError for %+v, got %v", c, err)
		}
	}
}

func TestDecodeLine(t *testing.T) {
	entry, err := DecodeLine("[2024-01-01 11:00:00] IP: 10.0.0.3 -> example.com:443", 3)
	if err != nil {
		t.Fatal(err)
	}

	if entry.SourceIP != "10.0.0.3" {
		t.Errorf("Expected source 10.0.0.3, got %q", entry.SourceIP)
	}
	if entry.Destination != "example.com:443" {
		t.Errorf("Expected destination example.com:443, got %q", entry.Destination)
	}
	if !entry.Timestamp.Equal(time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected timestamp %v", entry.Timestamp)
	}
}

func TestDecodeLine_Malformed(t *testing.T) {
	lines := []string{
		"[garbage]",
		"garbage",
		"[2024-01-01 10:00:00] 10.0.0.1 -> 10.0.0.2",
		"[2024-01-01 10:00:00] IP: 10.0.0.1 10.0.0.2",
		"[2024-01-01 10:00:00] IP: 10.0.0.1 -> 10.0.0.2 -> 10.0.0.3",
		"[not a time] IP: 10.0.0.1 -> 10.0.0.2",
		"[2024-01-01T10:00:00Z] IP: 10.0.0.1 -> 10.0.0.2",
	}

	for i, line := range lines {
		_, err := DecodeLine(line, i+1)

		var perr *LineParseError
		if !errors.As(err, &perr) {
			t.Errorf("Expected LineParseError for %q, got %v", line, err)
			continue
		}
		if perr.Line != i+1 || perr.Text != line {
			t.Errorf("Error should be keyed by the offending line, got %+v", perr)
		}
	}
}

// RED: Test that every encodable entry decodes to exactly the same fields
func TestEncodeDecode_RoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 9, 20, 43, 37, 0, time.UTC)
	cases := []models.LogEntry{
		{SourceIP: "192.168.1.10", Destination: "api.example.com", Timestamp: ts},
		{SourceIP: "192.168.1.10", Destination: " leading.example.com", Timestamp: ts},
		{SourceIP: "fe80::1%eth0", Destination: "[::1]:443", Timestamp: ts},
	}

	for _, in := range cases {
		line, err := EncodeLine(in)
		if err != nil {
			t.Fatal(err)
		}
		out, err := DecodeLine(line, 1)
		if err != nil {
			t.Fatal(err)
		}
		if out.SourceIP != in.SourceIP || out.Destination != in.Destination || !out.Timestamp.Equal(in.Timestamp) {
			t.Errorf("Round trip mismatch: %+v != %+v", out, in)
		}
	}

	// Trailing whitespace would be lost when the file is read back.
	_, err := EncodeLine(models.LogEntry{SourceIP: "192.168.1.10", Destination: "10.0.0.2 ", Timestamp: ts})
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "destination" {
		t.Errorf("Expected destination ValidationError for trailing space, got %v", err)
	}
}
