package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// TimestampLayout is the wire and text-file format of log timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// MinSourceIPLength is the length in characters of the shortest dotted IPv4
// address ("0.0.0.0").
const MinSourceIPLength = 7

// LogEntry is one network event record.
type LogEntry struct {
	SourceIP    string
	Destination string
	Timestamp   time.Time
}

// LogInput is a log entry as it arrives on the wire, before validation.
// RecordType selects the backend and is never persisted.
type LogInput struct {
	SourceIP    string `json:"source_ip"`
	Destination string `json:"destination"`
	Timestamp   string `json:"timestamp"`
	RecordType  string `json:"record_type"`
}

// LogView is the normalized query result shape shared by both backends.
type LogView struct {
	SourceIP    string `json:"source_ip"`
	Destination string `json:"destination"`
	Timestamp   string `json:"timestamp"`
}

// NetworkLog maps the logs table. Column order matters: rows are read positionally.
type NetworkLog struct {
	SourceIP    string    `gorm:"column:sourceIP;type:varchar(64);not null;index"`
	Destination string    `gorm:"column:destination;type:varchar(255)"`
	TimeStamp   time.Time `gorm:"column:timeStamp;type:datetime;index"`
}

func (NetworkLog) TableName() string {
	return "logs"
}

// ValidationError reports a candidate entry rejected before any storage attempt.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ParseTimestamp parses s under TimestampLayout. The result is in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}

// FormatTimestamp renders t under TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Validate turns a wire input into a LogEntry.
func Validate(in LogInput) (LogEntry, error) {
	if utf8.RuneCountInString(in.SourceIP) < MinSourceIPLength {
		return LogEntry{}, &ValidationError{
			Field:  "source_ip",
			Reason: fmt.Sprintf("must be at least %d characters", MinSourceIPLength),
		}
	}

	ts, err := ParseTimestamp(in.Timestamp)
	if err != nil {
		return LogEntry{}, &ValidationError{
			Field:  "timestamp",
			Reason: fmt.Sprintf("%q does not match YYYY-MM-DD HH:MM:SS", in.Timestamp),
		}
	}

	return LogEntry{
		SourceIP:    in.SourceIP,
		Destination: in.Destination,
		Timestamp:   ts,
	}, nil
}

// View returns the normalized representation of e.
func (e LogEntry) View() LogView {
	return LogView{
		SourceIP:    e.SourceIP,
		Destination: e.Destination,
		Timestamp:   FormatTimestamp(e.Timestamp),
	}
}
