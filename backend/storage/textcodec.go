package storage

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/PhilHem/netlog/backend/models"
)

const arrow = " -> "

// [2024-01-01 10:00:00] IP: 10.0.0.1 -> 10.0.0.2
var lineRe = regexp.MustCompile(`^\[([^\]]*)\] IP: (.+?) -> (.+)$`)

// LineParseError describes a text-file line that was skipped.
type LineParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *LineParseError) Error() string {
	return fmt.Sprintf("line %d could not be parsed: %s: %q", e.Line, e.Reason, e.Text)
}

// EncodeLine renders entry as one text-file line, without separator.
func EncodeLine(entry models.LogEntry) (string, error) {
	if strings.ContainsAny(entry.SourceIP+entry.Destination, "\r\n") {
		return "", &models.ValidationError{Field: "source_ip/destination", Reason: "must not contain line breaks"}
	}
	if strings.Contains(entry.SourceIP, arrow) || strings.Contains(entry.Destination, arrow) {
		return "", &models.ValidationError{Field: "source_ip/destination", Reason: "must not contain \" -> \""}
	}
	if strings.TrimSpace(entry.Destination) == "" {
		return "", &models.ValidationError{Field: "destination", Reason: "must not be empty for txt records"}
	}
	// Lines are trimmed on read.
	if strings.TrimRightFunc(entry.Destination, unicode.IsSpace) != entry.Destination {
		return "", &models.ValidationError{Field: "destination", Reason: "must not end with whitespace for txt records"}
	}

	return fmt.Sprintf("[%s] IP: %s%s%s",
		models.FormatTimestamp(entry.Timestamp), entry.SourceIP, arrow, entry.Destination), nil
}

// DecodeLine parses one trimmed, non-blank line. lineNo is only used for errors.
func DecodeLine(line string, lineNo int) (models.LogEntry, error) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return models.LogEntry{}, &LineParseError{Line: lineNo, Text: line, Reason: "expected [timestamp] IP: source -> destination"}
	}
	if strings.Contains(m[3], arrow) {
		return models.LogEntry{}, &LineParseError{Line: lineNo, Text: line, Reason: "more than one destination separator"}
	}

	ts, err := models.ParseTimestamp(m[1])
	if err != nil {
		return models.LogEntry{}, &LineParseError{Line: lineNo, Text: line, Reason: "bad timestamp"}
	}

	return models.LogEntry{
		SourceIP:    m[2],
		Destination: m[3],
		Timestamp:   ts,
	}, nil
}
