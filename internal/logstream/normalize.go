package logstream

import (
	"encoding/json"
	"strings"
	"time"
)

// wireLogMessage is the structured shape the log channel emits when the
// backend wraps container output.
type wireLogMessage struct {
	Message string `json:"message"`
	Level   string `json:"level"`
}

// Normalize converts a raw websocket frame into a LogEntry. Frames arrive
// as text or binary; both are treated as UTF-8. A JSON {message, level}
// envelope is tried first, then the payload is taken as plain text. A
// leading RFC 3339 timestamp on a plain line becomes the entry timestamp;
// otherwise receivedAt is used.
func Normalize(payload []byte, receivedAt time.Time) LogEntry {
	text := strings.TrimRight(string(payload), "\r\n")

	var wire wireLogMessage
	if err := json.Unmarshal(payload, &wire); err == nil && wire.Message != "" {
		level := wire.Level
		if level == "" {
			level = "info"
		}
		return LogEntry{Timestamp: receivedAt, Message: wire.Message, Level: level}
	}

	if ts, rest, ok := splitLeadingTimestamp(text); ok {
		return LogEntry{Timestamp: ts, Message: rest, Level: "info"}
	}
	return LogEntry{Timestamp: receivedAt, Message: text, Level: "info"}
}

// splitLeadingTimestamp parses an RFC 3339 timestamp at the start of the
// line, the format docker emits with timestamps enabled.
func splitLeadingTimestamp(line string) (time.Time, string, bool) {
	first, rest, found := strings.Cut(line, " ")
	if !found {
		return time.Time{}, "", false
	}
	ts, err := time.Parse(time.RFC3339Nano, first)
	if err != nil {
		return time.Time{}, "", false
	}
	return ts, strings.TrimLeft(rest, " "), true
}
