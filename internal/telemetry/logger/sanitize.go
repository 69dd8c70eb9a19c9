package logger

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

// MaxValueLength caps string attribute values in log output.
const MaxValueLength = 256

// untrustedKeys hold client-supplied bytes and are always quoted.
var untrustedKeys = map[string]bool{
	"line":    true,
	"payload": true,
	"field":   true,
}

// sanitizeAttr keeps client-supplied text from breaking the log format:
// long values are truncated and control characters are escaped.
func sanitizeAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if untrustedKeys[a.Key] || hasControl(s) {
			s = strconv.Quote(s)
		}
		if len(s) > MaxValueLength {
			s = s[:MaxValueLength] + "...(truncated)"
		}
		return slog.String(a.Key, s)

	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = sanitizeAttr(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// SanitizeString applies the same rules to a value before it is logged
// as part of a message.
func SanitizeString(s string) string {
	return sanitizeAttr(slog.String("", s)).Value.String()
}

func hasControl(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}
