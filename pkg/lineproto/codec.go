package lineproto

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// FieldSeparator joins payload fields before hex encoding.
const FieldSeparator = "|"

// legacyPrefix starts every line of the ATT framing.
const legacyPrefix = string(OpAttend) + "|"

// Command is a parsed request line.
type Command struct {
	Op     Opcode
	Fields []string
	// Legacy is set for commands that arrived in the ATT framing.
	Legacy bool
}

// Field returns the i-th field or "" when absent.
func (c Command) Field(i int) string {
	if i < 0 || i >= len(c.Fields) {
		return ""
	}
	return c.Fields[i]
}

// EncodeHex hex-encodes b byte for byte. The output is lowercase and 2*len(b) long.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeHex decodes an even-length string of case-insensitive hex digits.
func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, protoErr(CodeBadHex, "%v", err)
	}
	return b, nil
}

// SplitFields splits decoded payload text on '|'. An empty payload has zero fields.
func SplitFields(payload string) []string {
	if payload == "" {
		return nil
	}
	return strings.Split(payload, FieldSeparator)
}

// JoinFields is the inverse of SplitFields.
func JoinFields(fields []string) string {
	return strings.Join(fields, FieldSeparator)
}

// IsLegacy reports whether line uses the ATT framing.
func IsLegacy(line string) bool {
	return strings.HasPrefix(line, legacyPrefix)
}

// Parse parses one request line (with or without its terminator) in the standard framing.
func Parse(line string) (Command, error) {
	line = trimLine(line)

	token, payload, _ := strings.Cut(line, " ")
	if token == "" {
		return Command{}, protoErr(CodeBadOpcode, "missing opcode")
	}
	op := Opcode(token)
	if !op.Known() {
		return Command{}, protoErr(CodeBadOpcode, "unknown opcode %q", truncate(token, 32))
	}

	raw, err := DecodeHex(payload)
	if err != nil {
		return Command{}, err
	}
	text, err := payloadText(raw)
	if err != nil {
		return Command{}, err
	}

	fields := SplitFields(text)
	if want := op.Arity(); len(fields) != want {
		return Command{}, protoErr(CodeFieldCountMismatch, "%s needs %d fields, got %d", op, want, len(fields))
	}

	return Command{Op: op, Fields: fields}, nil
}

// ParseLegacy parses an ATT|HEXROLL|HEXCOURSE|HEXTIMESTAMP|HEXSTATUS line.
//
// The status field is kept as raw decoded bytes because the historical
// clients sent it either as an ASCII digit or as a literal byte value.
func ParseLegacy(line string) (Command, error) {
	line = trimLine(line)
	if !IsLegacy(line) {
		return Command{}, protoErr(CodeBadOpcode, "not an ATT line")
	}

	parts := strings.Split(strings.TrimPrefix(line, legacyPrefix), FieldSeparator)
	if len(parts) != legacyArity {
		return Command{}, protoErr(CodeFieldCountMismatch, "ATT needs %d fields, got %d", legacyArity, len(parts))
	}

	fields := make([]string, legacyArity)
	for i, part := range parts {
		raw, err := DecodeHex(part)
		if err != nil {
			return Command{}, err
		}
		if i == legacyArity-1 {
			fields[i] = string(raw)
			continue
		}
		text, err := payloadText(raw)
		if err != nil {
			return Command{}, err
		}
		fields[i] = text
	}

	return Command{Op: OpAttend, Fields: fields, Legacy: true}, nil
}

// FormatRequest builds a request line, including the terminator.
// Fields must not contain the separator or line breaks, and their count
// must match the opcode's arity as Parse will see it.
func FormatRequest(op Opcode, fields ...string) (string, error) {
	if !op.Known() {
		return "", protoErr(CodeBadOpcode, "unknown opcode %q", op)
	}
	for _, f := range fields {
		if strings.ContainsAny(f, FieldSeparator+"\r\n") {
			return "", protoErr(CodeBadPayload, "field %q contains a reserved character", truncate(f, 32))
		}
	}
	payload := JoinFields(fields)
	if got, want := len(SplitFields(payload)), op.Arity(); got != want {
		return "", protoErr(CodeFieldCountMismatch, "%s needs %d fields, got %d", op, want, got)
	}
	if payload == "" {
		return string(op) + "\n", nil
	}
	return string(op) + " " + EncodeHex([]byte(payload)) + "\n", nil
}

// FormatLegacyAttend builds an ATT line as the historical terminal client did.
func FormatLegacyAttend(roll, code, timestamp string, status []byte) string {
	return legacyPrefix +
		EncodeHex([]byte(roll)) + FieldSeparator +
		EncodeHex([]byte(code)) + FieldSeparator +
		EncodeHex([]byte(timestamp)) + FieldSeparator +
		EncodeHex(status) + "\n"
}

// payloadText validates decoded bytes as single-line UTF-8 text.
func payloadText(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", protoErr(CodeBadPayload, "payload is not valid UTF-8")
	}
	text := string(raw)
	if strings.ContainsAny(text, "\r\n") {
		return "", protoErr(CodeBadPayload, "payload contains a line break")
	}
	return text, nil
}

func trimLine(line string) string {
	return strings.TrimRight(line, "\r\n\t ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
