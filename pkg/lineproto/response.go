package lineproto

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Wire tokens of the response side.
const (
	StatusOK       = "OK"
	ErrPrefix      = "ERR:"
	Sentinel       = "."
	RowSeparator   = " | "
	legacyOK       = "OK|Recorded"
	legacyErrorTag = "ERR|"
)

// ResponseKind distinguishes status lines from row streams.
type ResponseKind int

const (
	KindStatus ResponseKind = iota
	KindRows
)

// Response is the reply to exactly one Command.
type Response struct {
	Kind ResponseKind
	// Code is empty for OK and holds the error code otherwise.
	Code string
	Rows [][]string
	// Legacy selects the ATT reply format.
	Legacy bool
}

// OK returns a success status.
func OK() Response {
	return Response{Kind: KindStatus}
}

// Err returns an error status with the given code.
func Err(code string) Response {
	return Response{Kind: KindStatus, Code: code}
}

// Rows returns a row stream. A nil or empty slice renders as the sentinel only.
func Rows(rows [][]string) Response {
	return Response{Kind: KindRows, Rows: rows}
}

// IsError reports whether r is an error status.
func (r Response) IsError() bool {
	return r.Kind == KindStatus && r.Code != ""
}

// AsLegacy returns r in the ATT reply format.
func (r Response) AsLegacy() Response {
	r.Legacy = true
	return r
}

// Render serializes r to wire bytes.
func (r Response) Render() []byte {
	var b strings.Builder
	r.render(&b)
	return []byte(b.String())
}

// WriteTo writes the rendered response to w.
func (r Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Render())
	return int64(n), err
}

func (r Response) render(b *strings.Builder) {
	if r.Kind == KindRows {
		for _, row := range r.Rows {
			for i, f := range row {
				if i > 0 {
					b.WriteString(RowSeparator)
				}
				b.WriteString(flatten(f))
			}
			b.WriteByte('\n')
		}
		b.WriteString(Sentinel + "\n")
		return
	}

	switch {
	case r.Legacy && r.Code == "":
		b.WriteString(legacyOK)
	case r.Legacy:
		b.WriteString(legacyErrorTag + r.Code)
	case r.Code == "":
		b.WriteString(StatusOK)
	default:
		b.WriteString(ErrPrefix + r.Code)
	}
	b.WriteByte('\n')
}

// flatten keeps a stored value on one line.
func flatten(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// ReadResponse reads one response from a server.
//
// For streaming opcodes it collects rows until the sentinel; an "ERR:" line in
// place of the first row ends the response early. An "ERR:" status is returned
// as a *ServerError alongside the response. Any other status line than
// "OK" or "OK|Recorded" yields ErrUnexpectedReply.
func ReadResponse(r *bufio.Reader, streaming bool) (Response, error) {
	first, err := readLine(r)
	if err != nil {
		return Response{}, err
	}

	if code, ok := strings.CutPrefix(first, ErrPrefix); ok {
		return Err(code), &ServerError{Code: code}
	}
	if code, ok := strings.CutPrefix(first, legacyErrorTag); ok {
		return Err(code).AsLegacy(), &ServerError{Code: code}
	}
	if !streaming {
		switch first {
		case StatusOK:
			return OK(), nil
		case legacyOK:
			return OK().AsLegacy(), nil
		}
		return Response{}, fmt.Errorf("%w: %q", ErrUnexpectedReply, truncate(first, 32))
	}

	var rows [][]string
	line := first
	for line != Sentinel {
		rows = append(rows, strings.Split(line, RowSeparator))
		line, err = readLine(r)
		if err == io.EOF {
			return Rows(rows), ErrMissingSentinel
		}
		if err != nil {
			return Rows(rows), err
		}
	}
	return Rows(rows), nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
