package lineproto

import (
	"errors"
	"fmt"
)

// Protocol error codes sent to clients as "ERR:<code>".
const (
	CodeBadOpcode          = "BadOpcode"
	CodeBadHex             = "BadHex"
	CodeBadPayload         = "BadPayload"
	CodeFieldCountMismatch = "FieldCountMismatch"
	CodeLineTooLong        = "LineTooLong"
	CodeServerFull         = "ServerFull"
	CodeRateLimited        = "RateLimited"
)

// ProtocolError reports a request line that could not be turned into a Command.
// It is always recoverable: the connection stays open.
type ProtocolError struct {
	Code   string
	Detail string
}

func (e *ProtocolError) Error() string {
	if e.Detail == "" {
		return "lineproto: " + e.Code
	}
	return "lineproto: " + e.Code + ": " + e.Detail
}

// Is matches another ProtocolError by code.
func (e *ProtocolError) Is(target error) bool {
	t, ok := target.(*ProtocolError)
	return ok && t.Code == e.Code
}

// Sentinel errors for errors.Is comparisons.
var (
	ErrBadOpcode          = &ProtocolError{Code: CodeBadOpcode}
	ErrBadHex             = &ProtocolError{Code: CodeBadHex}
	ErrBadPayload         = &ProtocolError{Code: CodeBadPayload}
	ErrFieldCountMismatch = &ProtocolError{Code: CodeFieldCountMismatch}
	ErrLineTooLong        = &ProtocolError{Code: CodeLineTooLong}
)

func protoErr(code, format string, args ...any) error {
	return &ProtocolError{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// ServerError is an "ERR:" status received by a client.
type ServerError struct {
	Code string
}

func (e *ServerError) Error() string {
	return "server error: " + e.Code
}

// ErrMissingSentinel is returned by ReadResponse when the stream ends before ".".
var ErrMissingSentinel = errors.New("lineproto: stream ended before sentinel")

// ErrUnexpectedReply is returned by ReadResponse when a status line is neither
// OK nor an error. The stream is out of step and should be dropped.
var ErrUnexpectedReply = errors.New("lineproto: unexpected reply")
