// Package domain defines the core domain models for rollcall.
package domain

import (
	"bytes"
	"strings"
	"time"
)

// Status is the attendance status of one record.
type Status string

// Attendance statuses. The single-letter form is the stored and wire encoding.
const (
	StatusPresent Status = "P"
	StatusAbsent  Status = "A"
	StatusLate    Status = "L"
)

// DayLayout is the calendar-day format used on the wire and in storage.
const DayLayout = "2006-01-02"

// instantLayouts are tried in order by ParseInstant.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DayLayout,
}

// Record sources.
const (
	SourceMark   = "mark"
	SourceLegacy = "att"
)

// AttendanceRecord is one attendance mark for a (student, course) pair.
type AttendanceRecord struct {
	Roll       string
	Code       string
	Day        string    // YYYY-MM-DD
	RecordedAt time.Time // zero when the client only supplied a day
	Status     Status
	Source     string
}

// AttendanceEntry is a joined report row.
type AttendanceEntry struct {
	Day        string    `json:"day" yaml:"day"`
	Roll       string    `json:"roll" yaml:"roll"`
	Name       string    `json:"name" yaml:"name"`
	Code       string    `json:"code" yaml:"code"`
	Title      string    `json:"title" yaml:"title"`
	Status     Status    `json:"status" yaml:"status"`
	RecordedAt time.Time `json:"recorded_at,omitempty" yaml:"recorded_at,omitempty"`
}

// StatusCount is the number of records with a given status.
type StatusCount struct {
	Status Status `json:"status" yaml:"status"`
	Count  int    `json:"count" yaml:"count"`
}

// MarkPolicy controls how a mark is applied by the store.
type MarkPolicy struct {
	// AutoCreate creates unknown students and courses instead of failing with NotFound.
	AutoCreate bool
	// DailyUnique rejects a second record for the same (student, course, day).
	DailyUnique bool
}

// String returns the long name of the status.
func (s Status) String() string {
	switch s {
	case StatusPresent:
		return "Present"
	case StatusAbsent:
		return "Absent"
	case StatusLate:
		return "Late"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent || s == StatusLate
}

// ParseStatus parses the canonical status letter or its long name, ignoring case.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(s) {
	case "P", "PRESENT":
		return StatusPresent, nil
	case "A", "ABSENT":
		return StatusAbsent, nil
	case "L", "LATE":
		return StatusLate, nil
	default:
		return "", ErrInvalidStatus.WithDetails("got " + quoteShort(s))
	}
}

// DecodeLegacyStatus decodes the boolean status used by the ATT framing.
//
// A single byte is present when it is the digit '1' or the byte 0x01.
// Longer values are present when they contain '1' anywhere.
// Everything else is absent; the decoding never fails.
func DecodeLegacyStatus(raw []byte) Status {
	if len(raw) == 1 {
		if raw[0] == '1' || raw[0] == 1 {
			return StatusPresent
		}
		return StatusAbsent
	}
	if bytes.IndexByte(raw, '1') >= 0 {
		return StatusPresent
	}
	return StatusAbsent
}

// ParseDay validates a YYYY-MM-DD calendar day and returns its canonical form.
func ParseDay(s string) (string, error) {
	d, err := time.Parse(DayLayout, s)
	if err != nil {
		return "", ErrInvalidDate.WithDetails("got " + quoteShort(s)).WithCause(err)
	}
	return d.Format(DayLayout), nil
}

// ParseInstant parses a full timestamp. An explicit offset is kept so the
// calendar day can be taken where the mark happened; timestamps without one
// are UTC.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate.WithDetails("got " + quoteShort(s))
}

func quoteShort(s string) string {
	if len(s) > 32 {
		s = s[:32] + "..."
	}
	return "\"" + s + "\""
}
