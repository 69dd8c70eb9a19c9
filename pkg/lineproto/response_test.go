package lineproto

import (
	"bufio"
	"errors"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestResponse_Render(t *testing.T) {
	tests := []struct {
		name string
		resp Response
	}{
		{"ok", OK()},
		{"err_duplicate_key", Err("DuplicateKey")},
		{"rows_empty", Rows(nil)},
		{"rows_students", Rows([][]string{{"S1", "Alice"}, {"S2", "Bob"}})},
		{"rows_report", Rows([][]string{
			{"2024-03-01", "CS101", "Intro", "P"},
			{"2024-03-02", "CS101", "Intro", "L"},
		})},
		{"rows_flattened", Rows([][]string{{"S3", "Line one\nline two"}})},
		{"legacy_ok", OK().AsLegacy()},
		{"legacy_err", Err("NotFound").AsLegacy()},
	}

	g := newGolden(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.Assert(t, tt.name, tt.resp.Render())
		})
	}
}

func TestResponse_IsError(t *testing.T) {
	if OK().IsError() {
		t.Error("OK should not be an error")
	}
	if !Err("NotFound").IsError() {
		t.Error("Err should be an error")
	}
	if Rows(nil).IsError() {
		t.Error("rows should not be an error")
	}
}

func TestReadResponse_Status(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("OK\nERR:NotFound\nERR|DuplicateRecord\n"))

	resp, err := ReadResponse(r, false)
	if err != nil || resp.IsError() {
		t.Fatalf("first response = %+v, %v", resp, err)
	}

	resp, err = ReadResponse(r, false)
	var se *ServerError
	if !errors.As(err, &se) || se.Code != "NotFound" {
		t.Fatalf("second response error = %v", err)
	}
	if resp.Code != "NotFound" {
		t.Errorf("resp.Code = %q", resp.Code)
	}

	resp, err = ReadResponse(r, false)
	if !errors.As(err, &se) || se.Code != "DuplicateRecord" || !resp.Legacy {
		t.Fatalf("legacy error = %+v, %v", resp, err)
	}
}

func TestReadResponse_StatusStrict(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("OK|Recorded\n"))
	resp, err := ReadResponse(r, false)
	if err != nil || resp.IsError() || !resp.Legacy {
		t.Fatalf("legacy ok = %+v, %v", resp, err)
	}

	for _, in := range []string{"S1 | Alice\n", ".\n", "OKAY\n", "\n", "ok\n"} {
		r := bufio.NewReader(strings.NewReader(in))
		if _, err := ReadResponse(r, false); !errors.Is(err, ErrUnexpectedReply) {
			t.Errorf("ReadResponse(%q) error = %v, want ErrUnexpectedReply", in, err)
		}
	}
}

func TestReadResponse_Rows(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("S1 | Alice\r\nS2 | Bob\n.\n.\n"))

	resp, err := ReadResponse(r, true)
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	if len(resp.Rows) != 2 || resp.Rows[1][0] != "S2" || resp.Rows[1][1] != "Bob" {
		t.Errorf("rows = %q", resp.Rows)
	}

	resp, err = ReadResponse(r, true)
	if err != nil {
		t.Fatalf("empty stream error = %v", err)
	}
	if len(resp.Rows) != 0 {
		t.Errorf("empty stream rows = %q", resp.Rows)
	}
}

func TestReadResponse_RowsRoundTrip(t *testing.T) {
	want := [][]string{{"2024-03-01", "S1", "Alice", "P"}}
	r := bufio.NewReader(strings.NewReader(string(Rows(want).Render())))

	resp, err := ReadResponse(r, true)
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	if len(resp.Rows) != 1 || strings.Join(resp.Rows[0], ",") != "2024-03-01,S1,Alice,P" {
		t.Errorf("rows = %q", resp.Rows)
	}
}

func TestReadResponse_MissingSentinel(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("S1 | Alice\n"))
	if _, err := ReadResponse(r, true); !errors.Is(err, ErrMissingSentinel) {
		t.Errorf("error = %v, want ErrMissingSentinel", err)
	}
}

func TestReadResponse_StreamError(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("ERR:StoreError\n"))
	resp, err := ReadResponse(r, true)
	var se *ServerError
	if !errors.As(err, &se) || se.Code != "StoreError" || resp.Kind != KindStatus {
		t.Errorf("resp = %+v, err = %v", resp, err)
	}
}
