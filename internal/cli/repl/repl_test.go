package repl

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) exec(args []string) error {
	r.calls = append(r.calls, args)
	return r.err
}

func newTestREPL(t *testing.T, input string, rec *recorder) (*REPL, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	r := New(rec.exec, []string{"student add", "student list", "summary"})
	r.history = NewHistoryFile(filepath.Join(t.TempDir(), "history"))
	r.SetIO(strings.NewReader(input), out)
	return r, out
}

func TestREPL_Run_Exit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"exit command", "exit\n"},
		{"quit command", "quit\n"},
		{"EOF", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			r, _ := newTestREPL(t, tt.input, rec)
			if err := r.Run(); err != nil {
				t.Errorf("Run() returned error: %v", err)
			}
			if len(rec.calls) != 0 {
				t.Errorf("unexpected calls: %v", rec.calls)
			}
		})
	}
}

func TestREPL_Run_EmptyLines(t *testing.T) {
	r, out := newTestREPL(t, "\n\n\nexit\n", &recorder{})
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out.String(), Prompt); n != 4 {
		t.Errorf("prompts = %d, want 4", n)
	}
}

func TestREPL_Run_ExecutesCommands(t *testing.T) {
	rec := &recorder{}
	r, _ := newTestREPL(t, "student add R1 \"Ann Lee\"\n  summary 2024-03-01  \nexit\n", rec)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"student", "add", "R1", "Ann Lee"},
		{"summary", "2024-03-01"},
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %q, want %q", rec.calls, want)
	}
	if got := r.History().Get(1); got != "summary 2024-03-01" {
		t.Errorf("history trimmed entry = %q", got)
	}
}

func TestREPL_Run_LastLineWithoutNewline(t *testing.T) {
	rec := &recorder{}
	r, _ := newTestREPL(t, "student list", rec)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if len(rec.calls) != 1 {
		t.Errorf("calls = %v", rec.calls)
	}
}

func TestREPL_Run_ErrorDoesNotStop(t *testing.T) {
	rec := &recorder{err: errors.New("server error: NotFound")}
	r, out := newTestREPL(t, "student list\nstudent list\n", rec)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if len(rec.calls) != 2 {
		t.Errorf("calls = %d, want 2", len(rec.calls))
	}
	if !strings.Contains(out.String(), "Error: server error: NotFound") {
		t.Errorf("output = %q", out.String())
	}
}

func TestREPL_Run_BadQuoting(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL(t, "student add R1 \"Ann\n", rec)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("calls = %v", rec.calls)
	}
	if !strings.Contains(out.String(), "unterminated") {
		t.Errorf("output = %q", out.String())
	}
}

func TestREPL_Run_Completion(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL(t, "student?\n", rec)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "student add\nstudent list\n") {
		t.Errorf("output = %q", out.String())
	}
	if len(rec.calls) != 0 {
		t.Errorf("completion should not execute: %v", rec.calls)
	}
}

func TestREPL_Run_History(t *testing.T) {
	r, out := newTestREPL(t, "student list\nhistory\n", &recorder{})
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "   1  student list\n   2  history\n") {
		t.Errorf("output = %q", out.String())
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"a b  c", []string{"a", "b", "c"}, false},
		{`course add CS101 "Intro to CS"`, []string{"course", "add", "CS101", "Intro to CS"}, false},
		{`x 'it"s'`, []string{"x", `it"s`}, false},
		{`x a\ b`, []string{"x", "a b"}, false},
		{`x ""`, []string{"x", ""}, false},
		{"\t", nil, false},
		{`x "open`, nil, true},
		{`x \`, nil, true},
	}
	for _, tt := range tests {
		got, err := SplitArgs(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("SplitArgs(%q) err = %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitArgs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
