package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func studentsTable() *Table {
	t := NewTable("ROLL", "NAME")
	t.AddRow("R1", "Ann")
	t.AddRow("R22", "Bo")
	return t
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON, false).(*JSONFormatter); !ok {
		t.Error("expected JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML, false).(*YAMLFormatter); !ok {
		t.Error("expected YAMLFormatter")
	}
	tf, ok := NewFormatter("unknown", true).(*TableFormatter)
	if !ok || !tf.NoHeaders {
		t.Errorf("expected TableFormatter with NoHeaders, got %#v", tf)
	}
}

func TestTableFormatter_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, studentsTable()); err != nil {
		t.Fatal(err)
	}
	want := "ROLL  NAME\nR1    Ann\nR22   Bo\n"
	if buf.String() != want {
		t.Errorf("got:\n%q\nwant:\n%q", buf.String(), want)
	}

	buf.Reset()
	if err := (&TableFormatter{NoHeaders: true}).Format(&buf, studentsTable()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "ROLL") {
		t.Errorf("headers should be omitted: %q", buf.String())
	}
}

func TestTableFormatter_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, NewTable("CODE", "TITLE")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "CODE  TITLE\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestTableFormatter_Struct(t *testing.T) {
	data := struct {
		Server  string        `json:"server"`
		Timeout time.Duration `json:"timeout"`
		Secret  string        `json:"-"`
		Empty   string
	}{Server: "127.0.0.1:5555", Timeout: 5 * time.Second, Secret: "x"}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"FIELD", "server", "127.0.0.1:5555", "timeout", "5s", "Empty", "-"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Secret") {
		t.Errorf("json:\"-\" field should be skipped:\n%s", out)
	}
}

func TestTableFormatter_MapSorted(t *testing.T) {
	var buf bytes.Buffer
	err := (&TableFormatter{NoHeaders: true}).Format(&buf, map[string]int{"b": 2, "a": 1})
	if err != nil {
		t.Fatal(err)
	}
	if buf.String() != "a  1\nb  2\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestTableFormatter_FallbackJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, []int{1, 2}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "1,") {
		t.Errorf("expected JSON fallback, got %q", buf.String())
	}
}

func TestJSONFormatter_TableRecords(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, studentsTable()); err != nil {
		t.Fatal(err)
	}
	var got []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if len(got) != 2 || got[0]["roll"] != "R1" || got[1]["name"] != "Bo" {
		t.Errorf("got %v", got)
	}
}

func TestJSONFormatter_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, NewTable("ROLL")); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("got %q, want []", buf.String())
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLFormatter{}).Format(&buf, studentsTable()); err != nil {
		t.Fatal(err)
	}
	var got []map[string]string
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML %q: %v", buf.String(), err)
	}
	if len(got) != 2 || got[1]["roll"] != "R22" {
		t.Errorf("got %v", got)
	}

	buf.Reset()
	if err := (&YAMLFormatter{}).Format(&buf, map[string]string{"server": "localhost"}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "server: localhost\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestTable_RecordsShortRow(t *testing.T) {
	tb := NewTable("A", "B")
	tb.AddRow("1")
	recs := tb.Records()
	if recs[0]["a"] != "1" || recs[0]["b"] != "" {
		t.Errorf("got %v", recs)
	}
}
