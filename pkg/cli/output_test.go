package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

type testTable struct {
	header []string
	rows   [][]string
}

func (t testTable) Header() []string { return t.header }
func (t testTable) Rows() [][]string { return t.rows }

var providersTable = testTable{
	header: []string{"NAME", "TYPE", "HEALTHY"},
	rows: [][]string{
		{"ollama", "ollama", "true"},
		{"openai", "openai", "false"},
	},
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
			var cfgErr *ConfigError
			if tt.wantErr && !errors.As(err, &cfgErr) {
				t.Errorf("expected ConfigError, got %T", err)
			}
		})
	}
}

func TestTextFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, "test message"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "test message\n" {
		t.Errorf("FormatTo() = %q", buf.String())
	}
}

func TestTextFormatter_Table(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, providersTable); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "NAME") || !strings.Contains(lines[1], "ollama") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if got := strings.Index(lines[0], "TYPE"); got != 8 {
		t.Errorf("TYPE column at %d, want 8:\n%s", got, buf.String())
	}
	if lines[1] != "ollama  ollama  true" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name   string
		data   any
		indent bool
	}{
		{"string", "test", false},
		{"map with indent", map[string]string{"key": "value"}, true},
		{"vector", []float64{0.1, 0.2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &JSONFormatter{Indent: tt.indent}
			if err := f.FormatTo(buf, tt.data); err != nil {
				t.Fatalf("FormatTo() error = %v", err)
			}
			if !json.Valid(buf.Bytes()) {
				t.Errorf("output is not valid JSON: %q", buf.String())
			}
			if tt.indent && !strings.Contains(buf.String(), "\n  ") {
				t.Errorf("expected indented output, got %q", buf.String())
			}
		})
	}
}

func TestCSVFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&CSVFormatter{}).FormatTo(buf, providersTable); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	want := "NAME,TYPE,HEALTHY\nollama,ollama,true\nopenai,openai,false\n"
	if buf.String() != want {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), want)
	}
}

func TestCSVFormatter_NotTable(t *testing.T) {
	if err := (&CSVFormatter{}).FormatTo(&bytes.Buffer{}, "plain"); err == nil {
		t.Error("expected error for non-table data")
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "*cli.TextFormatter"},
		{FormatJSON, "*cli.JSONFormatter"},
		{FormatCSV, "*cli.CSVFormatter"},
		{"unknown", "*cli.TextFormatter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f := NewFormatter(tt.format)
			var got string
			switch f.(type) {
			case *TextFormatter:
				got = "*cli.TextFormatter"
			case *JSONFormatter:
				got = "*cli.JSONFormatter"
			case *CSVFormatter:
				got = "*cli.CSVFormatter"
			}
			if got != tt.want {
				t.Errorf("NewFormatter(%q) = %s, want %s", tt.format, got, tt.want)
			}
		})
	}
}
