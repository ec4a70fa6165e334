package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warning", log.WarnLevel},
		{" error ", log.ErrorLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormatter(t *testing.T) {
	if got := ParseFormatter("json"); got != log.JSONFormatter {
		t.Errorf("json -> %v", got)
	}
	if got := ParseFormatter("logfmt"); got != log.LogfmtFormatter {
		t.Errorf("logfmt -> %v", got)
	}
	if got := ParseFormatter("anything"); got != log.TextFormatter {
		t.Errorf("anything -> %v", got)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn"}, &buf)

	logger.Info("hidden")
	logger.Warn("save failed", "path", "tasks.json")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "save failed") || !strings.Contains(out, "path=tasks.json") {
		t.Errorf("warn message missing fields: %q", out)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskbook.log")
	logger, closer, err := OpenFile(Options{Level: "debug"}, path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	logger.Debug("loaded", "tasks", 3)
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "tasks=3") {
		t.Errorf("log file = %q", data)
	}
}
