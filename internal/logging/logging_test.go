package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewTo(&buf, "info", false)
	if err != nil {
		t.Fatalf("NewTo() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Info("decoded", zap.String("morse", "..."))
	_ = logger.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "decoded" || entry["morse"] != "..." || entry["level"] != "info" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewTo_Debug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewTo(&buf, "error", true)
	if err != nil {
		t.Fatalf("NewTo() error = %v", err)
	}

	logger.Debug("stage reached")
	_ = logger.Sync()

	out := buf.String()
	if !strings.Contains(out, "stage reached") {
		t.Errorf("debug flag should enable debug output, got %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("debug output should use the console encoder, got %q", out)
	}
}

func TestNewTo_Levels(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"error", false},
		{"", false},
		{"verbose", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			_, err := NewTo(&bytes.Buffer{}, tt.level, false)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTo(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}
