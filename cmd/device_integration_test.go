//go:build integration

package cmd

import (
	"strings"
	"testing"
)

// These tests require actual audio hardware and are skipped by default.
// Run with: go test -tags=integration ./cmd

func TestDevicesCmd_Integration(t *testing.T) {
	setupTestEnv(t, "")

	out, _, err := run(t, "", "devices")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Playback") || !strings.Contains(out, "Capture") {
		t.Errorf("devices output = %q", out)
	}
}

func TestPlayCmd_Integration(t *testing.T) {
	setupTestEnv(t, "")

	if _, _, err := run(t, "", "play", "--wpm", "30", "e"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}

func TestListenCmd_Integration(t *testing.T) {
	setupTestEnv(t, "")

	// a quiet room decodes to silence; only device errors fail the test
	_, _, err := run(t, "", "listen", "--seconds", "1")
	if err != nil && !strings.Contains(err.Error(), "no signal") && !strings.Contains(err.Error(), "no pulses") {
		t.Fatalf("Execute() error = %v", err)
	}
}
