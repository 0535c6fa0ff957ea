package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	t.Parallel()

	// Should return something (either ldflags value, build info, or "(devel)")
	if getVersion() == "" {
		t.Error("getVersion() returned empty string")
	}
}

func TestGetCommit(t *testing.T) {
	t.Parallel()

	// Should return something (either ldflags value, vcs.revision, or "unknown")
	if getCommit() == "" {
		t.Error("getCommit() returned empty string")
	}
}

func TestGetDate(t *testing.T) {
	t.Parallel()

	// Should return something (either ldflags value, vcs.time, or "unknown")
	if getDate() == "" {
		t.Error("getDate() returned empty string")
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	t.Run("command has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd := NewVersionCmd(); cmd.Use != "version" {
			t.Errorf("expected Use to be 'version', got %q", cmd.Use)
		}
	})

	t.Run("command outputs version info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "linkpatrol version") {
			t.Errorf("expected output to contain 'linkpatrol version', got %q", output)
		}
		if !strings.Contains(output, "commit:") {
			t.Errorf("expected output to contain 'commit:', got %q", output)
		}
		if !strings.Contains(output, "built:") {
			t.Errorf("expected output to contain 'built:', got %q", output)
		}
	})
}
