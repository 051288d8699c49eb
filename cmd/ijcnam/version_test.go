package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	t.Run("prints version commit and date", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"ijcnam version", "commit:", "built:"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got %q", want, output)
			}
		}
	})

	t.Run("short prints the bare version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--short"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != getVersion() {
			t.Errorf("got %q, want %q", got, getVersion())
		}
	})

	t.Run("getVersion never returns empty", func(t *testing.T) {
		t.Parallel()
		if getVersion() == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("commit is at most seven characters", func(t *testing.T) {
		t.Parallel()
		if c := getCommit(); c != "unknown" && len(c) > 7 {
			t.Errorf("getCommit() = %q, want at most 7 characters", c)
		}
	})
}
