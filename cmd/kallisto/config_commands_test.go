package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newConfigInitCommand()
	cmd.SetArgs([]string{"--path", target})
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config at %s: %v", target, err)
	}
	if !strings.Contains(out.String(), target) {
		t.Fatalf("expected output to mention target path, got %q", out.String())
	}

	// Second run without --overwrite must refuse.
	cmd = newConfigInitCommand()
	cmd.SetArgs([]string{"--path", target})
	cmd.SetOut(&out)
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}

func TestRenderTable(t *testing.T) {
	rendered := renderTable(
		[]string{"SLUG", "PAGES"},
		[][]string{{"apollo11", "3"}},
		1,
	)
	if !strings.Contains(rendered, "apollo11") || !strings.Contains(rendered, "PAGES") {
		t.Fatalf("unexpected table output:\n%s", rendered)
	}
}
