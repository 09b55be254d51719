package logging_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"kallisto/internal/logging"
)

func TestConsoleHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	component := logging.NewComponentLogger(logger, "router")
	component.Info("page claimed",
		logging.Args(
			logging.String(logging.FieldMission, "apollo11"),
			logging.Int(logging.FieldPage, 3),
		)...)

	line := buf.String()
	if !strings.Contains(line, "INFO router: page claimed") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "mission=apollo11") || !strings.Contains(line, "page=3") {
		t.Fatalf("missing attributes in console line: %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Error("commit rejected", logging.Args(logging.Error(errors.New("lock expired before save")))...)
	if !strings.Contains(buf.String(), `error="lock expired before save"`) {
		t.Fatalf("expected quoted error value, got %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("visible")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("info record should have been filtered")
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Fatal("warn record missing")
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewNop()
	logger.Info("discarded")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should never be enabled")
	}
}
