package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNopDiscards(t *testing.T) {
	l := OrNop(nil)
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("nop logger must not be enabled")
	}
	l.With("k", "v").WithGroup("g").Error("dropped")
}

func TestNewHonoursVerbose(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record written without verbose: %q", buf.String())
	}
	New(&buf, true).Debug("shown", "lines", 3)
	if got := buf.String(); !strings.Contains(got, "shown") || !strings.Contains(got, "lines=3") {
		t.Fatalf("unexpected log output: %q", got)
	}
}
