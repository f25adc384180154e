package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger(t *testing.T) *Logger {
	t.Helper()
	l, err := New(&Config{
		LogDir:     t.TempDir(),
		Level:      LevelDebug,
		MaxHistory: 5,
		Console:    false,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestNew_WritesToFile(t *testing.T) {
	l := testLogger(t)
	l.Info("test", "hello from the engine")

	data, err := os.ReadFile(l.GetLogPath())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello from the engine") {
		t.Error("message not written to log file")
	}
	if !strings.Contains(string(data), `"app":"deepreal"`) {
		t.Error("app field missing")
	}
	if filepath.Ext(l.GetLogPath()) != ".log" {
		t.Errorf("unexpected log path: %s", l.GetLogPath())
	}
}

func TestHistory_BoundedAndOrdered(t *testing.T) {
	l := testLogger(t)

	for i := 0; i < 10; i++ {
		l.Info("test", strings.Repeat("x", i+1))
	}

	hist := l.GetHistory(0)
	if len(hist) != 5 {
		t.Fatalf("expected history capped at 5, got %d", len(hist))
	}
	// Newest last; the initial "logger initialized" entry must have rolled off
	if hist[len(hist)-1].Message != strings.Repeat("x", 10) {
		t.Errorf("unexpected newest entry: %q", hist[len(hist)-1].Message)
	}

	limited := l.GetHistory(2)
	if len(limited) != 2 {
		t.Errorf("expected 2 entries, got %d", len(limited))
	}
}

func TestOnLogCallback(t *testing.T) {
	l := testLogger(t)

	var got []LogEntry
	l.SetOnLog(func(e LogEntry) { got = append(got, e) })

	l.Warn("engine", "truncated early")
	if len(got) != 1 {
		t.Fatalf("expected 1 callback, got %d", len(got))
	}
	if got[0].Level != "warn" || got[0].Component != "engine" {
		t.Errorf("unexpected entry: %+v", got[0])
	}
}

func TestComponentLogger(t *testing.T) {
	l := testLogger(t)
	cl := l.Component("muxer")
	cl.Info().Msg("component scoped")

	data, _ := os.ReadFile(l.GetLogPath())
	if !strings.Contains(string(data), `"component":"muxer"`) {
		t.Error("component field missing from zerolog output")
	}
}

func TestErrorAppendsCause(t *testing.T) {
	l := testLogger(t)
	l.Error("sink", "mux failed", os.ErrPermission)

	hist := l.GetHistory(1)
	if len(hist) != 1 || !strings.Contains(hist[0].Message, "permission denied") {
		t.Errorf("expected cause in history entry, got %+v", hist)
	}
}
