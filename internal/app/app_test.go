package app

import (
	"path/filepath"
	"testing"
	"time"

	"detect_dashboard/internal/config"
	"detect_dashboard/internal/normalize"
	"detect_dashboard/internal/orchestrator"
)

func testConfig(t *testing.T, history bool) *config.Config {
	t.Helper()
	return &config.Config{
		BackendURL:       "http://127.0.0.1:1",
		HTTPTimeout:      time.Second,
		ProgressInterval: 10 * time.Millisecond,
		Heuristics:       map[normalize.Media]bool{normalize.Text: true},
		Workspace:        filepath.Join(t.TempDir(), "ws"),
		History:          history,
	}
}

func TestNewOpensWorkspaceAndHistory(t *testing.T) {
	env, err := New(testConfig(t, true))
	if err != nil {
		t.Fatalf("new env: %v", err)
	}
	defer env.Close()
	if env.History == nil || env.HistoryStore() == nil {
		t.Fatal("expected history to be opened")
	}
	if env.Archive.SessionFile() == "" || len(env.Recorder.Lines()) == 0 {
		t.Fatal("expected boot line to be recorded")
	}
	o := env.Orchestrator(normalize.Text, nil)
	if o.Media() != normalize.Text || o.State() != orchestrator.StateIdle {
		t.Fatalf("unexpected orchestrator %s %s", o.Media(), o.State())
	}
}

func TestHistoryDisabled(t *testing.T) {
	env, err := New(testConfig(t, false))
	if err != nil {
		t.Fatalf("new env: %v", err)
	}
	defer env.Close()
	if env.HistoryStore() != nil {
		t.Fatal("expected nil history store when disabled")
	}
}
