package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"detect_dashboard/internal/normalize"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"DETECT_BACKEND_URL", "DETECT_HTTP_TIMEOUT_MS", "DETECT_PROGRESS_INTERVAL_MS", "DETECT_TEXT_HEURISTICS", "DETECT_HISTORY", "DETECT_WEB_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	if cfg.BackendURL != "http://localhost:8000" || cfg.HTTPTimeout != 2*time.Minute || cfg.ProgressInterval != 200*time.Millisecond {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Heuristics[normalize.Text] || !cfg.History {
		t.Fatalf("unexpected flags %+v", cfg)
	}
	if len(cfg.WebOrigins) != 1 || cfg.WebOrigins[0] != "*" {
		t.Fatalf("unexpected origins %v", cfg.WebOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DETECT_BACKEND_URL", "http://detector:9000/")
	t.Setenv("DETECT_PROGRESS_INTERVAL_MS", "50")
	t.Setenv("DETECT_TEXT_HEURISTICS", "yes")
	t.Setenv("DETECT_BATCH_WORKERS", "not-a-number")
	t.Setenv("DETECT_WEB_ORIGINS", "http://a.test, http://b.test")
	cfg := FromEnv()
	if cfg.BackendURL != "http://detector:9000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.BackendURL)
	}
	if cfg.ProgressInterval != 50*time.Millisecond || !cfg.Heuristics[normalize.Text] || cfg.Heuristics[normalize.Image] {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if cfg.BatchWorkers <= 0 {
		t.Fatalf("expected fallback worker count, got %d", cfg.BatchWorkers)
	}
	if len(cfg.WebOrigins) != 2 || cfg.WebOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.WebOrigins)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	t.Setenv("DETECT_WEB_ADDR", "")
	os.Unsetenv("DETECT_WEB_ADDR")
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("DETECT_WEB_ADDR=:9999\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WebAddr != ":9999" {
		t.Fatalf("expected .env value, got %q", cfg.WebAddr)
	}
}
