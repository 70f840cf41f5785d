package config

import (
	"errors"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"detect_dashboard/internal/normalize"
)

type Config struct {
	BackendURL       string
	HTTPTimeout      time.Duration
	ProgressInterval time.Duration
	Heuristics       map[normalize.Media]bool
	BatchWorkers     int
	WebAddr          string
	WebOrigins       []string
	Workspace        string
	History          bool
	TraceProgress    bool
}

// Load reads .env files (missing ones are ignored) and then the environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return FromEnv(), nil
}

func FromEnv() *Config {
	return &Config{
		BackendURL:       strings.TrimRight(getenv("DETECT_BACKEND_URL", "http://localhost:8000"), "/"),
		HTTPTimeout:      time.Duration(getenvInt("DETECT_HTTP_TIMEOUT_MS", 120000)) * time.Millisecond,
		ProgressInterval: time.Duration(getenvInt("DETECT_PROGRESS_INTERVAL_MS", 200)) * time.Millisecond,
		Heuristics: map[normalize.Media]bool{
			normalize.Text:  getenvBool("DETECT_TEXT_HEURISTICS", false),
			normalize.Image: getenvBool("DETECT_IMAGE_HEURISTICS", false),
			normalize.Video: getenvBool("DETECT_VIDEO_HEURISTICS", false),
		},
		BatchWorkers:  getenvInt("DETECT_BATCH_WORKERS", runtime.NumCPU()),
		WebAddr:       getenv("DETECT_WEB_ADDR", ":8090"),
		WebOrigins:    splitList(getenv("DETECT_WEB_ORIGINS", "*")),
		Workspace:     getenv("DETECT_WORKSPACE", ""),
		History:       getenvBool("DETECT_HISTORY", true),
		TraceProgress: getenvBool("DETECT_TRACE_PROGRESS", false),
	}
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getenvBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	return raw == "1" || raw == "true" || raw == "yes" || raw == "on"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
