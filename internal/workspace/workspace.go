package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const BaseDirName = "MediaDetect"

type Settings struct {
	Theme      string `json:"theme"`
	BackendURL string `json:"backend_url"`
}

// Paths is the resolved layout of a workspace.
type Paths struct {
	Root         string
	SettingsPath string
	HistoryDB    string
	ReportsDir   string
	LogsDir      string
}

func EnsureDefault() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home: %w", err)
	}
	return EnsureAt(filepath.Join(home, BaseDirName))
}

// Resolve expands a leading ~ and falls back to the default location.
func Resolve(dir string) (*Paths, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return EnsureDefault()
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return EnsureAt(dir)
}

func EnsureAt(base string) (*Paths, error) {
	p := &Paths{
		Root:         base,
		SettingsPath: filepath.Join(base, "configs", "settings.json"),
		HistoryDB:    filepath.Join(base, "history", "submissions.db"),
		ReportsDir:   filepath.Join(base, "reports"),
		LogsDir:      filepath.Join(base, "logs"),
	}
	for _, dir := range []string{filepath.Dir(p.SettingsPath), filepath.Dir(p.HistoryDB), p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	if _, err := os.Stat(p.SettingsPath); os.IsNotExist(err) {
		defaults := Settings{
			Theme:      "darkroom",
			BackendURL: "http://localhost:8000",
		}
		if err := writeJSON(p.SettingsPath, defaults); err != nil {
			return nil, fmt.Errorf("write settings: %w", err)
		}
	}
	return p, nil
}

func LoadSettings(p *Paths) (Settings, error) {
	raw, err := os.ReadFile(p.SettingsPath)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
