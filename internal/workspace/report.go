package workspace

import (
	"fmt"
	"path/filepath"
	"strings"

	"detect_dashboard/internal/render"
)

// SaveReport writes a rendered result as reports/<submission id>.json.
func SaveReport(p *Paths, v render.View) (string, error) {
	name := sanitizeName(v.SubmissionID)
	if name == "" {
		return "", fmt.Errorf("save report: missing submission id")
	}
	path := filepath.Join(p.ReportsDir, name+".json")
	if err := writeJSON(path, v); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func sanitizeName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.ReplaceAll(base, "..", "")
}
