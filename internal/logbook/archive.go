package logbook

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Archive appends log lines to a per-session file under a logs directory.
type Archive struct {
	mu          sync.Mutex
	rootDir     string
	sessionFile string
}

func NewArchive(logsDir string) (*Archive, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}
	a := &Archive{
		rootDir:     logsDir,
		sessionFile: filepath.Join(logsDir, "session-"+time.Now().Format("20060102-150405")+".log"),
	}
	a.Append(LogLine{Time: time.Now().Format("15:04:05.000"), Level: LevelInfo, Stage: "BOOT", Message: "log archive initialized", Detail: logsDir})
	return a, nil
}

func (a *Archive) RootDir() string {
	if a == nil {
		return ""
	}
	return a.rootDir
}

func (a *Archive) SessionFile() string {
	if a == nil {
		return ""
	}
	return a.sessionFile
}

// Append writes one line. Write errors are dropped.
func (a *Archive) Append(l LogLine) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	f, err := os.OpenFile(a.sessionFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(l.String() + "\n")
}

// ExportZip bundles every file under the logs directory into dest.
func (a *Archive) ExportZip(dest string) error {
	if a == nil {
		return fmt.Errorf("log archive unavailable")
	}
	if strings.TrimSpace(dest) == "" {
		return fmt.Errorf("destination path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create destination dir: %w", err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer out.Close()

	a.mu.Lock()
	defer a.mu.Unlock()
	zw := zip.NewWriter(out)
	err = filepath.WalkDir(a.rootDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(a.rootDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		_ = zw.Close()
		return fmt.Errorf("collect log files: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zip: %w", err)
	}
	return nil
}
