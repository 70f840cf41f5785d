// Package app wires configuration, workspace, backend client, history and
// logging into the pieces the entrypoints share.
package app

import (
	"fmt"
	"os"

	"detect_dashboard/internal/config"
	"detect_dashboard/internal/db"
	"detect_dashboard/internal/detectapi"
	"detect_dashboard/internal/logbook"
	"detect_dashboard/internal/normalize"
	"detect_dashboard/internal/orchestrator"
	"detect_dashboard/internal/workspace"
)

type Env struct {
	Config    *config.Config
	Workspace *workspace.Paths
	Client    *detectapi.Client
	History   *db.History
	Recorder  *logbook.Recorder
	Archive   *logbook.Archive
}

// Bootstrap loads configuration and opens the workspace. The history
// database is skipped when DETECT_HISTORY is off.
func Bootstrap() (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return New(cfg)
}

func New(cfg *config.Config) (*Env, error) {
	ws, err := workspace.Resolve(cfg.Workspace)
	if err != nil {
		return nil, fmt.Errorf("workspace initialization failed: %w", err)
	}
	rec := logbook.NewRecorder()
	if cfg.TraceProgress {
		rec.SetEcho(os.Stdout)
	}
	archive, err := logbook.NewArchive(ws.LogsDir)
	if err != nil {
		return nil, err
	}
	rec.SetSink(archive.Append)

	env := &Env{
		Config:    cfg,
		Workspace: ws,
		Client:    detectapi.New(cfg.BackendURL, cfg.HTTPTimeout),
		Recorder:  rec,
		Archive:   archive,
	}
	if cfg.History {
		h, err := db.OpenHistory(ws.HistoryDB)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		env.History = h
	}
	rec.Log(logbook.LevelInfo, "BOOT", "Environment ready", fmt.Sprintf("backend=%s workspace=%s", cfg.BackendURL, ws.Root))
	return env, nil
}

func (e *Env) Close() error {
	if e == nil {
		return nil
	}
	return e.History.Close()
}

// HistoryStore returns the history as an interface value, nil when disabled.
func (e *Env) HistoryStore() orchestrator.History {
	if e.History == nil {
		return nil
	}
	return e.History
}

func (e *Env) Orchestrator(m normalize.Media, sink orchestrator.Sink) *orchestrator.Orchestrator {
	return orchestrator.New(m, e.Client, sink, orchestrator.Options{
		Heuristic:        e.Config.Heuristics[m],
		ProgressInterval: e.Config.ProgressInterval,
		Logger:           e.Recorder,
		History:          e.HistoryStore(),
	})
}
