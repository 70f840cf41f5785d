package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"detect_dashboard/desktop/backend"
	"detect_dashboard/internal/app"
	"detect_dashboard/internal/detectapi"
	"detect_dashboard/internal/ingest"
	"detect_dashboard/internal/logbook"
	"detect_dashboard/internal/normalize"
	"detect_dashboard/internal/orchestrator"
	"detect_dashboard/internal/render"
)

var dialogFilters = map[normalize.Media][]runtime.FileFilter{
	normalize.Video: {{DisplayName: "Video Files", Pattern: "*.mp4;*.mov;*.avi;*.mkv;*.webm"}},
	normalize.Image: {{DisplayName: "Image Files", Pattern: "*.jpg;*.jpeg;*.png;*.gif;*.webp;*.bmp"}},
	normalize.Text: {
		{DisplayName: "Documents", Pattern: "*.txt;*.md;*.docx;*.pdf"},
		{DisplayName: "Word Document", Pattern: "*.docx"},
		{DisplayName: "PDF", Pattern: "*.pdf"},
	},
}

type App struct {
	ctx context.Context

	mu            sync.Mutex
	env           *app.Env
	orchestrators map[normalize.Media]*orchestrator.Orchestrator
	latest        map[normalize.Media]*render.View
	services      *serviceManager
}

func NewApp() *App {
	return &App{latest: map[normalize.Media]*render.View{}}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	if err := a.bootstrap(); err != nil {
		a.emit(backend.EventAlert, map[string]any{"media": "", "message": "Startup failed: " + err.Error()})
		return
	}
	a.services.Start(ctx)
}

func (a *App) shutdown(context.Context) {
	a.mu.Lock()
	env := a.env
	a.mu.Unlock()
	if env != nil {
		_ = env.Close()
	}
}

func (a *App) bootstrap() error {
	env, err := app.Bootstrap()
	if err != nil {
		return err
	}
	env.Recorder.SetSink(func(l logbook.LogLine) {
		env.Archive.Append(l)
		a.emit(backend.EventLogLine, l)
	})
	services := newServiceManager(env.Config.BackendURL)
	services.SetTraceSink(func(t backend.ServiceTrace) {
		env.Recorder.Log(t.Level, "SERVICE", t.Message, t.Detail)
		a.emit(backend.EventService, t)
	})

	sink := backend.Sink(a.emit, a.remember)
	orchestrators := map[normalize.Media]*orchestrator.Orchestrator{}
	for _, m := range []normalize.Media{normalize.Video, normalize.Image, normalize.Text} {
		orchestrators[m] = env.Orchestrator(m, sink)
	}

	a.mu.Lock()
	a.env = env
	a.services = services
	a.orchestrators = orchestrators
	a.mu.Unlock()
	return nil
}

func (a *App) GetDashboard() backend.DashboardData {
	a.mu.Lock()
	env := a.env
	results := make(map[string]*render.View, len(a.latest))
	for m, v := range a.latest {
		results[string(m)] = v
	}
	services := a.services
	a.mu.Unlock()

	data := backend.DashboardData{Results: results}
	if env == nil {
		return data
	}
	data.Workspace = env.Workspace.Root
	data.Logs = env.Recorder.Lines()
	if env.History != nil {
		if rows, err := env.History.Recent(a.context(), 25); err == nil {
			data.History = rows
		} else {
			env.Recorder.Log(logbook.LevelRisk, "HISTORY", "Failed to load history", err.Error())
		}
	}
	if services != nil {
		data.System = services.Snapshot()
	}
	return data
}

func (a *App) GetServiceDiagnostics() backend.SystemDiagnostics {
	a.mu.Lock()
	services := a.services
	a.mu.Unlock()
	if services == nil {
		return backend.SystemDiagnostics{Overall: "IDLE"}
	}
	services.Check()
	return services.Snapshot()
}

// DetectText submits pasted text.
func (a *App) DetectText(text string) (render.View, error) {
	o, err := a.orchestrator(normalize.Text)
	if err != nil {
		return render.View{}, err
	}
	return o.Submit(a.context(), detectapi.Submission{Text: text})
}

// DetectFile submits a file from disk to the named flow.
func (a *App) DetectFile(media, path string) (render.View, error) {
	m, err := normalize.ParseMedia(media)
	if err != nil {
		return render.View{}, err
	}
	o, err := a.orchestrator(m)
	if err != nil {
		return render.View{}, err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		// Let the orchestrator reject it so the user sees the usual warning.
		return o.Submit(a.context(), detectapi.Submission{})
	}
	if _, err := os.Stat(path); err != nil {
		a.log(logbook.LevelRisk, "INGEST", "Detect file failed: path not found", path)
		return render.View{}, fmt.Errorf("file not found: %s", path)
	}
	sub, err := ingest.Load(m, path)
	if err != nil {
		a.log(logbook.LevelRisk, "INGEST", "file load failed", err.Error())
		return render.View{}, err
	}
	return o.Submit(a.context(), sub)
}

// PickAndDetect opens a file dialog for the flow and submits the choice. A
// cancelled dialog returns an empty view.
func (a *App) PickAndDetect(media string) (render.View, error) {
	path, err := a.PickFile(media)
	if err != nil || path == "" {
		return render.View{}, err
	}
	return a.DetectFile(media, path)
}

func (a *App) PickFile(media string) (string, error) {
	m, err := normalize.ParseMedia(media)
	if err != nil {
		return "", err
	}
	if a.ctx == nil {
		return "", fmt.Errorf("file picker unavailable: UI context is not initialized")
	}
	return runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title:   "Select " + string(m),
		Filters: dialogFilters[m],
	})
}

// PreviewFile returns a data URL for showing a selected image or video.
func (a *App) PreviewFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return ingest.DataURL(path, raw), nil
}

func (a *App) ExportLogPackageDialog() (string, error) {
	a.mu.Lock()
	env := a.env
	a.mu.Unlock()
	if env == nil || a.ctx == nil {
		return "", fmt.Errorf("log archive unavailable")
	}
	dest, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Export Log Package",
		DefaultFilename: "media-detect-logs.zip",
		Filters:         []runtime.FileFilter{{DisplayName: "Zip Archive", Pattern: "*.zip"}},
	})
	if err != nil || strings.TrimSpace(dest) == "" {
		return "", err
	}
	if err := env.Archive.ExportZip(dest); err != nil {
		a.log(logbook.LevelRisk, "LOGS", "Log export failed", err.Error())
		return "", err
	}
	a.log(logbook.LevelInfo, "LOGS", "Log package exported", dest)
	return dest, nil
}

func (a *App) Quit() {
	if a.ctx != nil {
		runtime.Quit(a.ctx)
	}
}

func (a *App) orchestrator(m normalize.Media) (*orchestrator.Orchestrator, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	o, ok := a.orchestrators[m]
	if !ok {
		return nil, fmt.Errorf("application is not initialized")
	}
	return o, nil
}

func (a *App) remember(v render.View) {
	a.mu.Lock()
	a.latest[v.Media] = &v
	a.mu.Unlock()
}

func (a *App) log(level, stage, message, detail string) {
	a.mu.Lock()
	env := a.env
	a.mu.Unlock()
	if env != nil {
		env.Recorder.Log(level, stage, message, detail)
	}
}

func (a *App) emit(name string, payload any) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, name, payload)
}

func (a *App) context() context.Context {
	if a.ctx != nil {
		return a.ctx
	}
	return context.Background()
}
