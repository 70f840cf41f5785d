package backend

import (
	"detect_dashboard/internal/normalize"
	"detect_dashboard/internal/orchestrator"
	"detect_dashboard/internal/render"
)

// Event names emitted to the webview.
const (
	EventProgress = "detection_progress"
	EventLoading  = "detection_loading"
	EventResult   = "detection_result"
	EventAlert    = "detection_alert"
	EventLogLine  = "log_line"
	EventService  = "service_trace"
)

// Emitter publishes a named event with a payload.
type Emitter func(name string, payload any)

// Sink adapts an Emitter to orchestrator callbacks. onResult runs before the
// result event is emitted.
func Sink(emit Emitter, onResult func(render.View)) orchestrator.Sink {
	return orchestrator.Funcs{
		OnLoading: func(m normalize.Media, active bool) {
			emit(EventLoading, map[string]any{"media": m, "loading": active})
		},
		OnProgress: func(m normalize.Media, p orchestrator.ProgressState, detail string) {
			emit(EventProgress, map[string]any{
				"media":   m,
				"percent": p.Percent,
				"frame":   p.Frame,
				"detail":  detail,
			})
		},
		OnResult: func(v render.View) {
			if onResult != nil {
				onResult(v)
			}
			emit(EventResult, v)
		},
		OnAlert: func(m normalize.Media, message string) {
			emit(EventAlert, map[string]any{"media": m, "message": message})
		},
	}
}
