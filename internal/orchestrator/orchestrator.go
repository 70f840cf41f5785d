package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"detect_dashboard/internal/db"
	"detect_dashboard/internal/detectapi"
	"detect_dashboard/internal/ingest"
	"detect_dashboard/internal/logbook"
	"detect_dashboard/internal/normalize"
	"detect_dashboard/internal/render"
)

const defaultProgressInterval = 200 * time.Millisecond

type Detector interface {
	Detect(ctx context.Context, s detectapi.Submission) (detectapi.Result, error)
}

// History stores finished submissions. Failures to record are logged only.
type History interface {
	Record(ctx context.Context, s db.Submission) error
}

type Options struct {
	// Heuristic enables the text heuristics as the indicator source when the
	// backend returns no explanations.
	Heuristic        bool
	ProgressInterval time.Duration
	Logger           logbook.Logger
	History          History
}

// Orchestrator drives submissions for one media flow. A new submission is
// rejected with ErrBusy while another is pending.
type Orchestrator struct {
	media    normalize.Media
	detector Detector
	sink     Sink
	opts     Options
	ticks    tickSource
	now      func() time.Time

	mu       sync.Mutex
	state    State
	progress ProgressState
}

func New(media normalize.Media, detector Detector, sink Sink, opts Options) *Orchestrator {
	if sink == nil {
		sink = Funcs{}
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = defaultProgressInterval
	}
	return &Orchestrator{
		media:    media,
		detector: detector,
		sink:     sink,
		opts:     opts,
		ticks:    timeTicks,
		now:      time.Now,
		state:    StateIdle,
	}
}

func (o *Orchestrator) Media() normalize.Media { return o.media }

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Progress reports the synthetic progress of the pending video submission.
func (o *Orchestrator) Progress() ProgressState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress
}

// Submit runs one submission to completion. Empty input is rejected with
// ErrInputMissing before any state change; backend failures come back as
// *SubmitError.
func (o *Orchestrator) Submit(ctx context.Context, s detectapi.Submission) (render.View, error) {
	s.Media = o.media
	stage := strings.ToUpper(string(o.media))
	if s.Empty() {
		msg := MissingInputMessage(o.media)
		logbook.Log(o.opts.Logger, logbook.LevelRisk, stage, "Submission ignored", msg)
		o.sink.Alert(o.media, msg)
		return render.View{}, ErrInputMissing
	}
	if !o.acquire() {
		logbook.Log(o.opts.Logger, logbook.LevelRisk, stage, "Submission rejected", ErrBusy.Error())
		o.sink.Alert(o.media, fmt.Sprintf("A %s analysis is already in progress.", o.media))
		return render.View{}, ErrBusy
	}
	final := StateFailed
	defer func() { o.release(final) }()

	id := uuid.NewString()
	started := o.now()
	logbook.Log(o.opts.Logger, logbook.LevelInfo, stage, "Submission started", describe(s))
	o.sink.Loading(o.media, true)

	stop := func() {}
	if o.media == normalize.Video {
		stop = startProgress(ctx, o.ticks, o.opts.ProgressInterval, o.tick)
	}
	defer stop()

	res, err := o.detector.Detect(ctx, s)
	stop()
	if err != nil {
		submitErr := &SubmitError{Media: o.media, Err: err}
		logbook.Log(o.opts.Logger, logbook.LevelRisk, stage, "Submission failed", err.Error())
		o.sink.Loading(o.media, false)
		o.sink.Alert(o.media, FailureMessage(o.media, err))
		o.record(ctx, db.Submission{
			ID:          id,
			Media:       string(o.media),
			Source:      sourceName(s),
			Status:      db.StatusFailed,
			Error:       err.Error(),
			StartedAt:   started,
			CompletedAt: o.now(),
		})
		return render.View{}, submitErr
	}

	if o.media == normalize.Video {
		o.sink.Progress(o.media, ProgressState{Percent: 100, Frame: progressFrames}, "Processing complete")
		if len(res.FramePredictions) == 0 {
			logbook.Log(o.opts.Logger, logbook.LevelRisk, stage, "No frame predictions received", "")
		}
	}

	var preview string
	if res.HeatmapImage != "" && res.Image == "" && len(s.Data) > 0 {
		preview = ingest.DataURL(s.FileName, s.Data)
	}
	view := Interpret(id, s, res, o.opts.Heuristic, preview)
	logbook.Log(o.opts.Logger, logbook.LevelAnalysis, stage, "Result interpreted",
		fmt.Sprintf("label=%s ai=%d%% indicators=%s", res.Label, view.AIPercent, view.IndicatorSource))

	o.sink.Loading(o.media, false)
	o.sink.Result(view)
	final = StateFulfilled
	o.record(ctx, db.Submission{
		ID:              id,
		Media:           string(o.media),
		Source:          sourceName(s),
		Status:          db.StatusFulfilled,
		Label:           res.Label,
		Confidence:      res.Confidence,
		AIProbability:   view.AIProbability,
		IndicatorSource: string(view.IndicatorSource),
		Indicators:      view.Indicators,
		StartedAt:       started,
		CompletedAt:     o.now(),
	})
	return view, nil
}

func (o *Orchestrator) acquire() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StatePending {
		return false
	}
	o.state = StatePending
	o.progress = ProgressState{}
	return true
}

func (o *Orchestrator) release(final State) {
	o.mu.Lock()
	o.state = final
	o.progress = ProgressState{}
	o.mu.Unlock()
}

func (o *Orchestrator) tick(p ProgressState) {
	o.mu.Lock()
	o.progress = p
	o.mu.Unlock()
	o.sink.Progress(o.media, p, p.Label())
}

func (o *Orchestrator) record(ctx context.Context, s db.Submission) {
	if o.opts.History == nil {
		return
	}
	if err := o.opts.History.Record(context.WithoutCancel(ctx), s); err != nil {
		logbook.Log(o.opts.Logger, logbook.LevelRisk, "HISTORY", "Failed to record submission", err.Error())
	}
}

func sourceName(s detectapi.Submission) string {
	if s.FileName != "" {
		return s.FileName
	}
	return "text input"
}

func describe(s detectapi.Submission) string {
	if s.Media == normalize.Text {
		return fmt.Sprintf("%s (%d chars)", sourceName(s), len([]rune(s.Text)))
	}
	return fmt.Sprintf("%s (%d bytes)", sourceName(s), len(s.Data))
}
