package orchestrator

import (
	"errors"
	"fmt"

	"detect_dashboard/internal/normalize"
	"detect_dashboard/internal/render"
)

type State string

const (
	StateIdle      State = "idle"
	StatePending   State = "pending"
	StateFulfilled State = "fulfilled"
	StateFailed    State = "failed"
)

// ProgressState is the synthetic progress of one pending video submission.
type ProgressState struct {
	Percent int `json:"percent"`
	Frame   int `json:"frame"`
}

func (p ProgressState) Label() string {
	return fmt.Sprintf("Processing frame %d of %d", p.Frame, progressFrames)
}

var (
	ErrInputMissing = errors.New("no input provided")
	ErrBusy         = errors.New("a submission is already in progress")
)

// SubmitError is a network or parse failure surfaced to the user.
type SubmitError struct {
	Media normalize.Media
	Err   error
}

func (e *SubmitError) Error() string {
	return e.Err.Error()
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Sink receives UI updates for one media flow. Progress is called from the
// ticker goroutine; every other method from the submitting goroutine.
type Sink interface {
	Loading(m normalize.Media, active bool)
	Progress(m normalize.Media, p ProgressState, detail string)
	Result(v render.View)
	Alert(m normalize.Media, message string)
}

// Funcs adapts optional callbacks to Sink. Nil fields are skipped.
type Funcs struct {
	OnLoading  func(m normalize.Media, active bool)
	OnProgress func(m normalize.Media, p ProgressState, detail string)
	OnResult   func(v render.View)
	OnAlert    func(m normalize.Media, message string)
}

func (f Funcs) Loading(m normalize.Media, active bool) {
	if f.OnLoading != nil {
		f.OnLoading(m, active)
	}
}

func (f Funcs) Progress(m normalize.Media, p ProgressState, detail string) {
	if f.OnProgress != nil {
		f.OnProgress(m, p, detail)
	}
}

func (f Funcs) Result(v render.View) {
	if f.OnResult != nil {
		f.OnResult(v)
	}
}

func (f Funcs) Alert(m normalize.Media, message string) {
	if f.OnAlert != nil {
		f.OnAlert(m, message)
	}
}

// MissingInputMessage is the warning shown when a flow is submitted empty.
func MissingInputMessage(m normalize.Media) string {
	switch m {
	case normalize.Video:
		return "Please upload a video first."
	case normalize.Image:
		return "Please upload an image first."
	default:
		return "Please enter some text to analyze."
	}
}

// FailureMessage is the alert text for a failed submission.
func FailureMessage(m normalize.Media, err error) string {
	switch m {
	case normalize.Text:
		return "Error analyzing text: " + err.Error()
	case normalize.Image:
		return "Error analyzing image: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
