package logbook

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	LevelInfo     = "INFO"
	LevelAnalysis = "ANALYSIS"
	LevelRisk     = "RISK"
)

const maxLines = 400

type Logger interface {
	Log(level, stage, message, detail string)
}

type LogLine struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (l LogLine) String() string {
	line := fmt.Sprintf("[%s] [%s] [%s] %s", l.Time, l.Level, l.Stage, l.Message)
	if strings.TrimSpace(l.Detail) != "" {
		line += " | " + l.Detail
	}
	return line
}

// Recorder keeps the most recent lines in memory and optionally mirrors them
// to a writer. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	lines []LogLine
	echo  io.Writer
	sink  func(LogLine)
}

func NewRecorder() *Recorder {
	r := &Recorder{lines: make([]LogLine, 0, 64)}
	if os.Getenv("DETECT_TRACE_PROGRESS") == "1" {
		r.echo = os.Stdout
	}
	return r
}

func (r *Recorder) SetEcho(w io.Writer) {
	r.mu.Lock()
	r.echo = w
	r.mu.Unlock()
}

// SetSink registers a callback invoked for every new line, outside the lock.
func (r *Recorder) SetSink(sink func(LogLine)) {
	r.mu.Lock()
	r.sink = sink
	r.mu.Unlock()
}

func (r *Recorder) Log(level, stage, message, detail string) {
	line := LogLine{
		Time:    time.Now().Format("15:04:05.000"),
		Level:   level,
		Stage:   stage,
		Message: message,
		Detail:  detail,
	}
	r.mu.Lock()
	r.lines = append(r.lines, line)
	if len(r.lines) > maxLines {
		r.lines = r.lines[len(r.lines)-maxLines:]
	}
	echo := r.echo
	sink := r.sink
	if echo != nil {
		_, _ = fmt.Fprintln(echo, line.String())
	}
	r.mu.Unlock()
	if sink != nil {
		sink(line)
	}
}

func (r *Recorder) Lines() []LogLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogLine, len(r.lines))
	copy(out, r.lines)
	return out
}

// Log forwards to l when it is non-nil.
func Log(l Logger, level, stage, message, detail string) {
	if l == nil {
		return
	}
	l.Log(level, stage, message, detail)
}

// Func adapts a plain function to Logger.
type Func func(level, stage, message, detail string)

func (f Func) Log(level, stage, message, detail string) {
	if f != nil {
		f(level, stage, message, detail)
	}
}

// Multi fans a line out to every non-nil logger.
func Multi(loggers ...Logger) Logger {
	return Func(func(level, stage, message, detail string) {
		for _, l := range loggers {
			Log(l, level, stage, message, detail)
		}
	})
}
