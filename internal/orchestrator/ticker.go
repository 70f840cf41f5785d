package orchestrator

import (
	"context"
	"sync"
	"time"
)

const (
	progressStep    = 10
	progressCeiling = 90
	progressFrames  = 10
)

// tickSource yields ticks until stop is called.
type tickSource func(interval time.Duration) (ticks <-chan time.Time, stop func())

func timeTicks(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// advance moves progress one step, holding at the ceiling.
func advance(p ProgressState) (ProgressState, bool) {
	if p.Percent >= progressCeiling {
		return p, false
	}
	p.Percent += progressStep
	if p.Percent > progressCeiling {
		p.Percent = progressCeiling
	}
	p.Frame = p.Percent / progressStep
	return p, true
}

// startProgress runs the synthetic ticker until the returned stop function is
// called or ctx ends. stop is idempotent and returns only after the ticker
// goroutine has exited, so no progress update can follow it.
func startProgress(ctx context.Context, source tickSource, interval time.Duration, emit func(ProgressState)) func() {
	ctx, cancel := context.WithCancel(ctx)
	ticks, release := source(interval)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer release()
		var p ProgressState
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				if ctx.Err() != nil {
					return
				}
				next, changed := advance(p)
				if !changed {
					continue
				}
				p = next
				emit(p)
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
