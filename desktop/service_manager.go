package main

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"detect_dashboard/desktop/backend"
)

const maxTraces = 400

// serviceManager watches the detection backend and keeps a trace of
// reachability changes.
type serviceManager struct {
	mu sync.Mutex

	started  bool
	interval time.Duration

	status    backend.ServiceStatus
	traces    []backend.ServiceTrace
	traceSink func(backend.ServiceTrace)
}

func newServiceManager(url string) *serviceManager {
	return &serviceManager{
		interval: 15 * time.Second,
		status:   backend.ServiceStatus{Name: "detection-backend", URL: strings.TrimRight(url, "/")},
		traces:   make([]backend.ServiceTrace, 0, maxTraces),
	}
}

func (s *serviceManager) SetTraceSink(sink func(backend.ServiceTrace)) {
	s.mu.Lock()
	s.traceSink = sink
	s.mu.Unlock()
}

// Start polls the backend until ctx ends.
func (s *serviceManager) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		s.Check()
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Check()
			}
		}
	}()
}

// Check probes the backend once and records a trace when readiness changes.
func (s *serviceManager) Check() backend.ServiceStatus {
	s.mu.Lock()
	url := s.status.URL
	wasReady := s.status.Ready
	first := s.status.CheckedAt == ""
	s.mu.Unlock()

	alive, err := probeHTTP(url, 2*time.Second)

	s.mu.Lock()
	s.status.Ready = alive
	s.status.CheckedAt = time.Now().Format(time.RFC3339)
	if alive {
		s.status.Detail = "endpoint reachable"
		s.status.LastError = ""
	} else {
		s.status.Detail = "endpoint unreachable"
		if err != nil {
			s.status.LastError = err.Error()
		}
	}
	snap := s.status
	s.mu.Unlock()

	switch {
	case alive && (first || !wasReady):
		s.trace("INFO", "Detection backend ready", url)
	case !alive && (first || wasReady):
		s.trace("RISK", "Detection backend unreachable", strings.TrimSpace(url+" "+snap.LastError))
	}
	return snap
}

// WaitReady polls until the backend answers or d elapses.
func (s *serviceManager) WaitReady(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for {
		if s.Check().Ready {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(900 * time.Millisecond)
	}
}

func (s *serviceManager) Snapshot() backend.SystemDiagnostics {
	s.mu.Lock()
	defer s.mu.Unlock()
	overall := "DEGRADED"
	switch {
	case s.status.CheckedAt == "":
		overall = "IDLE"
	case s.status.Ready:
		overall = "READY"
	}
	traces := make([]backend.ServiceTrace, len(s.traces))
	copy(traces, s.traces)
	return backend.SystemDiagnostics{
		Overall: overall,
		Backend: s.status,
		Traces:  traces,
	}
}

func (s *serviceManager) trace(level, message, detail string) {
	t := backend.ServiceTrace{
		Time:    time.Now().Format("15:04:05.000"),
		Level:   level,
		Message: message,
		Detail:  detail,
	}
	s.mu.Lock()
	s.traces = append(s.traces, t)
	if len(s.traces) > maxTraces {
		s.traces = s.traces[len(s.traces)-maxTraces:]
	}
	sink := s.traceSink
	s.mu.Unlock()
	if sink != nil {
		sink(t)
	}
}

func probeHTTP(url string, timeout time.Duration) (bool, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		return false, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 500, nil
}
