package backend

import (
	"detect_dashboard/internal/db"
	"detect_dashboard/internal/logbook"
	"detect_dashboard/internal/render"
)

type ServiceStatus struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Ready     bool   `json:"ready"`
	Detail    string `json:"detail"`
	LastError string `json:"lastError"`
	CheckedAt string `json:"checkedAt"`
}

type ServiceTrace struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

type SystemDiagnostics struct {
	Overall string         `json:"overall"`
	Backend ServiceStatus  `json:"backend"`
	Traces  []ServiceTrace `json:"traces"`
}

// DashboardData is everything the window needs to redraw itself.
type DashboardData struct {
	Workspace string                  `json:"workspace"`
	Results   map[string]*render.View `json:"results"`
	History   []db.Submission         `json:"history"`
	Logs      []logbook.LogLine       `json:"logs"`
	System    SystemDiagnostics       `json:"system"`
}
