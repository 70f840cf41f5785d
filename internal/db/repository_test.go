package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestRecordAndRecent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	h, err := OpenHistory(dbPath)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer h.Close()

	ctx := context.Background()
	conf := 0.92
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	input := []Submission{
		{
			ID:              "a",
			Media:           "text",
			Source:          "essay.txt",
			Status:          StatusFulfilled,
			Label:           "AI-generated",
			Confidence:      &conf,
			AIProbability:   0.92,
			IndicatorSource: "fallback",
			Indicators:      []string{"one", "two", "three", "four"},
			StartedAt:       base,
			CompletedAt:     base.Add(time.Second),
		},
		{
			ID:          "b",
			Media:       "video",
			Source:      "clip.mp4",
			Status:      StatusFailed,
			Error:       "connection refused",
			StartedAt:   base.Add(time.Minute),
			CompletedAt: base.Add(2 * time.Minute),
		},
	}
	for _, s := range input {
		if err := h.Record(ctx, s); err != nil {
			t.Fatalf("record %s: %v", s.ID, err)
		}
	}

	recent, err := h.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "b" || recent[1].ID != "a" {
		t.Fatalf("expected newest first, got %+v", recent)
	}
	if recent[0].Confidence != nil || recent[0].Error != "connection refused" {
		t.Fatalf("unexpected failed row %+v", recent[0])
	}
	if recent[1].Confidence == nil || *recent[1].Confidence != conf || len(recent[1].Indicators) != 4 || recent[1].Indicators[0] != "one" {
		t.Fatalf("unexpected fulfilled row %+v", recent[1])
	}
	if !recent[1].StartedAt.Equal(base) {
		t.Fatalf("expected start time round trip, got %v", recent[1].StartedAt)
	}

	indicators, err := CountRows(dbPath, "indicators")
	if err != nil {
		t.Fatalf("count indicators: %v", err)
	}
	if indicators != 4 {
		t.Fatalf("expected 4 indicators, got %d", indicators)
	}
}

func TestRecordRejectsMissingID(t *testing.T) {
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer h.Close()
	if err := h.Record(context.Background(), Submission{Media: "image"}); err == nil {
		t.Fatal("expected error for missing id")
	}
}
