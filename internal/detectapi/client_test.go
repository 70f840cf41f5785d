package detectapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"detect_dashboard/internal/normalize"
)

func TestDetectVideoSendsMultipartAndFlattens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/video-detect" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected multipart file field: %v", err)
			return
		}
		raw, _ := io.ReadAll(f)
		if hdr.Filename != "clip.mp4" || string(raw) != "video-bytes" {
			t.Errorf("unexpected upload %q %q", hdr.Filename, raw)
		}
		_, _ = w.Write([]byte(`{"final":{"label":"Fake","confidence":0.83},"frame_predictions":[{"frame":0,"label":"Fake","confidence":0.9,"thumbnail":"data:image/jpeg;base64,AA=="}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	res, err := c.Detect(context.Background(), Submission{Media: normalize.Video, FileName: "clip.mp4", Data: []byte("video-bytes")})
	if err != nil {
		t.Fatalf("detect video: %v", err)
	}
	if res.Label != "Fake" || res.Confidence == nil || *res.Confidence != 0.83 {
		t.Fatalf("unexpected verdict %+v", res)
	}
	if len(res.FramePredictions) != 1 || res.FramePredictions[0].Thumbnail == "" {
		t.Fatalf("expected one frame prediction, got %+v", res.FramePredictions)
	}
}

func TestDetectVideoMissingFinalIsParseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"frame_predictions":[]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).DetectVideo(context.Background(), "a.mp4", []byte("x"))
	if err == nil {
		t.Fatal("expected error for missing final verdict")
	}
}

func TestDetectTextPostsJSONWithExplain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text-detect" || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %s", r.URL.Path, r.Header.Get("Content-Type"))
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req["text"] != "hello world" || req["explain"] != true {
			t.Errorf("unexpected body %v", req)
		}
		_, _ = w.Write([]byte(`{"label":"Human-written","confidence":0.7,"lime_explanations":["a","b"]}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL, time.Second).DetectText(context.Background(), "  hello world\n")
	if err != nil {
		t.Fatalf("detect text: %v", err)
	}
	if res.Media != normalize.Text || res.Label != "Human-written" || len(res.LimeExplanations) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestExplanationsAbsentVersusEmpty(t *testing.T) {
	absent, err := decodeExplained(normalize.Text, []byte(`{"label":"AI-generated","confidence":0.9}`))
	if err != nil {
		t.Fatalf("decode absent: %v", err)
	}
	if absent.LimeExplanations != nil {
		t.Fatalf("expected nil explanations when key is absent, got %#v", absent.LimeExplanations)
	}
	empty, err := decodeExplained(normalize.Text, []byte(`{"label":"AI-generated","confidence":0.9,"lime_explanations":[]}`))
	if err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if empty.LimeExplanations == nil || len(empty.LimeExplanations) != 0 {
		t.Fatalf("expected empty non-nil explanations, got %#v", empty.LimeExplanations)
	}
}

func TestMissingConfidenceIsNil(t *testing.T) {
	res, err := decodeExplained(normalize.Image, []byte(`{"label":"Real","heatmap_image":"data:x","image":"data:y"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Confidence != nil {
		t.Fatalf("expected nil confidence, got %v", *res.Confidence)
	}
	if res.HeatmapImage != "data:x" || res.Image != "data:y" {
		t.Fatalf("unexpected image refs %+v", res)
	}
}

func TestBackendErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Could not read image file"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).DetectImage(context.Background(), "x.png", []byte("png"))
	if !errors.Is(err, ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
}

func TestNonJSONResponseFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, time.Second).DetectText(context.Background(), "x"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNonSuccessStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).DetectText(context.Background(), "x")
	if !errors.Is(err, ErrBackend) {
		t.Fatalf("expected ErrBackend for 500, got %v", err)
	}
}

func TestSubmissionEmpty(t *testing.T) {
	if !(Submission{Media: normalize.Text, Text: "  \n"}).Empty() {
		t.Fatal("expected whitespace text to be empty")
	}
	if (Submission{Media: normalize.Image, Data: []byte{1}}).Empty() {
		t.Fatal("expected image with data to be non-empty")
	}
	if !(Submission{Media: normalize.Video}).Empty() {
		t.Fatal("expected video without data to be empty")
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("a", 199) + "é and more"
	got := truncate(s, 200)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	if got != strings.Repeat("a", 199)+"…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if truncate("short", 200) != "short" {
		t.Fatal("expected short text untouched")
	}
}
