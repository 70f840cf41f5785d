package detectapi

import (
	"strings"

	"detect_dashboard/internal/normalize"
)

type FramePrediction struct {
	Frame      int     `json:"frame"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Thumbnail  string  `json:"thumbnail"`
}

// Result is the flattened backend answer for any media type. Confidence is nil
// when the backend omitted it; LimeExplanations is nil when the key was absent.
type Result struct {
	Media            normalize.Media   `json:"media"`
	Label            string            `json:"label"`
	Confidence       *float64          `json:"confidence,omitempty"`
	FramePredictions []FramePrediction `json:"frame_predictions,omitempty"`
	LimeExplanations []string          `json:"lime_explanations,omitempty"`
	HeatmapImage     string            `json:"heatmap_image,omitempty"`
	Image            string            `json:"image,omitempty"`
}

type Submission struct {
	Media    normalize.Media
	FileName string
	Data     []byte
	Text     string
}

func (s Submission) Empty() bool {
	if s.Media == normalize.Text {
		return strings.TrimSpace(s.Text) == ""
	}
	return len(s.Data) == 0
}

type verdict struct {
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence"`
}

type videoResponse struct {
	Final            *verdict          `json:"final"`
	FramePredictions []FramePrediction `json:"frame_predictions"`
	Error            string            `json:"error"`
}

type explainedResponse struct {
	verdict
	LimeExplanations []string `json:"lime_explanations"`
	HeatmapImage     string   `json:"heatmap_image"`
	Image            string   `json:"image"`
	Error            string   `json:"error"`
}

type textRequest struct {
	Text    string `json:"text"`
	Explain bool   `json:"explain"`
}
