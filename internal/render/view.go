package render

import (
	"fmt"
	"io"
	"strings"

	"detect_dashboard/internal/detectapi"
	"detect_dashboard/internal/indicators"
	"detect_dashboard/internal/normalize"
)

type HeatmapPair struct {
	Original string `json:"original"`
	Overlay  string `json:"overlay"`
}

type FrameRow struct {
	Frame      int    `json:"frame"`
	Label      string `json:"label"`
	Confidence string `json:"confidence"`
	Thumbnail  string `json:"thumbnail"`
}

// FrameChart is the series behind the per-frame confidence line chart.
type FrameChart struct {
	Frames      []int     `json:"frames"`
	Confidences []float64 `json:"confidences"`
	Labels      []string  `json:"labels"`
}

type View struct {
	SubmissionID     string            `json:"submissionId"`
	Media            normalize.Media   `json:"media"`
	Label            string            `json:"label"`
	AIProbability    float64           `json:"aiProbability"`
	HumanProbability float64           `json:"humanProbability"`
	AIPercent        int               `json:"aiPercent"`
	HumanPercent     int               `json:"humanPercent"`
	AIBarWidth       string            `json:"aiBarWidth"`
	HumanBarWidth    string            `json:"humanBarWidth"`
	AIText           string            `json:"aiText"`
	HumanText        string            `json:"humanText"`
	Indicators       []string          `json:"indicators"`
	IndicatorSource  indicators.Source `json:"indicatorSource"`
	Heatmap          *HeatmapPair      `json:"heatmap,omitempty"`
	Frames           []FrameRow        `json:"frames,omitempty"`
	Chart            *FrameChart       `json:"chart,omitempty"`
}

type Input struct {
	SubmissionID    string
	Result          detectapi.Result
	Outcome         normalize.Outcome
	Indicators      []string
	IndicatorSource indicators.Source
	// LocalPreview is used as the heatmap's original image when the backend
	// does not echo one back.
	LocalPreview    string
}

func Build(in Input) View {
	ai := normalize.Percent(in.Outcome.AIProbability)
	human := 100 - ai
	v := View{
		SubmissionID:     in.SubmissionID,
		Media:            in.Result.Media,
		Label:            in.Result.Label,
		AIProbability:    in.Outcome.AIProbability,
		HumanProbability: in.Outcome.HumanProbability,
		AIPercent:        ai,
		HumanPercent:     human,
		AIBarWidth:       fmt.Sprintf("%d%%", ai),
		HumanBarWidth:    fmt.Sprintf("%d%%", human),
		AIText:           fmt.Sprintf("%d%% likely AI-generated", ai),
		HumanText:        fmt.Sprintf("%d%% likely authentic", human),
		Indicators:       append([]string(nil), in.Indicators...),
		IndicatorSource:  in.IndicatorSource,
	}
	if in.IndicatorSource == indicators.SourceBackend && in.Result.HeatmapImage != "" {
		original := in.Result.Image
		if original == "" {
			original = in.LocalPreview
		}
		v.Heatmap = &HeatmapPair{Original: original, Overlay: in.Result.HeatmapImage}
	}
	if len(in.Result.FramePredictions) > 0 {
		chart := &FrameChart{}
		for _, f := range in.Result.FramePredictions {
			v.Frames = append(v.Frames, FrameRow{
				Frame:      f.Frame,
				Label:      f.Label,
				Confidence: fmt.Sprintf("%.2f%%", f.Confidence*100),
				Thumbnail:  f.Thumbnail,
			})
			chart.Frames = append(chart.Frames, f.Frame)
			chart.Confidences = append(chart.Confidences, f.Confidence)
			chart.Labels = append(chart.Labels, f.Label)
		}
		v.Chart = chart
	}
	return v
}

// WriteText renders a view for terminals.
func WriteText(w io.Writer, v View) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s result (%s)\n", strings.ToUpper(string(v.Media)), nonEmpty(v.Label, "no label"))
	fmt.Fprintf(&b, "  AI-generated  %s %s\n", bar(v.AIPercent), v.AIText)
	fmt.Fprintf(&b, "  Authentic     %s %s\n", bar(v.HumanPercent), v.HumanText)
	fmt.Fprintf(&b, "Key indicators (%s):\n", v.IndicatorSource)
	for _, ind := range v.Indicators {
		fmt.Fprintf(&b, "  - %s\n", ind)
	}
	if v.Heatmap != nil {
		b.WriteString("Explanation heatmap available\n")
	}
	if len(v.Frames) > 0 {
		b.WriteString("Frame-by-frame analysis:\n")
		for _, f := range v.Frames {
			fmt.Fprintf(&b, "  frame %4d  Label: %s - Confidence: %s\n", f.Frame, f.Label, f.Confidence)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func bar(percent int) string {
	filled := percent / 5
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", 20-filled) + "]"
}

func nonEmpty(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
