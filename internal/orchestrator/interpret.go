package orchestrator

import (
	"detect_dashboard/internal/detectapi"
	"detect_dashboard/internal/indicators"
	"detect_dashboard/internal/normalize"
	"detect_dashboard/internal/render"
)

// Interpret turns a backend result into a view: normalize, pick indicators,
// project for rendering. heuristic enables the text heuristics when the
// backend sends no explanations.
func Interpret(id string, s detectapi.Submission, res detectapi.Result, heuristic bool, localPreview string) render.View {
	if res.Media == "" {
		res.Media = s.Media
	}
	outcome := normalize.Normalize(res.Label, res.Confidence, res.Media)
	req := indicators.Request{
		Label:         res.Label,
		Confidence:    res.Confidence,
		AIProbability: outcome.AIProbability,
		Explanations:  res.LimeExplanations,
		Heuristic:     heuristic,
	}
	if heuristic {
		req.HeuristicContext = indicators.ContextFromText(s.Text)
	}
	list, source := indicators.Select(req)
	return render.Build(render.Input{
		SubmissionID:    id,
		Result:          res,
		Outcome:         outcome,
		Indicators:      list,
		IndicatorSource: source,
		LocalPreview:    localPreview,
	})
}
