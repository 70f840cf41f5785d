package indicators

import (
	"fmt"
	"strings"

	"detect_dashboard/internal/heuristics"
)

const (
	highThreshold     = 0.7
	moderateThreshold = 0.4
)

// Source records where an indicator list came from.
type Source string

const (
	SourceBackend   Source = "backend"
	SourceHeuristic Source = "heuristic"
	SourceFallback  Source = "fallback"
)

type Context struct {
	AvgWordsPerSentence float64
	RepeatedPhraseCount int
	RawText             string
}

func ContextFromText(text string) Context {
	s := heuristics.Analyze(text)
	return Context{
		AvgWordsPerSentence: s.AvgWordsPerSentence,
		RepeatedPhraseCount: s.RepeatedPhraseCount(),
		RawText:             text,
	}
}

// Generate produces tiered heuristic indicators. The first entry is always the
// headline for the tier.
func Generate(aiProbability float64, c Context) []string {
	switch {
	case aiProbability > highThreshold:
		return highTier(c)
	case aiProbability > moderateThreshold:
		return moderateTier(c)
	default:
		return lowTier(c)
	}
}

func highTier(c Context) []string {
	out := []string{"High confidence in AI-generated content detection"}
	if c.AvgWordsPerSentence > 20 {
		out = append(out, fmt.Sprintf("Unusually consistent sentence length (avg: %.1f words)", c.AvgWordsPerSentence))
	}
	if c.RepeatedPhraseCount > 0 {
		out = append(out, "Detected repeated phrases or patterns")
	}
	if strings.Contains(c.RawText, "In conclusion") || strings.Contains(c.RawText, "To summarize") {
		out = append(out, "Uses formulaic transition phrases common in AI writing")
	}
	return append(out, "Limited stylistic variations typical of AI generation")
}

func moderateTier(c Context) []string {
	out := []string{"Mixed indicators detected (moderate confidence)"}
	if c.RepeatedPhraseCount > 0 {
		out = append(out, "Some repetitive patterns detected")
	} else {
		out = append(out, "Few repetitive patterns detected")
	}
	out = append(out, "Balanced mix of formulaic and varied expressions")
	if c.AvgWordsPerSentence > 15 && c.AvgWordsPerSentence < 20 {
		out = append(out, "Moderately consistent sentence structure")
	}
	return out
}

func lowTier(c Context) []string {
	out := []string{"Strong indicators of human-written content"}
	if c.AvgWordsPerSentence < 15 || c.AvgWordsPerSentence > 25 {
		out = append(out, "Natural variation in sentence length")
	}
	if c.RepeatedPhraseCount == 0 {
		out = append(out, "No significant repetitive patterns detected")
	}
	// Plain substring checks: "my" also matches "mystery".
	if strings.Contains(c.RawText, "I") || strings.Contains(c.RawText, "my") || strings.Contains(c.RawText, "we") {
		out = append(out, "Personal perspective indicators present")
	}
	return append(out, "Organic flow and natural language transitions")
}

// Fallback restates the label and confidence followed by three static
// visual-inspection hints.
func Fallback(label string, confidence *float64) []string {
	label = strings.TrimSpace(label)
	if label == "" {
		label = "Unknown"
	}
	headline := fmt.Sprintf("%s detected (confidence unavailable)", label)
	if confidence != nil {
		headline = fmt.Sprintf("%s detected with %d%% confidence", label, int(*confidence*100+0.5))
	}
	return []string{
		headline,
		"Check for unnatural artifacts or inconsistencies",
		"Look for unusual lighting or shadows",
		"Examine edges of objects for blurring or artifacts",
	}
}

type Request struct {
	Label            string
	Confidence       *float64
	AIProbability    float64
	Explanations     []string
	Heuristic        bool
	HeuristicContext Context
}

// Select picks the indicator list for one result: backend explanations
// verbatim when present, otherwise heuristics if the flow opted in, otherwise
// the generic fallback.
func Select(r Request) ([]string, Source) {
	if len(r.Explanations) > 0 {
		out := make([]string, len(r.Explanations))
		copy(out, r.Explanations)
		return out, SourceBackend
	}
	if r.Heuristic {
		return Generate(r.AIProbability, r.HeuristicContext), SourceHeuristic
	}
	return Fallback(r.Label, r.Confidence), SourceFallback
}
