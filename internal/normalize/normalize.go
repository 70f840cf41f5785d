package normalize

import (
	"fmt"
	"strings"
)

type Media string

const (
	Video Media = "video"
	Image Media = "image"
	Text  Media = "text"
)

func ParseMedia(s string) (Media, error) {
	switch Media(strings.ToLower(strings.TrimSpace(s))) {
	case Video:
		return Video, nil
	case Image:
		return Image, nil
	case Text:
		return Text, nil
	default:
		return "", fmt.Errorf("unknown media type %q", s)
	}
}

// Polarity names which backend label means synthetic and which means
// authentic for one media type.
type Polarity struct {
	SyntheticLabel string
	AuthenticLabel string
}

var polarities = map[Media]Polarity{
	Video: {SyntheticLabel: "Fake", AuthenticLabel: "Real"},
	Image: {SyntheticLabel: "AI-generated", AuthenticLabel: "Real"},
	Text:  {SyntheticLabel: "AI-generated", AuthenticLabel: "Human-written"},
}

const (
	defaultSynthetic = 0.8
	defaultAuthentic = 0.2
	defaultNeutral   = 0.5
)

func PolarityFor(m Media) Polarity {
	return polarities[m]
}

// Outcome always satisfies AIProbability+HumanProbability == 1 with both in [0,1].
type Outcome struct {
	AIProbability    float64 `json:"aiProbability"`
	HumanProbability float64 `json:"humanProbability"`
}

// Normalize maps a backend label and optional confidence onto the canonical
// AI probability. Unknown labels fall back to the confidence itself, or 0.5.
func Normalize(label string, confidence *float64, m Media) Outcome {
	p := PolarityFor(m)
	var ai float64
	switch {
	case p.SyntheticLabel != "" && label == p.SyntheticLabel:
		ai = valueOr(confidence, defaultSynthetic)
	case p.AuthenticLabel != "" && label == p.AuthenticLabel:
		if confidence != nil {
			ai = 1 - *confidence
		} else {
			ai = defaultAuthentic
		}
	default:
		ai = valueOr(confidence, defaultNeutral)
	}
	ai = clamp01(ai)
	return Outcome{AIProbability: ai, HumanProbability: 1 - ai}
}

func Percent(p float64) int {
	return int(clamp01(p)*100 + 0.5)
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
