package normalize

import "testing"

func ptr(v float64) *float64 { return &v }

var confidences = []float64{0, 0.0001, 0.1, 0.2, 0.25, 0.3333, 0.4, 0.5, 0.6, 0.7, 0.75, 0.8, 0.9, 0.95, 0.9999, 1}

func TestSyntheticLabelUsesConfidence(t *testing.T) {
	cases := []struct {
		media Media
		label string
	}{
		{Video, "Fake"},
		{Image, "AI-generated"},
		{Text, "AI-generated"},
	}
	for _, tc := range cases {
		for _, c := range confidences {
			out := Normalize(tc.label, ptr(c), tc.media)
			if out.AIProbability != c {
				t.Fatalf("%s/%s conf=%v: expected ai=%v, got %v", tc.media, tc.label, c, c, out.AIProbability)
			}
		}
	}
}

func TestAuthenticLabelInvertsConfidence(t *testing.T) {
	cases := []struct {
		media Media
		label string
	}{
		{Video, "Real"},
		{Image, "Real"},
		{Text, "Human-written"},
	}
	for _, tc := range cases {
		for _, c := range confidences {
			out := Normalize(tc.label, ptr(c), tc.media)
			if out.AIProbability != 1-c {
				t.Fatalf("%s/%s conf=%v: expected ai=%v, got %v", tc.media, tc.label, c, 1-c, out.AIProbability)
			}
		}
	}
}

func TestProbabilitiesSumToOne(t *testing.T) {
	labels := []string{"Fake", "Real", "AI-generated", "Human-written", "", "Unsure"}
	inputs := append([]float64{-0.5, 1.5, 7}, confidences...)
	for _, m := range []Media{Video, Image, Text} {
		for _, l := range labels {
			for _, c := range inputs {
				out := Normalize(l, ptr(c), m)
				if out.AIProbability < 0 || out.AIProbability > 1 {
					t.Fatalf("ai probability out of range: %v", out.AIProbability)
				}
				if out.HumanProbability < 0 || out.HumanProbability > 1 {
					t.Fatalf("human probability out of range: %v", out.HumanProbability)
				}
				if out.AIProbability+out.HumanProbability != 1 {
					t.Fatalf("%s/%s conf=%v: probabilities do not sum to 1: %+v", m, l, c, out)
				}
			}
		}
	}
}

func TestMissingConfidenceDefaults(t *testing.T) {
	cases := []struct {
		media Media
		label string
		want  float64
	}{
		{Video, "Fake", 0.8},
		{Video, "Real", 0.2},
		{Image, "AI-generated", 0.8},
		{Image, "Real", 0.2},
		{Text, "AI-generated", 0.8},
		{Text, "Human-written", 0.2},
		{Text, "Mystery", 0.5},
		{Video, "AI-generated", 0.5},
	}
	for _, tc := range cases {
		out := Normalize(tc.label, nil, tc.media)
		if out.AIProbability != tc.want {
			t.Fatalf("%s/%s: expected %v, got %v", tc.media, tc.label, tc.want, out.AIProbability)
		}
	}
}

func TestUnknownLabelUsesConfidenceDirectly(t *testing.T) {
	out := Normalize("Uncertain", ptr(0.37), Image)
	if out.AIProbability != 0.37 {
		t.Fatalf("expected 0.37, got %v", out.AIProbability)
	}
}

func TestOutOfRangeConfidenceIsClamped(t *testing.T) {
	if out := Normalize("Fake", ptr(1.4), Video); out.AIProbability != 1 || out.HumanProbability != 0 {
		t.Fatalf("expected clamp to 1, got %+v", out)
	}
	if out := Normalize("Real", ptr(1.4), Video); out.AIProbability != 0 || out.HumanProbability != 1 {
		t.Fatalf("expected clamp to 0, got %+v", out)
	}
}

func TestPercent(t *testing.T) {
	cases := map[float64]int{0: 0, 0.9: 90, 0.29: 29, 0.125: 13, 1: 100, 1.2: 100, -1: 0}
	for in, want := range cases {
		if got := Percent(in); got != want {
			t.Fatalf("Percent(%v): expected %d, got %d", in, want, got)
		}
	}
}

func TestParseMedia(t *testing.T) {
	if m, err := ParseMedia(" Video "); err != nil || m != Video {
		t.Fatalf("expected video, got %q %v", m, err)
	}
	if _, err := ParseMedia("audio"); err == nil {
		t.Fatal("expected error for unknown media")
	}
}
