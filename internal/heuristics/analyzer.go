package heuristics

import (
	"regexp"
	"strings"
)

// Tokens at or below this length are left out of the frequency map.
const minFrequencyTokenLen = 3

const phraseWords = 3

var sentenceEnd = regexp.MustCompile(`[.!?]+`)
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

type Signals struct {
	WordCount           int
	SentenceCount       int
	AvgWordsPerSentence float64
	RepeatedPhrases     []string
	WordFrequency       map[string]int
}

func (s Signals) RepeatedPhraseCount() int {
	return len(s.RepeatedPhrases)
}

func Analyze(text string) Signals {
	words := strings.Fields(text)
	sentences := SentenceCount(text)
	return Signals{
		WordCount:           len(words),
		SentenceCount:       sentences,
		AvgWordsPerSentence: float64(len(words)) / float64(max(1, sentences)),
		RepeatedPhrases:     FindRepeatedPhrases(text),
		WordFrequency:       WordFrequency(text),
	}
}

func SentenceCount(text string) int {
	count := 0
	for _, s := range sentenceEnd.Split(text, -1) {
		if s != "" {
			count++
		}
	}
	return count
}

// FindRepeatedPhrases returns each distinct 3-word window that appears again,
// as a substring, in the words after it. Results keep first-occurrence order.
func FindRepeatedPhrases(text string) []string {
	words := tokenize(text)
	phrases := []string{}
	seen := map[string]struct{}{}
	for i := 0; i+phraseWords <= len(words); i++ {
		phrase := strings.Join(words[i:i+phraseWords], " ")
		if _, ok := seen[phrase]; ok {
			continue
		}
		if strings.Contains(strings.Join(words[i+phraseWords:], " "), phrase) {
			seen[phrase] = struct{}{}
			phrases = append(phrases, phrase)
		}
	}
	return phrases
}

func WordFrequency(text string) map[string]int {
	freq := map[string]int{}
	for _, w := range tokenize(text) {
		if len([]rune(w)) > minFrequencyTokenLen {
			freq[w]++
		}
	}
	return freq
}

func tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}
