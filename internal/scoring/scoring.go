// Package scoring compares an expected text with a user transcript.
package scoring

import (
	"slices"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/verte-zerg/shadow/internal/model"
)

// Normalize lowercases text, drops punctuation and splits it into words.
func Normalize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, text)
	return strings.Fields(cleaned)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Score matches distinct expected words against distinct transcript words.
// Repeated words count once on both sides.
func Score(expectedText, userText string) model.ScoreResult {
	expectedWords := Normalize(expectedText)
	userWords := Normalize(userText)

	expectedSet := lo.Uniq(expectedWords)
	userSet := lo.Uniq(userWords)

	matched := lo.Intersect(expectedSet, userSet)
	missed, extra := lo.Difference(expectedSet, userSet)

	result := model.ScoreResult{
		MatchedWords:       sorted(matched),
		MissedWords:        sorted(missed),
		ExtraWords:         sorted(extra),
		TotalExpectedWords: len(expectedSet),
		MatchedCount:       len(matched),
		TotalWords:         len(expectedWords),
	}
	result.Score = percent(result.MatchedCount, result.TotalExpectedWords)
	return result
}

// Analyze lists expected words in order as correct or missed, followed by
// every transcript word absent from the expected text.
func Analyze(expectedText, userText string) []model.WordAnalysis {
	expectedWords := Normalize(expectedText)
	userWords := Normalize(userText)

	userSet := toSet(userWords)
	expectedSet := toSet(expectedWords)

	analysis := make([]model.WordAnalysis, 0, len(expectedWords)+len(userWords))
	for _, word := range expectedWords {
		status := model.WordMissed
		if _, ok := userSet[word]; ok {
			status = model.WordCorrect
		}
		analysis = append(analysis, model.WordAnalysis{Word: word, Status: status})
	}
	// Extras are reported per occurrence even though Score counts them once.
	for _, word := range userWords {
		if _, ok := expectedSet[word]; ok {
			continue
		}
		analysis = append(analysis, model.WordAnalysis{Word: word, Status: model.WordExtra})
	}
	return analysis
}

func percent(matched, total int) float64 {
	if total == 0 {
		return 100
	}
	return round2(float64(matched) / float64(total) * 100)
}

func round2(v float64) float64 {
	return model.Round(v, 2)
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func sorted(words []string) []string {
	out := make([]string, len(words))
	copy(out, words)
	slices.Sort(out)
	return out
}
