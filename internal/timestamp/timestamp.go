// Package timestamp assigns sentence windows inside synthesized audio.
package timestamp

import (
	"strings"

	"github.com/verte-zerg/shadow/internal/model"
)

// Allocate splits totalDuration across sentences proportionally to their word
// counts. Boundaries are rounded to milliseconds except the final end, which
// is always exactly totalDuration. Empty input, or input without any words,
// yields an empty slice.
func Allocate(sentences []string, totalDuration float64) []model.SentenceTimestamp {
	out := []model.SentenceTimestamp{}
	if len(sentences) == 0 {
		return out
	}
	counts := make([]int, len(sentences))
	totalWords := 0
	for i, s := range sentences {
		counts[i] = len(strings.Fields(s))
		totalWords += counts[i]
	}
	if totalWords == 0 {
		return out
	}

	current := 0.0
	last := len(sentences) - 1
	for i, s := range sentences {
		duration := float64(counts[i]) / float64(totalWords) * totalDuration
		start := round3(current)
		end := round3(current + duration)
		if i == last {
			end = totalDuration
		}
		out = append(out, model.SentenceTimestamp{
			Text:          s,
			StartTime:     start,
			EndTime:       end,
			SequenceOrder: i,
		})
		current = end
	}
	return out
}

// At returns the index of the sentence playing at offset seconds, or -1 when
// offset precedes the first sentence. Offsets past the end map to the last one.
func At(timestamps []model.SentenceTimestamp, offset float64) int {
	if len(timestamps) == 0 || offset < timestamps[0].StartTime {
		return -1
	}
	for i, ts := range timestamps {
		if offset < ts.EndTime {
			return i
		}
	}
	return len(timestamps) - 1
}

func round3(v float64) float64 {
	return model.Round(v, 3)
}
