package stats

import (
	"sort"

	"github.com/verte-zerg/shadow/internal/model"
)

// WordCount is how often a word was missed.
type WordCount struct {
	Word  string
	Count int
}

// TopMissedWords returns the n words missed most often across logs.
func TopMissedWords(logs []model.PracticeLog, n int) []WordCount {
	if n <= 0 || len(logs) == 0 {
		return nil
	}
	counts := map[string]int{}
	for _, log := range logs {
		for _, w := range log.MissedWords {
			counts[w]++
		}
	}
	items := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		items = append(items, WordCount{Word: w, Count: c})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Word < items[j].Word
		}
		return items[i].Count > items[j].Count
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
