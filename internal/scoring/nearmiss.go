package scoring

import (
	"github.com/antzucaro/matchr"

	"github.com/verte-zerg/shadow/internal/model"
)

// nearMissThreshold is the minimum Jaro-Winkler similarity for a spelling match.
const nearMissThreshold = 0.85

// NearMiss pairs a missed word with the transcript word most likely said in its place.
type NearMiss struct {
	Expected   string
	Said       string
	Similarity float64
	Phonetic   bool
}

// NearMisses suggests, for each missed word, the closest extra word. A
// candidate qualifies when it sounds alike (shared Double Metaphone code) or
// is spelled alike. Phonetic matches win over spelling-only matches.
func NearMisses(result model.ScoreResult) []NearMiss {
	if len(result.MissedWords) == 0 || len(result.ExtraWords) == 0 {
		return nil
	}
	extraCodes := make([]map[string]struct{}, len(result.ExtraWords))
	for i, w := range result.ExtraWords {
		extraCodes[i] = metaphoneCodes(w)
	}

	var out []NearMiss
	for _, missed := range result.MissedWords {
		codes := metaphoneCodes(missed)
		var best NearMiss
		found := false
		for i, said := range result.ExtraWords {
			sim := matchr.JaroWinkler(missed, said, false)
			phonetic := codesOverlap(codes, extraCodes[i])
			if !phonetic && sim < nearMissThreshold {
				continue
			}
			candidate := NearMiss{Expected: missed, Said: said, Similarity: sim, Phonetic: phonetic}
			if !found || better(candidate, best) {
				best = candidate
				found = true
			}
		}
		if found {
			out = append(out, best)
		}
	}
	return out
}

func better(a, b NearMiss) bool {
	if a.Phonetic != b.Phonetic {
		return a.Phonetic
	}
	return a.Similarity > b.Similarity
}

func metaphoneCodes(word string) map[string]struct{} {
	codes := make(map[string]struct{}, 2)
	p, s := matchr.DoubleMetaphone(word)
	if p != "" {
		codes[p] = struct{}{}
	}
	if s != "" {
		codes[s] = struct{}{}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
