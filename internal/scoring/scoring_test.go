package scoring

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/verte-zerg/shadow/internal/model"
)

func TestNormalize(t *testing.T) {
	got := Normalize("  Hello,   World!  It's   café_time 42. ")
	want := []string{"hello", "world", "its", "café_time", "42"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected words: %v", got)
	}
	if words := Normalize(""); len(words) != 0 {
		t.Fatalf("expected no words for empty text, got %v", words)
	}
}

func TestScoreExample(t *testing.T) {
	res := Score("Hello my name is John", "hello name is john")
	if res.Score != 80.0 {
		t.Fatalf("expected score 80, got %v", res.Score)
	}
	if !reflect.DeepEqual(res.MissedWords, []string{"my"}) {
		t.Fatalf("unexpected missed words: %v", res.MissedWords)
	}
	if len(res.ExtraWords) != 0 {
		t.Fatalf("expected no extra words, got %v", res.ExtraWords)
	}
	if !reflect.DeepEqual(res.MatchedWords, []string{"hello", "is", "john", "name"}) {
		t.Fatalf("matched words not sorted: %v", res.MatchedWords)
	}
	if res.TotalExpectedWords != 5 || res.MatchedCount != 4 {
		t.Fatalf("unexpected counts: %+v", res)
	}
}

func TestScoreEmptyExpected(t *testing.T) {
	res := Score("", "anything at all")
	if res.Score != 100 {
		t.Fatalf("expected 100 for empty expected text, got %v", res.Score)
	}
	if !reflect.DeepEqual(res.ExtraWords, []string{"all", "anything", "at"}) {
		t.Fatalf("unexpected extra words: %v", res.ExtraWords)
	}
}

func TestScoreEmptyTranscript(t *testing.T) {
	res := Score("one two three", "")
	if res.Score != 0 {
		t.Fatalf("expected 0, got %v", res.Score)
	}
	if len(res.MissedWords) != 3 {
		t.Fatalf("expected 3 missed words, got %v", res.MissedWords)
	}
}

func TestScoreRounding(t *testing.T) {
	res := Score("a b c", "a")
	if res.Score != 33.33 {
		t.Fatalf("expected 33.33, got %v", res.Score)
	}
	res = Score("a b c", "a b")
	if res.Score != 66.67 {
		t.Fatalf("expected 66.67, got %v", res.Score)
	}
}

func TestScoreRoundsHalfToEven(t *testing.T) {
	words := make([]string, 32)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	res := Score(strings.Join(words, " "), "w0")
	if res.Score != 3.12 {
		t.Fatalf("expected 1/32 to score 3.12, got %v", res.Score)
	}
}

func TestNormalizeKeepsNumericSymbols(t *testing.T) {
	got := Normalize("x² plus ½ cup")
	want := []string{"x²", "plus", "½", "cup"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected words: %q", got)
	}
}

func TestScoreDuplicatesCountOnce(t *testing.T) {
	res := Score("the cat and the dog", "the cat the cat and dog dog")
	if res.Score != 100 {
		t.Fatalf("expected 100 with repeated words, got %v", res.Score)
	}
	if res.TotalExpectedWords != 4 || res.TotalWords != 5 {
		t.Fatalf("unexpected totals: %+v", res)
	}
}

func TestScorePartitionProperties(t *testing.T) {
	cases := []struct {
		expected string
		user     string
	}{
		{"Hello my name is John", "hello name is john"},
		{"The quick brown fox.", "a quick brown dog jumps"},
		{"Repeat repeat repeat", "repeat"},
		{"", ""},
		{"Numbers 1 2 3", "numbers 3 4"},
	}
	for _, tc := range cases {
		res := Score(tc.expected, tc.user)
		expectedSet := toSet(Normalize(tc.expected))

		union := map[string]struct{}{}
		for _, w := range res.MatchedWords {
			union[w] = struct{}{}
		}
		for _, w := range res.MissedWords {
			if _, dup := union[w]; dup {
				t.Fatalf("%q: word %q both matched and missed", tc.expected, w)
			}
			union[w] = struct{}{}
		}
		if !reflect.DeepEqual(union, expectedSet) {
			t.Fatalf("%q: matched+missed %v != expected set %v", tc.expected, union, expectedSet)
		}
		for _, w := range res.ExtraWords {
			if _, ok := expectedSet[w]; ok {
				t.Fatalf("%q: extra word %q is expected", tc.expected, w)
			}
		}
		if res.Score < 0 || res.Score > 100 {
			t.Fatalf("%q: score out of range: %v", tc.expected, res.Score)
		}
	}
}

func TestAnalyzeOrderAndExtras(t *testing.T) {
	got := Analyze("Hello, my name is John.", "hello um name um is john yeah")
	want := []model.WordAnalysis{
		{Word: "hello", Status: model.WordCorrect},
		{Word: "my", Status: model.WordMissed},
		{Word: "name", Status: model.WordCorrect},
		{Word: "is", Status: model.WordCorrect},
		{Word: "john", Status: model.WordCorrect},
		{Word: "um", Status: model.WordExtra},
		{Word: "um", Status: model.WordExtra},
		{Word: "yeah", Status: model.WordExtra},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected analysis:\n got %v\nwant %v", got, want)
	}
}

func TestAnalyzeIdentical(t *testing.T) {
	text := "Practice makes perfect, practice daily."
	for _, entry := range Analyze(text, text) {
		if entry.Status != model.WordCorrect {
			t.Fatalf("expected every word correct, got %+v", entry)
		}
	}
	if res := Score(text, text); res.Score != 100 {
		t.Fatalf("expected 100 for identical text, got %v", res.Score)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	if got := Analyze("", ""); len(got) != 0 {
		t.Fatalf("expected empty analysis, got %v", got)
	}
}
