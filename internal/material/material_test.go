package material

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"basic", "Hello world. How are you?", []string{"Hello world.", "How are you?"}},
		{"no terminal", "just words here", []string{"just words here"}},
		{"abbreviation", "Dr. Smith arrived late. The meeting started without him.",
			[]string{"Dr. Smith arrived late.", "The meeting started without him."}},
		{"decimal", "It costs 3.50 today. That is cheap.", []string{"It costs 3.50 today.", "That is cheap."}},
		{"whitespace", "  The first line.\n\tThe second  line.  ", []string{"The first line.", "The second line."}},
		{"empty", "   ", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SplitSentences(tc.text)
			if err != nil {
				t.Fatalf("SplitSentences(%q): %v", tc.text, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("SplitSentences(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestLoadSentences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passage.txt")
	content := "The weather is\nbeautiful today.\n\nPractice makes perfect\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := LoadSentences(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"The weather is beautiful today.", "Practice makes perfect"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LoadSentences = %q, want %q", got, want)
	}
}

func TestLoadSentencesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("\n  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSentences(path); err == nil {
		t.Fatalf("expected error for empty file")
	}
}
