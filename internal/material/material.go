// Package material turns practice text into sentences.
package material

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// LoadSentences reads a text file and splits it into sentences.
// Blank lines separate paragraphs; line breaks inside a paragraph are joined.
func LoadSentences(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	var out []string
	var paragraph []string
	flush := func() error {
		if len(paragraph) == 0 {
			return nil
		}
		split, err := SplitSentences(strings.Join(paragraph, " "))
		if err != nil {
			return err
		}
		out = append(out, split...)
		paragraph = paragraph[:0]
		return nil
	}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		paragraph = append(paragraph, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("material file is empty")
	}
	return out, nil
}

var englishTokenizer = sync.OnceValues(func() (*sentences.DefaultSentenceTokenizer, error) {
	return english.NewSentenceTokenizer(nil)
})

// SplitSentences segments text with the English Punkt model, so abbreviations
// such as "Dr." and decimals stay inside their sentence. Whitespace inside a
// sentence is collapsed and empty pieces are dropped.
func SplitSentences(text string) ([]string, error) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil, nil
	}
	tokenizer, err := englishTokenizer()
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence model: %w", err)
	}
	var out []string
	for _, sentence := range tokenizer.Tokenize(text) {
		if s := strings.TrimSpace(sentence.Text); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
