package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/shadow/internal/model"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// subtitleRunes styles sentences relative to the active one: spoken
// sentences are dimmed, the active one highlighted, the rest pending.
func subtitleRunes(sentences []model.SentenceTimestamp, active int) []styledRune {
	var out []styledRune
	for i, sentence := range sentences {
		style := pendingStyle
		switch {
		case i < active:
			style = spokenStyle
		case i == active:
			style = activeStyle
		}
		if i > 0 {
			out = appendText(out, " ", pendingStyle)
		}
		out = appendText(out, sentence.Text, style)
	}
	return out
}

// analysisRunes colors words by their comparison status.
func analysisRunes(analysis []model.WordAnalysis) []styledRune {
	var out []styledRune
	for i, word := range analysis {
		if i > 0 {
			out = appendText(out, " ", pendingStyle)
		}
		switch word.Status {
		case model.WordCorrect:
			out = appendText(out, word.Word, correctStyle)
		case model.WordMissed:
			out = appendText(out, word.Word, missedStyle)
		default:
			out = appendText(out, "+"+word.Word, extraStyle)
		}
	}
	return out
}

func appendText(out []styledRune, text string, style lipgloss.Style) []styledRune {
	for _, r := range text {
		isSpace := r == ' '
		s := string(r)
		if !isSpace {
			s = style.Render(s)
		}
		out = append(out, styledRune{s: s, width: runewidth.RuneWidth(r), isSpace: isSpace})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
