// Package feedback writes coaching text for a scored practice attempt.
package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/verte-zerg/shadow/internal/model"
	"github.com/verte-zerg/shadow/internal/scoring"
)

// Input describes the attempt to comment on.
type Input struct {
	ExpectedText string
	UserText     string
	Result       model.ScoreResult
	NearMisses   []scoring.NearMiss
}

// Writer produces feedback text.
type Writer interface {
	Write(ctx context.Context, in Input) (string, error)
}

// maxListedMissed is the number of missed words named individually.
const maxListedMissed = 3

// Template is the offline coach built from fixed phrases.
type Template struct{}

// Write implements Writer. It never fails.
func (Template) Write(_ context.Context, in Input) (string, error) {
	return Compose(in), nil
}

// Compose builds the template feedback for an attempt.
func Compose(in Input) string {
	score := in.Result.Score
	parts := []string{encouragement(score)}

	missed := in.Result.MissedWords
	switch {
	case len(missed) == 0:
	case len(missed) <= maxListedMissed:
		parts = append(parts, fmt.Sprintf("Focus on pronouncing these words more clearly: %s.", strings.Join(missed, ", ")))
	default:
		parts = append(parts, fmt.Sprintf("Try to include all words - you missed %d words. Slow down and enunciate each word carefully.", len(missed)))
	}

	for _, nm := range in.NearMisses {
		parts = append(parts, fmt.Sprintf("You said %q where the audio says %q.", nm.Said, nm.Expected))
	}

	if len(in.Result.ExtraWords) > 0 {
		parts = append(parts, "Be careful not to add extra words. Listen closely to the original audio.")
	}

	if score < 100 {
		parts = append(parts, "Keep practicing daily to see consistent improvement!")
	} else {
		parts = append(parts, "Perfect! Your hard work is paying off. Try more challenging materials!")
	}
	return strings.Join(parts, " ")
}

func encouragement(score float64) string {
	switch {
	case score >= 90:
		return "Excellent work! Your pronunciation is very clear and accurate."
	case score >= 80:
		return "Great job! You're doing really well with your pronunciation."
	case score >= 70:
		return "Good effort! You're making solid progress."
	case score >= 60:
		return "Nice try! Keep practicing to improve further."
	default:
		return "Keep practicing! Every attempt makes you better."
	}
}
