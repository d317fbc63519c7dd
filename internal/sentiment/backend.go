package sentiment

import (
	"context"
	"errors"
)

// ErrBackendUnavailable marks a scoring tier as unusable for this call. The
// chain degrades to the next tier; it never reaches the caller.
var ErrBackendUnavailable = errors.New("sentiment backend unavailable")

// LabelScores maps candidate labels to the backend's scores for one text.
type LabelScores map[string]float64

// Backend is one tier of the classification fallback chain. Implementations
// return one LabelScores per input text, in input order, or
// ErrBackendUnavailable when the tier cannot serve the call.
type Backend interface {
	Name() string
	ScoreBatch(ctx context.Context, texts []string) ([]LabelScores, error)
}

// CandidateLabels is the fixed label set scored by every backend.
var CandidateLabels = []string{"positive", "negative", "neutral"}

func (ls LabelScores) best() (string, float64) {
	bestLabel := ""
	bestScore := 0.0
	for _, label := range CandidateLabels {
		if score, ok := ls[label]; ok && (bestLabel == "" || score > bestScore) {
			bestLabel = label
			bestScore = score
		}
	}
	return bestLabel, bestScore
}
