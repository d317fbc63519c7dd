package sentiment

import (
	"encoding/json"
	"testing"
)

func TestDecodeZeroShotScoresFlatShape(t *testing.T) {
	raw := json.RawMessage(`[
		{"label": "positive", "score": 0.91},
		{"label": "neutral", "score": 0.06},
		{"label": "negative", "score": 0.03}
	]`)

	scores, ok := decodeZeroShotScores(raw)
	if !ok {
		t.Fatal("decodeZeroShotScores() ok = false, want true")
	}
	if scores["positive"] != 0.91 {
		t.Errorf("scores[positive] = %v, want 0.91", scores["positive"])
	}

	label, score := scores.best()
	if label != "positive" || score != 0.91 {
		t.Errorf("best() = (%q, %v), want (positive, 0.91)", label, score)
	}
}

func TestDecodeZeroShotScoresLegacyShape(t *testing.T) {
	raw := json.RawMessage(`{
		"sequence": "great video",
		"labels": ["negative", "positive", "neutral"],
		"scores": [0.7, 0.2, 0.1]
	}`)

	scores, ok := decodeZeroShotScores(raw)
	if !ok {
		t.Fatal("decodeZeroShotScores() ok = false, want true")
	}

	label, score := scores.best()
	if label != "negative" || score != 0.7 {
		t.Errorf("best() = (%q, %v), want (negative, 0.7)", label, score)
	}
}

func TestDecodeZeroShotScoresRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `no`},
		{"empty array", `[]`},
		{"missing labels", `{"scores": [0.5, 0.5]}`},
		{"length mismatch", `{"labels": ["positive"], "scores": [0.4, 0.6]}`},
		{"entries without label", `[{"score": 0.9}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := decodeZeroShotScores(json.RawMessage(tt.raw)); ok {
				t.Errorf("decodeZeroShotScores(%q) ok = true, want false", tt.raw)
			}
		})
	}
}

func TestDecodeZeroShotBatch(t *testing.T) {
	raw := json.RawMessage(`[
		[{"label": "positive", "score": 0.8}, {"label": "negative", "score": 0.2}],
		{"labels": ["neutral", "positive"], "scores": [0.6, 0.4]}
	]`)

	scores, ok := decodeZeroShotBatch(raw, 2)
	if !ok {
		t.Fatal("decodeZeroShotBatch() ok = false, want true")
	}
	if len(scores) != 2 {
		t.Fatalf("len(scores) = %d, want 2", len(scores))
	}

	if label, _ := scores[0].best(); label != "positive" {
		t.Errorf("scores[0].best() label = %q, want positive", label)
	}
	if label, _ := scores[1].best(); label != "neutral" {
		t.Errorf("scores[1].best() label = %q, want neutral", label)
	}
}

func TestDecodeZeroShotBatchSingleText(t *testing.T) {
	// A single input can come back as the bare single-text shape rather than
	// a one-element batch.
	raw := json.RawMessage(`[{"label": "negative", "score": 0.77}]`)

	scores, ok := decodeZeroShotBatch(raw, 1)
	if !ok {
		t.Fatal("decodeZeroShotBatch() ok = false, want true")
	}
	if len(scores) != 1 {
		t.Fatalf("len(scores) = %d, want 1", len(scores))
	}
	if label, score := scores[0].best(); label != "negative" || score != 0.77 {
		t.Errorf("best() = (%q, %v), want (negative, 0.77)", label, score)
	}
}

func TestDecodeZeroShotBatchMalformedEntry(t *testing.T) {
	raw := json.RawMessage(`[
		[{"label": "positive", "score": 0.8}],
		"garbage"
	]`)

	scores, ok := decodeZeroShotBatch(raw, 2)
	if !ok {
		t.Fatal("decodeZeroShotBatch() ok = false, want true")
	}
	if scores[1] != nil {
		t.Errorf("scores[1] = %v, want nil for malformed entry", scores[1])
	}
}

func TestDecodeZeroShotBatchCountMismatch(t *testing.T) {
	raw := json.RawMessage(`[[{"label": "positive", "score": 0.8}]]`)

	if _, ok := decodeZeroShotBatch(raw, 3); ok {
		t.Error("decodeZeroShotBatch() ok = true for count mismatch, want false")
	}
}
