package sentiment

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/spacesedan/vidinsight/config"
	"github.com/spacesedan/vidinsight/internal/clients"
)

// RemoteBackend scores texts through the Hugging Face zero-shot inference
// API. A whole batch travels in one request. Timeouts, HTTP errors and
// unrecognized response shapes all collapse into ErrBackendUnavailable; the
// chain falls through to the local tier.
type RemoteBackend struct {
	client        *clients.HuggingFaceClient
	singleTimeout time.Duration
	batchTimeout  time.Duration
}

func NewRemoteBackend() *RemoteBackend {
	return &RemoteBackend{
		client:        clients.GetHuggingFaceClient(),
		singleTimeout: config.GetDuration("HF_SINGLE_TIMEOUT", 30*time.Second),
		batchTimeout:  config.GetDuration("HF_BATCH_TIMEOUT", 120*time.Second),
	}
}

func (r *RemoteBackend) Name() string { return "hf-zero-shot" }

func (r *RemoteBackend) ScoreBatch(ctx context.Context, texts []string) ([]LabelScores, error) {
	if len(texts) == 0 {
		return []LabelScores{}, nil
	}

	timeout := r.batchTimeout
	if len(texts) == 1 {
		timeout = r.singleTimeout
	}

	raw, err := r.client.ZeroShot(ctx, texts, CandidateLabels, true, timeout)
	if err != nil {
		slog.Warn("[Sentiment] Zero-shot API unavailable",
			slog.String("error", err.Error()))
		return nil, ErrBackendUnavailable
	}

	scores, ok := decodeZeroShotBatch(raw, len(texts))
	if !ok {
		slog.Warn("[Sentiment] Unexpected zero-shot response format")
		return nil, ErrBackendUnavailable
	}
	return scores, nil
}

// flatEntry is the router response shape: [{"label": "...", "score": ...}, ...]
type flatEntry struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// legacyEntry is the older shape: {"sequence": "...", "labels": [...], "scores": [...]}
type legacyEntry struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// decodeZeroShotScores decodes one text's label→score mapping, accepting
// either supported shape. Anything else is rejected.
func decodeZeroShotScores(raw json.RawMessage) (LabelScores, bool) {
	var flat []flatEntry
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		valid := true
		scores := make(LabelScores, len(flat))
		for _, entry := range flat {
			if entry.Label == "" {
				valid = false
				break
			}
			scores[entry.Label] = entry.Score
		}
		if valid {
			return scores, true
		}
	}

	var legacy legacyEntry
	if err := json.Unmarshal(raw, &legacy); err == nil &&
		len(legacy.Labels) > 0 && len(legacy.Labels) == len(legacy.Scores) {
		scores := make(LabelScores, len(legacy.Labels))
		for i, label := range legacy.Labels {
			scores[label] = legacy.Scores[i]
		}
		return scores, true
	}

	return nil, false
}

// decodeZeroShotBatch decodes a batch response into one LabelScores per input
// text. Individual malformed entries decode to nil (the caller resolves those
// to neutral); a response that does not line up with the input count at all
// fails the whole call.
func decodeZeroShotBatch(raw json.RawMessage, n int) ([]LabelScores, bool) {
	if n == 1 {
		if scores, ok := decodeZeroShotScores(raw); ok {
			return []LabelScores{scores}, true
		}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	if len(items) != n {
		return nil, false
	}

	results := make([]LabelScores, n)
	for i, item := range items {
		scores, ok := decodeZeroShotScores(item)
		if !ok {
			slog.Warn("[Sentiment] Unexpected result format in batch",
				slog.Int("index", i))
			continue
		}
		results[i] = scores
	}
	return results, true
}
