package sentiment

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spacesedan/vidinsight/config"
	"github.com/spacesedan/vidinsight/internal/clients"
	"github.com/spacesedan/vidinsight/internal/models"
)

// Confidence attached to pattern-detected suggestions.
const SuggestionConfidence = 0.9

const DEFAULT_BATCH_SIZE = 32

// Analyzer maps comment text to sentiment results through an ordered backend
// chain. The chain composition is resolved once per process start; per-call
// failures degrade to the next tier and never reach the caller.
type Analyzer struct {
	chainOnce sync.Once
	chain     []Backend
}

// NewAnalyzer builds an analyzer with an explicit backend chain. With no
// arguments the chain is resolved from configuration on first use: the remote
// zero-shot tier when enabled and credentialed, then the local model.
func NewAnalyzer(backends ...Backend) *Analyzer {
	a := &Analyzer{}
	if len(backends) > 0 {
		a.chain = backends
		a.chainOnce.Do(func() {})
	}
	return a
}

func (a *Analyzer) backends() []Backend {
	a.chainOnce.Do(func() {
		if clients.GetHuggingFaceClient().Available() {
			a.chain = []Backend{NewRemoteBackend(), NewLocalBackend()}
		} else {
			a.chain = []Backend{NewLocalBackend()}
		}

		names := make([]string, len(a.chain))
		for i, b := range a.chain {
			names[i] = b.Name()
		}
		slog.Info("[Sentiment] Backend chain resolved", slog.Any("tiers", names))
	})
	return a.chain
}

// ClassifyOne classifies a single text. It never fails: a text no backend can
// score resolves to neutral with zero confidence.
func (a *Analyzer) ClassifyOne(ctx context.Context, text string) models.SentimentResult {
	return a.classify(ctx, []string{text})[0]
}

// ClassifyBatch classifies texts in input order, one result per text.
func (a *Analyzer) ClassifyBatch(ctx context.Context, texts []string) []models.SentimentResult {
	results := make([]models.SentimentResult, 0, len(texts))
	iter := a.ClassifyBatchProgressive(ctx, texts, config.GetInt("SENTIMENT_BATCH_SIZE", DEFAULT_BATCH_SIZE))
	for {
		item, err := iter.Next()
		if err != nil {
			break
		}
		results = append(results, item.Result)
	}
	return results
}

// ClassifyBatchProgressive returns a lazy, single-pass iterator over
// per-comment results with batch progress snapshots. Work happens between
// Next calls batch by batch; the iterator is not restartable.
func (a *Analyzer) ClassifyBatchProgressive(ctx context.Context, texts []string, batchSize int) *ResultIterator {
	if batchSize <= 0 {
		batchSize = DEFAULT_BATCH_SIZE
	}
	totalBatches := (len(texts) + batchSize - 1) / batchSize
	return &ResultIterator{
		analyzer:     a,
		ctx:          ctx,
		texts:        texts,
		batchSize:    batchSize,
		totalBatches: totalBatches,
	}
}

// classify runs one batch: suggestion pre-tagging, then label scoring for the
// remainder through the backend chain.
func (a *Analyzer) classify(ctx context.Context, texts []string) []models.SentimentResult {
	results := make([]models.SentimentResult, len(texts))

	var pendingIdx []int
	var pending []string
	for i, text := range texts {
		if IsSuggestion(text) {
			results[i] = models.SentimentResult{
				Category:     models.SentimentSuggestion,
				Score:        SuggestionConfidence,
				IsSuggestion: true,
			}
			continue
		}
		pendingIdx = append(pendingIdx, i)
		pending = append(pending, text)
	}

	if len(pending) == 0 {
		return results
	}

	for j, scores := range a.score(ctx, pending) {
		results[pendingIdx[j]] = resultFromScores(scores)
	}
	return results
}

// score walks the backend chain in priority order and returns the first
// complete answer. A fully exhausted chain yields nil scores, which resolve
// to neutral results.
func (a *Analyzer) score(ctx context.Context, texts []string) []LabelScores {
	for _, backend := range a.backends() {
		scores, err := backend.ScoreBatch(ctx, texts)
		if err != nil {
			slog.Warn("[Sentiment] Backend degraded, trying next tier",
				slog.String("backend", backend.Name()),
				slog.String("error", err.Error()))
			continue
		}
		if len(scores) != len(texts) {
			slog.Warn("[Sentiment] Backend returned wrong result count",
				slog.String("backend", backend.Name()),
				slog.Int("want", len(texts)),
				slog.Int("got", len(scores)))
			continue
		}
		return scores
	}
	return make([]LabelScores, len(texts))
}

func resultFromScores(scores LabelScores) models.SentimentResult {
	label, score := scores.best()
	if label == "" {
		return models.SentimentResult{Category: models.SentimentNeutral, Score: 0}
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return models.SentimentResult{
		Category: models.SentimentCategory(label),
		Score:    score,
	}
}
