package sentiment

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jonreiter/govader"

	"github.com/spacesedan/vidinsight/config"
)

// Compound-score cutoffs for the positive/negative/neutral split.
const (
	positiveThreshold = 0.20
	negativeThreshold = -0.20
)

// LocalBackend scores texts with the resident VADER lexicon model. The model
// loads lazily on first use, exactly once per process, and is read-only for
// inference afterwards. This tier never reports unavailability.
type LocalBackend struct {
	loadOnce  sync.Once
	analyzer  *govader.SentimentIntensityAnalyzer
	maxTokens int
}

func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		maxTokens: config.GetInt("SENTIMENT_MAX_TOKENS", 512),
	}
}

func (l *LocalBackend) Name() string { return "vader-local" }

func (l *LocalBackend) model() *govader.SentimentIntensityAnalyzer {
	l.loadOnce.Do(func() {
		start := time.Now()
		l.analyzer = govader.NewSentimentIntensityAnalyzer()
		slog.Info("[Sentiment] Local scoring model loaded",
			slog.Duration("elapsed", time.Since(start)))
	})
	return l.analyzer
}

func (l *LocalBackend) ScoreBatch(ctx context.Context, texts []string) ([]LabelScores, error) {
	analyzer := l.model()

	results := make([]LabelScores, len(texts))
	for i, text := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		results[i] = l.scoreText(analyzer, text)
	}
	return results, nil
}

func (l *LocalBackend) scoreText(analyzer *govader.SentimentIntensityAnalyzer, text string) LabelScores {
	plain := ConvertMarkdownToText(text)
	plain = TruncateTokens(plain, l.maxTokens)

	compound := analyzer.PolarityScores(plain).Compound

	var label string
	var confidence float64
	switch {
	case compound >= positiveThreshold:
		label = "positive"
		confidence = 0.5 + math.Abs(compound)/2
	case compound <= negativeThreshold:
		label = "negative"
		confidence = 0.5 + math.Abs(compound)/2
	default:
		label = "neutral"
		confidence = 1 - math.Abs(compound)
	}
	if confidence > 1 {
		confidence = 1
	}

	scores := make(LabelScores, len(CandidateLabels))
	for _, candidate := range CandidateLabels {
		if candidate == label {
			scores[candidate] = confidence
		} else {
			scores[candidate] = (1 - confidence) / 2
		}
	}
	return scores
}
