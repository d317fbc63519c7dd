package topics

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spacesedan/vidinsight/internal/models"
)

// stubEmbedder returns pre-chosen vectors keyed by position.
type stubEmbedder struct {
	vectors [][]float64
	err     error
	calls   int
}

func (s *stubEmbedder) Name() string { return "stub" }

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[:len(texts)], nil
}

// panicEmbedder trips the modeler's recovery boundary.
type panicEmbedder struct{}

func (p *panicEmbedder) Name() string { return "panic" }

func (p *panicEmbedder) Embed(_ context.Context, _ []string) ([][]float64, error) {
	panic("embedder exploded")
}

var languageComments = []string{
	"The python section was amazing, python tutorials are the best",
	"Loved the python examples, very clear python code",
	"More python content would help me a lot with python",
	"The javascript part confused me, javascript is hard",
	"Please slow down on the javascript walkthrough",
	"I keep rewatching the javascript closures explanation",
}

// Two tight orthogonal groups matching the python/javascript comment split.
var languageVectors = [][]float64{
	{1, 0.01}, {1, 0.02}, {1, 0.03},
	{0.01, 1}, {0.02, 1}, {0.03, 1},
}

// blobVectors collapse every comment into one dense region so DBSCAN finds a
// single cluster and the modeler falls back to k-means.
var blobVectors = [][]float64{
	{1, 0.01}, {1, 0.02}, {1, 0.03},
	{1, 0.04}, {1, 0.05}, {1, 0.06},
}

// fixedEmbedder is a goroutine-safe stub for concurrent runs.
type fixedEmbedder struct {
	vectors [][]float64
}

func (f fixedEmbedder) Name() string { return "fixed" }

func (f fixedEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	return f.vectors[:len(texts)], nil
}

func TestExtractTopicsTooFewComments(t *testing.T) {
	modeler := NewTopicModeler(&stubEmbedder{vectors: languageVectors})

	got := modeler.ExtractTopics(context.Background(), []string{"one", "two"}, nil, nil, 3, 10)
	if len(got) != 0 {
		t.Errorf("ExtractTopics() = %v, want empty for too few comments", got)
	}
}

func TestExtractTopicsSmallVocabulary(t *testing.T) {
	modeler := NewTopicModeler(&stubEmbedder{vectors: languageVectors})

	texts := []string{"nice video", "nice video", "nice video", "nice video"}
	got := modeler.ExtractTopics(context.Background(), texts, nil, nil, 3, 10)
	if len(got) != 0 {
		t.Errorf("ExtractTopics() = %v, want empty for tiny vocabulary", got)
	}
}

func TestExtractTopicsTwoLanguageGroups(t *testing.T) {
	modeler := NewTopicModeler(&stubEmbedder{vectors: languageVectors})
	engagement := []int{100, 50, 25, 10, 5, 2}
	sentiments := []models.SentimentCategory{
		models.SentimentPositive, models.SentimentPositive, models.SentimentSuggestion,
		models.SentimentNegative, models.SentimentSuggestion, models.SentimentNeutral,
	}

	topics := modeler.ExtractTopics(context.Background(), languageComments, engagement, sentiments, 2, 10)
	if len(topics) != 2 {
		t.Fatalf("len(topics) = %d, want 2", len(topics))
	}

	// Highest engagement first: the python group sums 175, javascript 17.
	if topics[0].TotalEngagement != 175 {
		t.Errorf("topics[0].TotalEngagement = %d, want 175", topics[0].TotalEngagement)
	}
	if topics[1].TotalEngagement != 17 {
		t.Errorf("topics[1].TotalEngagement = %d, want 17", topics[1].TotalEngagement)
	}

	if kw := topics[0].Keywords; len(kw) == 0 || kw[0] != "python" {
		t.Errorf("topics[0].Keywords = %v, want python first", kw)
	}
	if kw := topics[1].Keywords; len(kw) == 0 || kw[0] != "javascript" {
		t.Errorf("topics[1].Keywords = %v, want javascript first", kw)
	}

	if topics[0].SentimentBreakdown[models.SentimentPositive] != 2 {
		t.Errorf("python positive count = %d, want 2",
			topics[0].SentimentBreakdown[models.SentimentPositive])
	}
	if topics[1].SentimentBreakdown[models.SentimentNegative] != 1 {
		t.Errorf("javascript negative count = %d, want 1",
			topics[1].SentimentBreakdown[models.SentimentNegative])
	}

	seen := make(map[int]bool)
	for _, topic := range topics {
		if topic.MentionCount != len(topic.CommentIndices) {
			t.Errorf("MentionCount = %d, want %d", topic.MentionCount, len(topic.CommentIndices))
		}
		for _, idx := range topic.CommentIndices {
			if idx < 0 || idx >= len(languageComments) {
				t.Errorf("comment index %d out of range", idx)
			}
			if seen[idx] {
				t.Errorf("comment index %d in two topics", idx)
			}
			seen[idx] = true
		}
	}
}

func TestExtractTopicsIDsFollowRanking(t *testing.T) {
	modeler := NewTopicModeler(&stubEmbedder{vectors: languageVectors})
	engagement := []int{1, 1, 1, 50, 50, 50}

	topics := modeler.ExtractTopics(context.Background(), languageComments, engagement, nil, 2, 10)
	if len(topics) != 2 {
		t.Fatalf("len(topics) = %d, want 2", len(topics))
	}
	for i, topic := range topics {
		if topic.TopicID != i {
			t.Errorf("topics[%d].TopicID = %d, want %d", i, topic.TopicID, i)
		}
	}
	if topics[0].Keywords[0] != "javascript" {
		t.Errorf("topics[0].Keywords[0] = %q, want javascript (higher engagement)", topics[0].Keywords[0])
	}
}

func TestExtractTopicsMaxTopicsCap(t *testing.T) {
	modeler := NewTopicModeler(&stubEmbedder{vectors: languageVectors})

	topics := modeler.ExtractTopics(context.Background(), languageComments, nil, nil, 2, 1)
	if len(topics) > 1 {
		t.Errorf("len(topics) = %d, want at most 1", len(topics))
	}
}

func TestExtractTopicsEmbedderFallback(t *testing.T) {
	failing := &stubEmbedder{err: errors.New("onnx runtime missing")}
	healthy := &stubEmbedder{vectors: languageVectors}
	modeler := NewTopicModeler(failing, healthy)

	topics := modeler.ExtractTopics(context.Background(), languageComments, nil, nil, 2, 10)
	if len(topics) != 2 {
		t.Fatalf("len(topics) = %d, want 2 via fallback embedder", len(topics))
	}
	if failing.calls != 1 || healthy.calls != 1 {
		t.Errorf("calls = (%d, %d), want (1, 1)", failing.calls, healthy.calls)
	}
}

func TestExtractTopicsAllEmbeddersFail(t *testing.T) {
	modeler := NewTopicModeler(&stubEmbedder{err: errors.New("down")})

	topics := modeler.ExtractTopics(context.Background(), languageComments, nil, nil, 2, 10)
	if len(topics) != 0 {
		t.Errorf("len(topics) = %d, want 0 when no embedder works", len(topics))
	}
}

func TestExtractTopicsConcurrentRuns(t *testing.T) {
	modeler := NewTopicModeler(fixedEmbedder{vectors: blobVectors})

	const runs = 8
	results := make([][]models.TopicResult, runs)
	var wg sync.WaitGroup
	for i := range runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = modeler.ExtractTopics(context.Background(), languageComments, nil, nil, 2, 10)
		}()
	}
	wg.Wait()

	// Every run seeds its own source, so concurrent results must agree.
	for i := 1; i < runs; i++ {
		if len(results[i]) != len(results[0]) {
			t.Errorf("run %d produced %d topics, run 0 produced %d",
				i, len(results[i]), len(results[0]))
		}
	}
}

func TestExtractTopicsRecoversFromPanic(t *testing.T) {
	modeler := NewTopicModeler(&panicEmbedder{})

	topics := modeler.ExtractTopics(context.Background(), languageComments, nil, nil, 2, 10)
	if topics == nil || len(topics) != 0 {
		t.Errorf("ExtractTopics() = %v, want recovered empty slice", topics)
	}
}

func TestLexicalEmbedderGroupsSharedVocabulary(t *testing.T) {
	embedder := NewLexicalEmbedder()

	vectors, err := embedder.Embed(context.Background(), languageComments)
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != len(languageComments) {
		t.Fatalf("len(vectors) = %d, want %d", len(vectors), len(languageComments))
	}

	samePython := cosineSimilarity(vectors[0], vectors[1])
	crossGroup := cosineSimilarity(vectors[0], vectors[3])
	if samePython <= crossGroup {
		t.Errorf("within-group similarity %v not above cross-group %v", samePython, crossGroup)
	}
}
