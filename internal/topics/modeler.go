package topics

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"

	"github.com/spacesedan/vidinsight/config"
	"github.com/spacesedan/vidinsight/internal/models"
)

const (
	DEFAULT_MIN_TOPIC_SIZE = 3
	DEFAULT_MAX_TOPICS     = 10
	MIN_VOCABULARY_SIZE    = 10
	TOP_KEYWORDS_PER_TOPIC = 5
	MAX_DF_RATIO           = 0.95
	K_NEIGHBORS            = 4
)

// TopicModeler groups comments into topics by embedding them and clustering
// over cosine distance. Embedders are tried in order; a failing backend
// degrades to the next one for the rest of the process.
type TopicModeler struct {
	embedders []Embedder
	minVocab  int
	seed      int64
}

// NewTopicModeler builds a modeler with the given embedder chain. With no
// arguments the chain is the ONNX feature-extraction pipeline backed by the
// lexical term-frequency fallback.
func NewTopicModeler(embedders ...Embedder) *TopicModeler {
	if len(embedders) == 0 {
		embedders = []Embedder{NewONNXEmbedder(), NewLexicalEmbedder()}
	}
	return &TopicModeler{
		embedders: embedders,
		minVocab:  config.GetInt("TOPIC_MIN_VOCABULARY", MIN_VOCABULARY_SIZE),
		seed:      42,
	}
}

// ExtractTopics clusters texts into at most maxTopics topics of at least
// minTopicSize members each. engagement and sentiments run parallel to texts
// and may be nil. Returns an empty slice whenever the batch is too small or
// too homogeneous to cluster meaningfully; it never fails the caller.
func (m *TopicModeler) ExtractTopics(ctx context.Context, texts []string, engagement []int, sentiments []models.SentimentCategory, minTopicSize, maxTopics int) (results []models.TopicResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[TopicModeler] Recovered from clustering panic",
				slog.Any("panic", r))
			results = []models.TopicResult{}
		}
	}()

	if minTopicSize < 2 {
		minTopicSize = DEFAULT_MIN_TOPIC_SIZE
	}
	if maxTopics < 1 {
		maxTopics = DEFAULT_MAX_TOPICS
	}

	if len(texts) < minTopicSize {
		slog.Info("[TopicModeler] Not enough comments to cluster",
			slog.Int("comments", len(texts)),
			slog.Int("min_topic_size", minTopicSize))
		return []models.TopicResult{}
	}

	if vocab := len(UniqueTokens(texts)); vocab < m.minVocab {
		slog.Info("[TopicModeler] Vocabulary too small to cluster",
			slog.Int("vocabulary", vocab),
			slog.Int("min_vocabulary", m.minVocab))
		return []models.TopicResult{}
	}

	engagement = normalizeEngagement(engagement, len(texts))
	sentiments = normalizeSentiments(sentiments, len(texts))

	vectors, err := m.embed(ctx, texts)
	if err != nil {
		slog.Error("[TopicModeler] All embedding backends failed",
			slog.String("error", err.Error()))
		return []models.TopicResult{}
	}
	vectors = l2Normalize(vectors)

	target := maxTopics
	if byDensity := max(2, len(texts)/minTopicSize); byDensity < target {
		target = byDensity
	}

	eps := calculateOptimalEps(vectors, K_NEIGHBORS)
	clusters := dbscan(vectors, eps, minTopicSize)
	if len(clusters) < 2 {
		slog.Info("[TopicModeler] DBSCAN found too few clusters, falling back to k-means",
			slog.Int("clusters", len(clusters)),
			slog.Float64("eps", eps))
		// Fresh deterministic source per call so concurrent runs never
		// share rng state.
		clusters, err = kmeans(vectors, target, rand.New(rand.NewSource(m.seed)))
		if err != nil {
			slog.Error("[TopicModeler] K-means fallback failed",
				slog.String("error", err.Error()))
			return []models.TopicResult{}
		}
	}

	df := documentFrequencies(texts)
	minDf := 1
	if len(texts) >= 20 {
		minDf = 2
	}
	maxDf := int(MAX_DF_RATIO * float64(len(texts)))

	results = make([]models.TopicResult, 0, len(clusters))
	for _, members := range clusters {
		if len(members) < minTopicSize {
			continue
		}

		memberTexts := make([]string, len(members))
		for i, idx := range members {
			memberTexts[i] = texts[idx]
		}

		keywords := m.clusterKeywords(memberTexts, df, minDf, maxDf)
		name := m.topicName(len(results), keywords, memberTexts)

		topic := models.TopicResult{
			TopicID:            len(results),
			Name:               name,
			Keywords:           keywords,
			MentionCount:       len(members),
			SentimentBreakdown: make(map[models.SentimentCategory]int),
			CommentIndices:     members,
		}
		for _, idx := range members {
			topic.TotalEngagement += engagement[idx]
			topic.SentimentBreakdown[sentiments[idx]]++
		}
		results = append(results, topic)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalEngagement > results[j].TotalEngagement
	})
	if len(results) > maxTopics {
		results = results[:maxTopics]
	}
	for i := range results {
		results[i].TopicID = i
	}

	slog.Info("[TopicModeler] Extracted topics",
		slog.Int("comments", len(texts)),
		slog.Int("topics", len(results)))
	return results
}

// embed walks the embedder chain until one backend returns vectors for every
// text.
func (m *TopicModeler) embed(ctx context.Context, texts []string) ([][]float64, error) {
	var lastErr error
	for _, embedder := range m.embedders {
		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			slog.Warn("[TopicModeler] Embedding backend failed, trying next",
				slog.String("backend", embedder.Name()),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		if len(vectors) != len(texts) {
			lastErr = fmt.Errorf("backend %s returned %d vectors for %d texts",
				embedder.Name(), len(vectors), len(texts))
			continue
		}
		return vectors, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no embedding backends configured")
	}
	return nil, lastErr
}

// clusterKeywords ranks a cluster's unigram and bigram terms by in-cluster
// frequency, keeping only terms inside the corpus document-frequency bounds.
func (m *TopicModeler) clusterKeywords(memberTexts []string, df map[string]int, minDf, maxDf int) []string {
	counts := make(map[string]*termCount)
	position := 0
	for _, text := range memberTexts {
		for _, term := range docTerms(text) {
			if df[term] < minDf || df[term] > maxDf {
				continue
			}
			if tc, ok := counts[term]; ok {
				tc.count++
			} else {
				counts[term] = &termCount{term: term, count: 1, firstSeen: position}
			}
			position++
		}
	}

	var keywords []string
	for _, term := range rankTerms(counts) {
		if strings.Contains(term, " ") {
			// Bigram keywords only make display sense in topic names.
			continue
		}
		keywords = append(keywords, term)
		if len(keywords) == TOP_KEYWORDS_PER_TOPIC {
			break
		}
	}
	return ValidateKeywords(keywords)
}

func (m *TopicModeler) topicName(position int, keywords []string, memberTexts []string) string {
	rawName := fmt.Sprintf("Topic %d", position+1)
	if len(keywords) > 0 {
		if theme := DetectTheme(strings.Join(keywords, " ")); theme != "" {
			rawName = FormatThemeName(theme)
		} else {
			rawName = capitalize(keywords[0])
		}
	}
	return GenerateTopicName(rawName, keywords, memberTexts)
}

func normalizeEngagement(engagement []int, n int) []int {
	if len(engagement) == n {
		return engagement
	}
	out := make([]int, n)
	for i := range out {
		out[i] = 1
		if i < len(engagement) {
			out[i] = engagement[i]
		}
	}
	return out
}

func normalizeSentiments(sentiments []models.SentimentCategory, n int) []models.SentimentCategory {
	if len(sentiments) == n {
		return sentiments
	}
	out := make([]models.SentimentCategory, n)
	for i := range out {
		out[i] = models.SentimentNeutral
		if i < len(sentiments) {
			out[i] = sentiments[i]
		}
	}
	return out
}
