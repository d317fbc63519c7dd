// Package pipeline sequences extraction, classification, clustering and
// aggregation into a single run per video, reported through an ordered event
// stream.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spacesedan/vidinsight/config"
	"github.com/spacesedan/vidinsight/internal/models"
	"github.com/spacesedan/vidinsight/internal/priority"
	"github.com/spacesedan/vidinsight/internal/sentiment"
	"github.com/spacesedan/vidinsight/internal/summarizer"
	"github.com/spacesedan/vidinsight/internal/topics"
	"github.com/spacesedan/vidinsight/internal/youtube"
)

// VideoSource supplies video metadata and comments. The yt-dlp extractor is
// the production implementation.
type VideoSource interface {
	GetVideoMetadata(ctx context.Context, videoID string) (*models.VideoMetadata, error)
	GetComments(ctx context.Context, videoID string, maxComments int) ([]models.CommentRecord, error)
}

// Orchestrator owns one configured set of pipeline components and runs any
// number of analyses over them.
type Orchestrator struct {
	extractor  VideoSource
	analyzer   *sentiment.Analyzer
	modeler    *topics.TopicModeler
	summarizer *summarizer.Summarizer

	batchSize    int
	minTopicSize int
	maxTopics    int
	maxComments  int
}

type Option func(*Orchestrator)

func WithExtractor(e VideoSource) Option {
	return func(o *Orchestrator) { o.extractor = e }
}

func WithAnalyzer(a *sentiment.Analyzer) Option {
	return func(o *Orchestrator) { o.analyzer = a }
}

func WithModeler(m *topics.TopicModeler) Option {
	return func(o *Orchestrator) { o.modeler = m }
}

func WithSummarizer(s *summarizer.Summarizer) Option {
	return func(o *Orchestrator) { o.summarizer = s }
}

func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		batchSize:    config.GetInt("SENTIMENT_BATCH_SIZE", sentiment.DEFAULT_BATCH_SIZE),
		minTopicSize: config.GetInt("TOPIC_MIN_COMMENTS", topics.DEFAULT_MIN_TOPIC_SIZE),
		maxTopics:    config.GetInt("MAX_TOPICS", topics.DEFAULT_MAX_TOPICS),
		maxComments:  config.GetInt("YT_MAX_COMMENTS", youtube.DEFAULT_MAX_COMMENTS),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.extractor == nil {
		o.extractor = youtube.NewExtractor()
	}
	if o.analyzer == nil {
		o.analyzer = sentiment.NewAnalyzer()
	}
	if o.modeler == nil {
		o.modeler = topics.NewTopicModeler()
	}
	if o.summarizer == nil {
		o.summarizer = summarizer.NewSummarizer()
	}
	return o
}

// Run starts an analysis of the given video URL or ID and returns its event
// stream immediately. The stream always ends with exactly one complete or
// error event; cancelling ctx abandons the run.
func (o *Orchestrator) Run(ctx context.Context, url string) *EventStream {
	stream := newEventStream()
	go o.run(ctx, url, stream)
	return stream
}

func (o *Orchestrator) run(ctx context.Context, url string, stream *EventStream) {
	defer stream.close()
	// Runs before close so a panicking stage still ends the stream with a
	// terminal error event instead of taking the process down.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[Orchestrator] Recovered from analysis panic",
				slog.Any("panic", r))
			stream.emit(ctx, models.AnalysisEvent{
				Type:  models.EventError,
				Stage: models.StageFailed,
				Error: fmt.Sprintf("analysis panicked: %v", r),
			})
		}
	}()

	fail := func(stage models.AnalysisStage, err error) {
		slog.Error("[Orchestrator] Analysis failed",
			slog.String("stage", string(stage)),
			slog.String("error", err.Error()))
		stream.emit(ctx, models.AnalysisEvent{
			Type:  models.EventError,
			Stage: models.StageFailed,
			Error: err.Error(),
		})
	}

	videoID, err := youtube.ExtractVideoID(url)
	if err != nil {
		fail(models.StageFetching, err)
		return
	}

	if !stream.emit(ctx, stageEvent(models.StageFetching)) {
		return
	}
	video, comments, err := o.fetch(ctx, videoID)
	if err != nil {
		fail(models.StageFetching, err)
		return
	}
	slog.Info("[Orchestrator] Fetched video",
		slog.String("video_id", videoID),
		slog.Int("comments", len(comments)))

	if !stream.emit(ctx, stageEvent(models.StageClassifying)) {
		return
	}
	analyses, err := o.classify(ctx, comments, stream)
	if err != nil {
		fail(models.StageClassifying, err)
		return
	}

	if !stream.emit(ctx, stageEvent(models.StageClustering)) {
		return
	}
	topicResults := o.cluster(ctx, analyses)

	if !stream.emit(ctx, stageEvent(models.StageAggregating)) {
		return
	}
	summary := priority.Summarize(analyses, topicResults)
	summaries := o.summarize(ctx, analyses, topicResults)

	result := &models.AnalysisResult{
		Video:     *video,
		Comments:  analyses,
		Topics:    topicResults,
		Summary:   summary,
		Summaries: summaries,
	}
	if !stream.emit(ctx, stageEvent(models.StageDone)) {
		return
	}
	stream.emit(ctx, models.AnalysisEvent{
		Type:   models.EventComplete,
		Stage:  models.StageDone,
		Result: result,
	})
}

func (o *Orchestrator) fetch(ctx context.Context, videoID string) (*models.VideoMetadata, []models.CommentRecord, error) {
	video, err := o.extractor.GetVideoMetadata(ctx, videoID)
	if err != nil {
		return nil, nil, err
	}
	comments, err := o.extractor.GetComments(ctx, videoID, o.maxComments)
	if err != nil {
		// A video with comments turned off still yields a metadata-only
		// result downstream.
		if errors.Is(err, youtube.ErrCommentsDisabled) {
			return video, nil, nil
		}
		return nil, nil, err
	}
	return video, comments, nil
}

// classify runs progressive batch classification, forwarding one progress
// event per completed batch.
func (o *Orchestrator) classify(ctx context.Context, comments []models.CommentRecord, stream *EventStream) ([]models.CommentAnalysis, error) {
	texts := make([]string, len(comments))
	for i, c := range comments {
		texts[i] = c.Text
	}

	analyses := make([]models.CommentAnalysis, 0, len(comments))
	iter := o.analyzer.ClassifyBatchProgressive(ctx, texts, o.batchSize)
	for {
		item, err := iter.Next()
		if errors.Is(err, sentiment.ErrStreamExhausted) {
			break
		}
		if err != nil {
			return nil, err
		}

		analyses = append(analyses, models.CommentAnalysis{
			Comment:   comments[len(analyses)],
			Sentiment: item.Result,
		})

		// One event per batch, on its last item.
		if item.Progress.Processed == item.Progress.Total ||
			item.Progress.Processed%o.batchSize == 0 {
			progress := item.Progress
			stream.emit(ctx, models.AnalysisEvent{
				Type:     models.EventProgress,
				Stage:    models.StageClassifying,
				Progress: &progress,
			})
		}
	}
	return analyses, nil
}

func (o *Orchestrator) cluster(ctx context.Context, analyses []models.CommentAnalysis) []models.TopicResult {
	texts := make([]string, len(analyses))
	engagement := make([]int, len(analyses))
	sentiments := make([]models.SentimentCategory, len(analyses))
	for i, a := range analyses {
		texts[i] = a.Comment.Text
		engagement[i] = a.Comment.LikeCount
		sentiments[i] = a.Sentiment.Category
	}
	return o.modeler.ExtractTopics(ctx, texts, engagement, sentiments, o.minTopicSize, o.maxTopics)
}

// summarize builds per-category digests for the buckets worth narrating.
// Nil when the summarizer backend is disabled or nothing qualifies.
func (o *Orchestrator) summarize(ctx context.Context, analyses []models.CommentAnalysis, topicResults []models.TopicResult) map[models.SentimentCategory]string {
	if !o.summarizer.Available() {
		return nil
	}

	buckets := make(map[models.SentimentCategory][]string)
	for _, a := range analyses {
		buckets[a.Sentiment.Category] = append(buckets[a.Sentiment.Category], a.Comment.Text)
	}

	labels := make([]string, 0, len(topicResults))
	for _, topic := range topicResults {
		labels = append(labels, topic.Name)
	}
	if len(labels) == 0 && len(analyses) > 0 {
		texts := make([]string, len(analyses))
		for i, a := range analyses {
			texts[i] = a.Comment.Text
		}
		labels = topics.ExtractKeywordsSimple(texts, summarizer.MAX_TOPIC_LABELS)
	}

	summaries := make(map[models.SentimentCategory]string)
	for _, category := range []models.SentimentCategory{
		models.SentimentPositive,
		models.SentimentNegative,
		models.SentimentSuggestion,
	} {
		comments := buckets[category]
		if len(comments) == 0 {
			continue
		}
		if text := o.summarizer.SummarizeComments(ctx, comments, category, labels); text != "" {
			summaries[category] = text
		}
	}
	if len(summaries) == 0 {
		return nil
	}
	return summaries
}

func stageEvent(stage models.AnalysisStage) models.AnalysisEvent {
	return models.AnalysisEvent{Type: models.EventStage, Stage: stage}
}
