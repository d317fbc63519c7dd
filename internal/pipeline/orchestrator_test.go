package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spacesedan/vidinsight/internal/models"
	"github.com/spacesedan/vidinsight/internal/sentiment"
	"github.com/spacesedan/vidinsight/internal/topics"
	"github.com/spacesedan/vidinsight/internal/youtube"
)

const testVideoID = "dQw4w9WgXcQ"

type fakeSource struct {
	video    *models.VideoMetadata
	comments []models.CommentRecord
	metaErr  error
	commErr  error
}

func (f *fakeSource) GetVideoMetadata(_ context.Context, _ string) (*models.VideoMetadata, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	return f.video, nil
}

func (f *fakeSource) GetComments(_ context.Context, _ string, _ int) ([]models.CommentRecord, error) {
	if f.commErr != nil {
		return nil, f.commErr
	}
	return f.comments, nil
}

// panicSource blows up mid-fetch to exercise the run boundary.
type panicSource struct{}

func (panicSource) GetVideoMetadata(_ context.Context, _ string) (*models.VideoMetadata, error) {
	return &models.VideoMetadata{ID: testVideoID, Title: "Test Video"}, nil
}

func (panicSource) GetComments(_ context.Context, _ string, _ int) ([]models.CommentRecord, error) {
	panic("extractor exploded")
}

type fixedBackend struct{}

func (fixedBackend) Name() string { return "fixed" }

func (fixedBackend) ScoreBatch(_ context.Context, texts []string) ([]sentiment.LabelScores, error) {
	results := make([]sentiment.LabelScores, len(texts))
	for i := range texts {
		results[i] = sentiment.LabelScores{"positive": 0.9, "negative": 0.05, "neutral": 0.05}
	}
	return results, nil
}

type identityEmbedder struct{}

func (identityEmbedder) Name() string { return "identity" }

func (identityEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = []float64{1, float64(i) / 100}
	}
	return vectors, nil
}

func testComments(n int) []models.CommentRecord {
	comments := make([]models.CommentRecord, n)
	for i := range comments {
		comments[i] = models.CommentRecord{
			ID:        fmt.Sprintf("c%d", i),
			Text:      fmt.Sprintf("comment number %d about the video topic", i),
			LikeCount: i,
		}
	}
	return comments
}

func testOrchestrator(source *fakeSource) *Orchestrator {
	return NewOrchestrator(
		WithExtractor(source),
		WithAnalyzer(sentiment.NewAnalyzer(fixedBackend{})),
		WithModeler(topics.NewTopicModeler(identityEmbedder{})),
	)
}

func drain(t *testing.T, stream *EventStream) []models.AnalysisEvent {
	t.Helper()
	var events []models.AnalysisEvent
	for {
		event, err := stream.Next(context.Background())
		if errors.Is(err, ErrStreamDone) {
			return events
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		events = append(events, *event)
	}
}

func TestRunHappyPath(t *testing.T) {
	source := &fakeSource{
		video:    &models.VideoMetadata{ID: testVideoID, Title: "Test Video"},
		comments: testComments(5),
	}

	events := drain(t, testOrchestrator(source).Run(context.Background(), testVideoID))
	if len(events) == 0 {
		t.Fatal("no events received")
	}

	terminal := events[len(events)-1]
	if terminal.Type != models.EventComplete {
		t.Fatalf("terminal event type = %q, want complete (error: %s)", terminal.Type, terminal.Error)
	}
	if terminal.Result == nil {
		t.Fatal("complete event carries no result")
	}
	if len(terminal.Result.Comments) != 5 {
		t.Errorf("result comments = %d, want 5", len(terminal.Result.Comments))
	}
	if terminal.Result.Video.Title != "Test Video" {
		t.Errorf("result video title = %q, want Test Video", terminal.Result.Video.Title)
	}

	for _, c := range terminal.Result.Comments {
		if c.Priority == "" {
			t.Errorf("comment %s has no priority tier", c.Comment.ID)
		}
	}

	// Exactly one terminal event, at the end.
	for i, event := range events[:len(events)-1] {
		if event.Type == models.EventComplete || event.Type == models.EventError {
			t.Errorf("events[%d] is terminal (%q) before the end", i, event.Type)
		}
	}
}

func TestRunStageOrdering(t *testing.T) {
	source := &fakeSource{
		video:    &models.VideoMetadata{ID: testVideoID},
		comments: testComments(3),
	}

	events := drain(t, testOrchestrator(source).Run(context.Background(), testVideoID))

	var stages []models.AnalysisStage
	for _, event := range events {
		if event.Type == models.EventStage {
			stages = append(stages, event.Stage)
		}
	}

	want := []models.AnalysisStage{
		models.StageFetching,
		models.StageClassifying,
		models.StageClustering,
		models.StageAggregating,
		models.StageDone,
	}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stages[%d] = %q, want %q", i, stages[i], want[i])
		}
	}
}

func TestRunEmitsProgress(t *testing.T) {
	source := &fakeSource{
		video:    &models.VideoMetadata{ID: testVideoID},
		comments: testComments(5),
	}
	orchestrator := testOrchestrator(source)
	orchestrator.batchSize = 2

	events := drain(t, orchestrator.Run(context.Background(), testVideoID))

	var processed []int
	for _, event := range events {
		if event.Type == models.EventProgress {
			if event.Progress == nil {
				t.Fatal("progress event carries no snapshot")
			}
			processed = append(processed, event.Progress.Processed)
		}
	}

	want := []int{2, 4, 5}
	if len(processed) != len(want) {
		t.Fatalf("processed = %v, want %v", processed, want)
	}
	for i := range want {
		if processed[i] != want[i] {
			t.Errorf("processed[%d] = %d, want %d", i, processed[i], want[i])
		}
	}
}

func TestRunInvalidURL(t *testing.T) {
	events := drain(t, testOrchestrator(&fakeSource{}).Run(context.Background(), "not a url"))

	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want just the terminal error", len(events))
	}
	if events[0].Type != models.EventError {
		t.Errorf("event type = %q, want error", events[0].Type)
	}
	if events[0].Stage != models.StageFailed {
		t.Errorf("event stage = %q, want failed", events[0].Stage)
	}
}

func TestRunVideoNotFound(t *testing.T) {
	source := &fakeSource{metaErr: youtube.ErrVideoNotFound}

	events := drain(t, testOrchestrator(source).Run(context.Background(), testVideoID))

	terminal := events[len(events)-1]
	if terminal.Type != models.EventError {
		t.Fatalf("terminal type = %q, want error", terminal.Type)
	}
	if terminal.Error == "" {
		t.Error("error event carries no message")
	}
}

func TestRunRecoversFromStagePanic(t *testing.T) {
	orchestrator := NewOrchestrator(
		WithExtractor(panicSource{}),
		WithAnalyzer(sentiment.NewAnalyzer(fixedBackend{})),
		WithModeler(topics.NewTopicModeler(identityEmbedder{})),
	)

	stream := orchestrator.Run(context.Background(), testVideoID)
	events := drain(t, stream)

	terminal := events[len(events)-1]
	if terminal.Type != models.EventError {
		t.Fatalf("terminal type = %q, want error after panic", terminal.Type)
	}
	if terminal.Stage != models.StageFailed {
		t.Errorf("terminal stage = %q, want failed", terminal.Stage)
	}
	if !strings.Contains(terminal.Error, "panicked") {
		t.Errorf("terminal error = %q, want panic description", terminal.Error)
	}
	if _, err := stream.Next(context.Background()); !errors.Is(err, ErrStreamDone) {
		t.Errorf("Next() after terminal error = %v, want ErrStreamDone", err)
	}
}

func TestRunCommentsDisabledStillCompletes(t *testing.T) {
	source := &fakeSource{
		video:   &models.VideoMetadata{ID: testVideoID, Title: "No Comments"},
		commErr: youtube.ErrCommentsDisabled,
	}

	events := drain(t, testOrchestrator(source).Run(context.Background(), testVideoID))

	terminal := events[len(events)-1]
	if terminal.Type != models.EventComplete {
		t.Fatalf("terminal type = %q, want complete", terminal.Type)
	}
	if len(terminal.Result.Comments) != 0 {
		t.Errorf("result comments = %d, want 0", len(terminal.Result.Comments))
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeSource{
		video:    &models.VideoMetadata{ID: testVideoID},
		comments: testComments(3),
	}
	stream := testOrchestrator(source).Run(ctx, testVideoID)

	for i := 0; i < 20; i++ {
		if _, err := stream.Next(ctx); err != nil {
			return // cancellation surfaced
		}
	}
	t.Fatal("stream never surfaced cancellation")
}

func TestStreamDoneIsSticky(t *testing.T) {
	source := &fakeSource{
		video:    &models.VideoMetadata{ID: testVideoID},
		comments: testComments(3),
	}
	stream := testOrchestrator(source).Run(context.Background(), testVideoID)
	drain(t, stream)

	for i := 0; i < 3; i++ {
		if _, err := stream.Next(context.Background()); !errors.Is(err, ErrStreamDone) {
			t.Fatalf("Next() after done = %v, want ErrStreamDone", err)
		}
	}
}
