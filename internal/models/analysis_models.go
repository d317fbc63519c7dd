package models

type PriorityTier string

const (
	PriorityHigh   PriorityTier = "high"
	PriorityMedium PriorityTier = "medium"
	PriorityLow    PriorityTier = "low"
)

type AnalysisStage string

const (
	StagePending     AnalysisStage = "pending"
	StageFetching    AnalysisStage = "fetching"
	StageClassifying AnalysisStage = "classifying"
	StageClustering  AnalysisStage = "clustering"
	StageAggregating AnalysisStage = "aggregating"
	StageDone        AnalysisStage = "done"
	StageFailed      AnalysisStage = "failed"
)

// CommentAnalysis pairs a comment with its classification and priority tier.
type CommentAnalysis struct {
	Comment   CommentRecord   `json:"comment"`
	Sentiment SentimentResult `json:"sentiment"`
	Priority  PriorityTier    `json:"priority"`
}

// TopicPriority carries the ranking signal attached to a topic.
type TopicPriority struct {
	TopicID         int          `json:"topic_id"`
	Tier            PriorityTier `json:"tier"`
	NegativeShare   float64      `json:"negative_share"`
	SuggestionShare float64      `json:"suggestion_share"`
}

type PrioritySummary struct {
	TierCounts      map[PriorityTier]int      `json:"tier_counts"`
	CategoryCounts  map[SentimentCategory]int `json:"category_counts"`
	TopCommentIDs   []string                  `json:"top_comment_ids"`
	TopicPriorities []TopicPriority           `json:"topic_priorities"`
}

// AnalysisResult is the aggregate delivered with the terminal event.
type AnalysisResult struct {
	Video     VideoMetadata                `json:"video"`
	Comments  []CommentAnalysis            `json:"comments"`
	Topics    []TopicResult                `json:"topics"`
	Summary   PrioritySummary              `json:"summary"`
	Summaries map[SentimentCategory]string `json:"summaries,omitempty"`
}

type EventType string

const (
	EventStage    EventType = "stage"
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// AnalysisEvent is one entry of the ordered, terminating progress stream.
// Exactly one EventComplete or EventError event terminates a run.
type AnalysisEvent struct {
	Type     EventType       `json:"type"`
	Stage    AnalysisStage   `json:"stage"`
	Progress *BatchProgress  `json:"progress,omitempty"`
	Result   *AnalysisResult `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}
