package models

type SentimentCategory string

const (
	SentimentPositive   SentimentCategory = "positive"
	SentimentNegative   SentimentCategory = "negative"
	SentimentNeutral    SentimentCategory = "neutral"
	SentimentSuggestion SentimentCategory = "suggestion"
)

// SentimentResult is produced exactly once per comment and never mutated.
// Category is SentimentSuggestion if and only if IsSuggestion is true.
type SentimentResult struct {
	Category     SentimentCategory `json:"category"`
	Score        float64           `json:"score"`
	IsSuggestion bool              `json:"is_suggestion"`
}

// BatchProgress is an informational snapshot emitted once per processed
// classification batch.
type BatchProgress struct {
	BatchNum      int     `json:"batch_num"`
	TotalBatches  int     `json:"total_batches"`
	Processed     int     `json:"processed"`
	Total         int     `json:"total"`
	BatchTimeMS   float64 `json:"batch_time_ms"`
	TokensInBatch int     `json:"tokens_in_batch"`
}
