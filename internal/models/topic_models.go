package models

// TopicResult is one discovered comment cluster. CommentIndices reference the
// input batch; the clustering noise bucket never appears as a TopicResult.
type TopicResult struct {
	TopicID            int                       `json:"topic_id"`
	Name               string                    `json:"name"`
	Keywords           []string                  `json:"keywords"`
	MentionCount       int                       `json:"mention_count"`
	TotalEngagement    int                       `json:"total_engagement"`
	SentimentBreakdown map[SentimentCategory]int `json:"sentiment_breakdown"`
	CommentIndices     []int                     `json:"comment_indices"`
}
