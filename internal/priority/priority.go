// Package priority ranks classified comments and topics so creators can see
// what to act on first. Scores combine the sentiment category's weight with a
// log-damped engagement boost.
package priority

import (
	"math"
	"sort"

	"github.com/spacesedan/vidinsight/internal/models"
)

const (
	SUGGESTION_WEIGHT = 2.0
	NEGATIVE_WEIGHT   = 1.8
	NEUTRAL_WEIGHT    = 1.0
	POSITIVE_WEIGHT   = 1.0

	HIGH_THRESHOLD   = 4.0
	MEDIUM_THRESHOLD = 2.0

	TOP_COMMENT_LIMIT = 10
)

func categoryWeight(category models.SentimentCategory, isSuggestion bool) float64 {
	if isSuggestion || category == models.SentimentSuggestion {
		return SUGGESTION_WEIGHT
	}
	switch category {
	case models.SentimentNegative:
		return NEGATIVE_WEIGHT
	case models.SentimentPositive:
		return POSITIVE_WEIGHT
	default:
		return NEUTRAL_WEIGHT
	}
}

// Score computes a comment's priority score. Engagement contributes
// logarithmically so a viral comment cannot drown out actionable criticism.
func Score(category models.SentimentCategory, isSuggestion bool, engagement int) float64 {
	if engagement < 0 {
		engagement = 0
	}
	return categoryWeight(category, isSuggestion) * (1 + math.Log1p(float64(engagement)))
}

// TierFor maps a score onto the high/medium/low buckets.
func TierFor(score float64) models.PriorityTier {
	switch {
	case score >= HIGH_THRESHOLD:
		return models.PriorityHigh
	case score >= MEDIUM_THRESHOLD:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

type scoredComment struct {
	id    string
	score float64
	index int
}

// Summarize assigns a tier to every comment in place and builds the aggregate
// counts, the top comment ranking, and per-topic priorities.
func Summarize(comments []models.CommentAnalysis, topics []models.TopicResult) models.PrioritySummary {
	summary := models.PrioritySummary{
		TierCounts:     make(map[models.PriorityTier]int),
		CategoryCounts: make(map[models.SentimentCategory]int),
	}

	scored := make([]scoredComment, 0, len(comments))
	for i := range comments {
		c := &comments[i]
		score := Score(c.Sentiment.Category, c.Sentiment.IsSuggestion, c.Comment.LikeCount)
		c.Priority = TierFor(score)

		summary.TierCounts[c.Priority]++
		summary.CategoryCounts[c.Sentiment.Category]++
		scored = append(scored, scoredComment{id: c.Comment.ID, score: score, index: i})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].index < scored[j].index
	})
	limit := TOP_COMMENT_LIMIT
	if len(scored) < limit {
		limit = len(scored)
	}
	summary.TopCommentIDs = make([]string, 0, limit)
	for _, sc := range scored[:limit] {
		summary.TopCommentIDs = append(summary.TopCommentIDs, sc.id)
	}

	summary.TopicPriorities = topicPriorities(topics)
	return summary
}

// topicPriorities ranks each topic by the share of its comments that are
// negative or suggestions. Topics dominated by actionable sentiment surface
// as high priority regardless of raw size.
func topicPriorities(topics []models.TopicResult) []models.TopicPriority {
	priorities := make([]models.TopicPriority, 0, len(topics))
	for _, topic := range topics {
		if topic.MentionCount == 0 {
			continue
		}

		total := float64(topic.MentionCount)
		negShare := float64(topic.SentimentBreakdown[models.SentimentNegative]) / total
		sugShare := float64(topic.SentimentBreakdown[models.SentimentSuggestion]) / total

		actionable := negShare + sugShare
		tier := models.PriorityLow
		switch {
		case actionable >= 0.5:
			tier = models.PriorityHigh
		case actionable >= 0.25:
			tier = models.PriorityMedium
		}

		priorities = append(priorities, models.TopicPriority{
			TopicID:         topic.TopicID,
			Tier:            tier,
			NegativeShare:   negShare,
			SuggestionShare: sugShare,
		})
	}
	return priorities
}
