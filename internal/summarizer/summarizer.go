// Package summarizer produces short natural-language digests of a sentiment
// bucket's comments through a local Ollama model. Summaries are best-effort
// decoration; every failure path returns an empty string, never an error that
// could fail an analysis run.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/spacesedan/vidinsight/internal/clients"
	"github.com/spacesedan/vidinsight/internal/models"
)

const (
	MAX_COMMENTS_PER_SUMMARY = 20
	MAX_COMMENT_CHARS        = 200
	MAX_TOPIC_LABELS         = 5
	SUMMARY_TEMPERATURE      = 0.7
	SUMMARY_MAX_TOKENS       = 150
)

var sectionLabels = map[models.SentimentCategory]string{
	models.SentimentPositive:   "What People Liked",
	models.SentimentNegative:   "Concerns and Criticisms",
	models.SentimentSuggestion: "Suggestions for Improvement",
	models.SentimentNeutral:    "General Observations",
}

type Summarizer struct {
	client *clients.OllamaClient
}

func NewSummarizer() *Summarizer {
	return &Summarizer{client: clients.GetOllamaClient()}
}

func (s *Summarizer) Available() bool {
	return s.client != nil && s.client.Enabled
}

// SummarizeComments condenses one sentiment bucket into a few sentences.
// At most MAX_COMMENTS_PER_SUMMARY comments are sampled and each is truncated
// before prompting so the request stays inside small-model context windows.
func (s *Summarizer) SummarizeComments(ctx context.Context, comments []string, sentiment models.SentimentCategory, topicLabels []string) string {
	if !s.Available() || len(comments) == 0 {
		return ""
	}

	if len(comments) > MAX_COMMENTS_PER_SUMMARY {
		comments = comments[:MAX_COMMENTS_PER_SUMMARY]
	}
	if len(topicLabels) > MAX_TOPIC_LABELS {
		topicLabels = topicLabels[:MAX_TOPIC_LABELS]
	}

	section := sectionLabels[sentiment]
	if section == "" {
		section = "General Observations"
	}

	resp, err := s.client.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.client.Model,
		Temperature: SUMMARY_TEMPERATURE,
		MaxTokens:   SUMMARY_MAX_TOKENS,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You summarize YouTube comment sections for video creators. Be concise and concrete. Respond with 2-3 sentences, no preamble.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(section, comments, topicLabels),
			},
		},
	})
	if err != nil {
		slog.Warn("[Summarizer] Summary generation failed",
			slog.String("sentiment", string(sentiment)),
			slog.String("error", err.Error()))
		return ""
	}
	if len(resp.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

func buildPrompt(section string, comments []string, topicLabels []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Summarize the \"%s\" section of a video's comments.\n", section)
	if len(topicLabels) > 0 {
		fmt.Fprintf(&b, "Recurring topics: %s.\n", strings.Join(topicLabels, ", "))
	}
	b.WriteString("\nComments:\n")
	for _, comment := range comments {
		b.WriteString("- ")
		b.WriteString(truncate(comment, MAX_COMMENT_CHARS))
		b.WriteByte('\n')
	}
	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}
