// Package youtube extracts video metadata and comment threads by shelling
// out to yt-dlp. No API key is required; the binary must be on PATH.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/spacesedan/vidinsight/config"
	"github.com/spacesedan/vidinsight/internal/models"
)

const (
	YT_DLP_BINARY            = "yt-dlp"
	DEFAULT_METADATA_TIMEOUT = 30 * time.Second
	DEFAULT_COMMENTS_TIMEOUT = 180 * time.Second
	DEFAULT_MAX_COMMENTS     = 500
)

var (
	ErrInvalidURL       = errors.New("youtube: not a recognizable video URL")
	ErrVideoNotFound    = errors.New("youtube: video not found or unavailable")
	ErrCommentsDisabled = errors.New("youtube: comments are disabled for this video")
)

// ExtractionError wraps a yt-dlp failure with the stderr tail for logs.
type ExtractionError struct {
	Op     string
	Stderr string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("youtube: %s failed: %v", e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Video IDs are always 11 characters from this alphabet.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`/shorts/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`/live/([a-zA-Z0-9_-]{11})`),
}

var bareVideoID = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ExtractVideoID pulls the 11-character video ID out of any of the common
// YouTube URL shapes, or accepts a bare ID as-is.
func ExtractVideoID(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if bareVideoID.MatchString(trimmed) {
		return trimmed, nil
	}
	for _, pattern := range videoIDPatterns {
		if match := pattern.FindStringSubmatch(trimmed); match != nil {
			return match[1], nil
		}
	}
	return "", ErrInvalidURL
}

type Extractor struct {
	binary          string
	metadataTimeout time.Duration
	commentsTimeout time.Duration
	maxComments     int
}

func NewExtractor() *Extractor {
	return &Extractor{
		binary:          config.GetString("YT_DLP_BINARY", YT_DLP_BINARY),
		metadataTimeout: config.GetDuration("YT_METADATA_TIMEOUT", DEFAULT_METADATA_TIMEOUT),
		commentsTimeout: config.GetDuration("YT_COMMENTS_TIMEOUT", DEFAULT_COMMENTS_TIMEOUT),
		maxComments:     config.GetInt("YT_MAX_COMMENTS", DEFAULT_MAX_COMMENTS),
	}
}

// videoDump is the subset of yt-dlp's --dump-json output we consume.
type videoDump struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	ChannelID   string        `json:"channel_id"`
	Channel     string        `json:"channel"`
	Uploader    string        `json:"uploader"`
	Description string        `json:"description"`
	Thumbnail   string        `json:"thumbnail"`
	Timestamp   int64         `json:"timestamp"`
	Comments    []commentDump `json:"comments"`
}

type commentDump struct {
	ID              string  `json:"id"`
	Text            string  `json:"text"`
	Author          string  `json:"author"`
	AuthorThumbnail string  `json:"author_thumbnail"`
	LikeCount       int     `json:"like_count"`
	Timestamp       float64 `json:"timestamp"`
	Parent          string  `json:"parent"`
}

// GetVideoMetadata fetches a video's metadata without downloading media.
func (e *Extractor) GetVideoMetadata(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	dump, err := e.runDump(ctx, videoID, e.metadataTimeout,
		"--dump-json",
		"--no-download",
		"--no-warnings",
	)
	if err != nil {
		return nil, err
	}

	meta := &models.VideoMetadata{
		ID:           dump.ID,
		Title:        dump.Title,
		ChannelID:    dump.ChannelID,
		ChannelTitle: dump.Channel,
		Description:  dump.Description,
		ThumbnailURL: dump.Thumbnail,
	}
	if meta.ChannelTitle == "" {
		meta.ChannelTitle = dump.Uploader
	}
	if dump.Timestamp > 0 {
		published := time.Unix(dump.Timestamp, 0).UTC()
		meta.PublishedAt = &published
	}
	return meta, nil
}

// GetComments fetches up to maxComments top-level comments and replies.
// maxComments <= 0 uses the configured default.
func (e *Extractor) GetComments(ctx context.Context, videoID string, maxComments int) ([]models.CommentRecord, error) {
	if maxComments <= 0 {
		maxComments = e.maxComments
	}

	dump, err := e.runDump(ctx, videoID, e.commentsTimeout,
		"--dump-json",
		"--skip-download",
		"--no-warnings",
		"--write-comments",
		"--extractor-args", fmt.Sprintf("youtube:max_comments=%d,all,100,100", maxComments),
	)
	if err != nil {
		return nil, err
	}

	comments := make([]models.CommentRecord, 0, len(dump.Comments))
	for _, c := range dump.Comments {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		record := models.CommentRecord{
			ID:              c.ID,
			AuthorName:      c.Author,
			AuthorThumbnail: c.AuthorThumbnail,
			Text:            c.Text,
			LikeCount:       c.LikeCount,
		}
		if c.Parent != "" && c.Parent != "root" {
			record.ParentID = c.Parent
		}
		if c.Timestamp > 0 {
			published := time.Unix(int64(c.Timestamp), 0).UTC()
			record.PublishedAt = &published
		}
		comments = append(comments, record)
		if len(comments) == maxComments {
			break
		}
	}

	slog.Info("[YouTubeExtractor] Fetched comments",
		slog.String("video_id", videoID),
		slog.Int("count", len(comments)))
	return comments, nil
}

func (e *Extractor) runDump(ctx context.Context, videoID string, timeout time.Duration, args ...string) (*videoDump, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := "https://www.youtube.com/watch?v=" + videoID
	cmd := exec.CommandContext(ctx, e.binary, append(args, url)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, classifyFailure(args[0], stderr.String(), err)
	}

	var dump videoDump
	if err := json.Unmarshal(stdout.Bytes(), &dump); err != nil {
		return nil, &ExtractionError{Op: "parse dump", Stderr: stderr.String(), Err: err}
	}
	return &dump, nil
}

// classifyFailure maps known yt-dlp stderr messages onto sentinel errors so
// callers can distinguish user errors from infrastructure failures.
func classifyFailure(op, stderr string, err error) error {
	lowered := strings.ToLower(stderr)
	switch {
	case strings.Contains(lowered, "video unavailable"),
		strings.Contains(lowered, "private video"),
		strings.Contains(lowered, "this video has been removed"):
		return fmt.Errorf("%w: %s", ErrVideoNotFound, firstLine(stderr))
	case strings.Contains(lowered, "comments are turned off"),
		strings.Contains(lowered, "comments are disabled"):
		return fmt.Errorf("%w", ErrCommentsDisabled)
	default:
		slog.Error("[YouTubeExtractor] yt-dlp failed",
			slog.String("op", op),
			slog.String("stderr", firstLine(stderr)))
		return &ExtractionError{Op: op, Stderr: stderr, Err: err}
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
