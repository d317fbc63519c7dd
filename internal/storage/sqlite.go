// Package storage persists completed analyses to a local SQLite database so
// past runs can be listed and reopened without re-fetching the video.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/spacesedan/vidinsight/config"
	"github.com/spacesedan/vidinsight/internal/models"
)

const DEFAULT_DB_PATH = "./vidinsight.db"

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	video_id      TEXT NOT NULL,
	title         TEXT NOT NULL,
	channel       TEXT NOT NULL,
	comment_count INTEGER NOT NULL,
	topic_count   INTEGER NOT NULL,
	result_json   TEXT NOT NULL,
	created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_analyses_video_id ON analyses(video_id);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
`

// AnalysisRecord is one row of the history listing. ResultJSON is omitted
// from listings and populated only by GetAnalysis.
type AnalysisRecord struct {
	ID           int64     `json:"id"`
	VideoID      string    `json:"video_id"`
	Title        string    `json:"title"`
	Channel      string    `json:"channel"`
	CommentCount int       `json:"comment_count"`
	TopicCount   int       `json:"topic_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the history database at the configured
// path and applies the schema.
func NewStore() (*Store, error) {
	path := config.GetString("SQLITE_DB_PATH", DEFAULT_DB_PATH)

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	slog.Info("[Store] History database ready", slog.String("path", path))
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveAnalysis writes one completed run. The full result is stored as JSON
// alongside the listing columns.
func (s *Store) SaveAnalysis(ctx context.Context, result *models.AnalysisResult) (int64, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("encode analysis: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (video_id, title, channel, comment_count, topic_count, result_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		result.Video.ID,
		result.Video.Title,
		result.Video.ChannelTitle,
		len(result.Comments),
		len(result.Topics),
		string(payload),
	)
	if err != nil {
		return 0, fmt.Errorf("insert analysis: %w", err)
	}
	return res.LastInsertId()
}

// ListRecent returns the newest analyses, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, video_id, title, channel, comment_count, topic_count, created_at
		FROM analyses
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		if err := rows.Scan(&rec.ID, &rec.VideoID, &rec.Title, &rec.Channel,
			&rec.CommentCount, &rec.TopicCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetAnalysis loads a stored run's full result by row ID.
func (s *Store) GetAnalysis(ctx context.Context, id int64) (*models.AnalysisResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM analyses WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("analysis %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load analysis: %w", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &result, nil
}
