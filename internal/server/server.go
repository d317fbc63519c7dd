// Package server exposes the analysis pipeline over HTTP. Analyses stream
// their progress to the client as server-sent events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/spacesedan/vidinsight/config"
	"github.com/spacesedan/vidinsight/internal/clients"
	"github.com/spacesedan/vidinsight/internal/models"
	"github.com/spacesedan/vidinsight/internal/pipeline"
	"github.com/spacesedan/vidinsight/internal/storage"
	"github.com/spacesedan/vidinsight/internal/youtube"
)

const (
	DEFAULT_CACHE_TTL = time.Hour

	// Budget for history and cache writes after the terminal event.
	persistTimeout = 10 * time.Second
)

type Server struct {
	orchestrator *pipeline.Orchestrator
	store        *storage.Store
	cacheTTL     time.Duration

	remoteHealthy     *atomic.Bool
	summarizerHealthy *atomic.Bool
}

func NewServer(orchestrator *pipeline.Orchestrator, store *storage.Store) *Server {
	return &Server{
		orchestrator:      orchestrator,
		store:             store,
		cacheTTL:          config.GetDuration("ANALYSIS_CACHE_TTL", DEFAULT_CACHE_TTL),
		remoteHealthy:     &atomic.Bool{},
		summarizerHealthy: &atomic.Bool{},
	}
}

// HealthFlags exposes the backend liveness flags for the background monitors
// to write into.
func (s *Server) HealthFlags() (remote, summarizer *atomic.Bool) {
	return s.remoteHealthy, s.summarizerHealthy
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /history/{id}", s.handleHistoryEntry)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

type analyzeRequest struct {
	URL string `json:"url"`
}

// handleAnalyze runs the pipeline for one video and streams its events as
// SSE. A cached result short-circuits the run entirely.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "request body must be JSON with a url field")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	videoID, err := youtube.ExtractVideoID(req.URL)
	if err == nil && s.serveCached(r.Context(), w, flusher, videoID) {
		return
	}

	stream := s.orchestrator.Run(r.Context(), req.URL)
	for {
		event, err := stream.Next(r.Context())
		if errors.Is(err, pipeline.ErrStreamDone) {
			return
		}
		if err != nil {
			slog.Warn("[Server] Client disconnected mid-analysis",
				slog.String("error", err.Error()))
			return
		}

		writeEvent(w, flusher, event)

		if event.Type == models.EventComplete && event.Result != nil {
			// Detached from the request context so a client dropping
			// right after the terminal event cannot cancel the write.
			persistCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			s.persist(persistCtx, videoID, event.Result)
			cancel()
		}
	}
}

// serveCached replays a cached terminal event when one exists for the video.
func (s *Server) serveCached(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, videoID string) bool {
	vc := clients.GetValkeyClient()
	if !vc.Enabled() {
		return false
	}

	payload, ok := vc.GetCachedAnalysis(ctx, videoID)
	if !ok {
		return false
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		slog.Warn("[Server] Discarding undecodable cached analysis",
			slog.String("video_id", videoID))
		return false
	}

	slog.Info("[Server] Serving cached analysis", slog.String("video_id", videoID))
	writeEvent(w, flusher, &models.AnalysisEvent{
		Type:   models.EventComplete,
		Stage:  models.StageDone,
		Result: &result,
	})
	return true
}

func (s *Server) persist(ctx context.Context, videoID string, result *models.AnalysisResult) {
	if s.store != nil {
		if _, err := s.store.SaveAnalysis(ctx, result); err != nil {
			slog.Error("[Server] Failed to save analysis",
				slog.String("video_id", videoID),
				slog.String("error", err.Error()))
		}
	}

	vc := clients.GetValkeyClient()
	if vc.Enabled() && videoID != "" {
		if payload, err := json.Marshal(result); err == nil {
			if err := vc.CacheAnalysis(ctx, videoID, payload, s.cacheTTL); err != nil {
				slog.Warn("[Server] Failed to cache analysis",
					slog.String("video_id", videoID),
					slog.String("error", err.Error()))
			}
		}
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "history storage disabled")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := s.store.ListRecent(r.Context(), limit)
	if err != nil {
		slog.Error("[Server] Failed to list history", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if records == nil {
		records = []storage.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "history storage disabled")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	result, err := s.store.GetAnalysis(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"remote_scoring":  s.remoteHealthy.Load(),
		"summarizer":      s.summarizerHealthy.Load(),
		"result_cache":    clients.GetValkeyClient().Enabled(),
		"history_storage": s.store != nil,
	})
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event *models.AnalysisEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("[Server] Failed to encode event", slog.String("error", err.Error()))
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("[Server] Failed to encode response", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
