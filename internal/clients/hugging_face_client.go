package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/spacesedan/vidinsight/config"
)

// HF Inference API router endpoint (new endpoint as of 2025)
const HF_API_URL = "https://router.huggingface.co/hf-inference/models"

const DEFAULT_ZERO_SHOT_MODEL = "facebook/bart-large-mnli"

var (
	huggingFaceInstance *HuggingFaceClient
	huggingFaceOnce     sync.Once
)

type HuggingFaceClient struct {
	Client  *http.Client
	BaseURL string
	token   string
	model   string
	enabled bool
}

// GetHuggingFaceClient returns the process-wide HF Inference API client. The
// enabled/credential decision is made once at first use and cached.
func GetHuggingFaceClient() *HuggingFaceClient {
	huggingFaceOnce.Do(func() {
		enabled := config.GetBool("HF_ENABLED", false)
		token := config.GetString("HF_TOKEN", "")

		switch {
		case !enabled:
			slog.Info("[HuggingFaceClient] Inference API disabled (HF_ENABLED=false)")
		case token == "":
			slog.Warn("[HuggingFaceClient] No HF_TOKEN found - using local models (slow)")
		default:
			slog.Info("[HuggingFaceClient] Using Hugging Face Inference API (fast)")
		}

		huggingFaceInstance = &HuggingFaceClient{
			Client:  &http.Client{},
			BaseURL: config.GetString("HF_API_URL", HF_API_URL),
			token:   token,
			model:   config.GetString("ZERO_SHOT_MODEL", DEFAULT_ZERO_SHOT_MODEL),
			enabled: enabled && token != "",
		}
	})
	return huggingFaceInstance
}

// Available reports whether the remote tier is configured for this process.
func (h *HuggingFaceClient) Available() bool {
	return h.enabled
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

type zeroShotRequest struct {
	Inputs     any                `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

// ZeroShot posts texts to the zero-shot classification model and returns the
// raw response body. Inputs is a single string for one text, a list
// otherwise, matching the API contract. The caller owns shape decoding.
func (h *HuggingFaceClient) ZeroShot(ctx context.Context, texts []string, labels []string, multiLabel bool, timeout time.Duration) (json.RawMessage, error) {
	if !h.enabled {
		return nil, fmt.Errorf("hf inference api not configured")
	}

	var inputs any = texts
	if len(texts) == 1 {
		inputs = texts[0]
	}

	payload := zeroShotRequest{
		Inputs: inputs,
		Parameters: zeroShotParameters{
			CandidateLabels: labels,
			MultiLabel:      multiLabel,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := h.BaseURL + "/" + h.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("User-Agent", USER_AGENT)

	start := time.Now()
	resp, err := h.Client.Do(req)
	if err != nil {
		slog.Warn("[HuggingFaceClient] Zero-shot request failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Warn("[HuggingFaceClient] Zero-shot HTTP error",
			slog.Int("status", resp.StatusCode),
			getPreview(respBody))
		return nil, fmt.Errorf("zero-shot request returned status %d", resp.StatusCode)
	}

	slog.Debug("[HuggingFaceClient] Zero-shot success",
		slog.Int("texts", len(texts)),
		slog.Duration("elapsed", time.Since(start)))

	return json.RawMessage(respBody), nil
}

// HealthCheck probes the zero-shot model with a minimal request. Used by the
// background monitor to surface remote tier degradation before requests hit
// the fallback path.
func (h *HuggingFaceClient) HealthCheck(ctx context.Context) bool {
	if !h.enabled {
		return false
	}

	_, err := h.ZeroShot(ctx, []string{"ok"}, []string{"positive", "negative"}, false, 10*time.Second)
	return err == nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}
