package clients

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/spacesedan/vidinsight/config"
)

const (
	ollamaRequestTimeout = 60 * time.Second // Timeout for individual Ollama generation requests

	DEFAULT_OLLAMA_URL   = "http://localhost:11434"
	DEFAULT_OLLAMA_MODEL = "llama3.2:3b"
)

var (
	ollamaClientInstance *OllamaClient
	ollamaOnce           sync.Once
)

// OllamaClient talks to a local Ollama daemon through its OpenAI-compatible
// endpoint.
type OllamaClient struct {
	Client  *openai.Client
	BaseURL string
	Model   string
	Enabled bool
}

func GetOllamaClient() *OllamaClient {
	ollamaOnce.Do(func() {
		baseURL := config.GetString("OLLAMA_URL", DEFAULT_OLLAMA_URL)
		model := config.GetString("OLLAMA_MODEL", DEFAULT_OLLAMA_MODEL)
		enabled := config.GetBool("OLLAMA_ENABLED", false)

		cfg := openai.DefaultConfig("ollama") // Ollama ignores the API key
		cfg.BaseURL = baseURL + "/v1"
		cfg.HTTPClient = &http.Client{
			Timeout: ollamaRequestTimeout,
		}

		ollamaClientInstance = &OllamaClient{
			Client:  openai.NewClientWithConfig(cfg),
			BaseURL: baseURL,
			Model:   model,
			Enabled: enabled,
		}
		slog.Info("[OllamaClient] Ollama client initialized",
			slog.String("model", model),
			slog.String("url", baseURL),
			slog.Bool("enabled", enabled))
	})
	return ollamaClientInstance
}

// HealthCheck pings the Ollama daemon's version endpoint.
func (oc *OllamaClient) HealthCheck(ctx context.Context) bool {
	if !oc.Enabled {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, oc.BaseURL+"/api/version", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
