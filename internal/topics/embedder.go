package topics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/spacesedan/vidinsight/config"
)

// Embedder is one tier of the embedding chain. Implementations return one
// vector per text, in input order.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

const (
	DEFAULT_EMBEDDING_MODEL = "sentence-transformers/all-MiniLM-L6-v2"
	defaultModelDir         = "./models"
)

// ONNXEmbedder runs a sentence-embedding model through a hugot ONNX session.
// The session and pipeline are expensive; they initialize lazily on first use,
// exactly once per process, and the handle is read-only for inference
// afterwards.
type ONNXEmbedder struct {
	loadOnce sync.Once
	pipeline *pipelines.FeatureExtractionPipeline
	initErr  error

	modelDir  string
	modelName string
}

func NewONNXEmbedder() *ONNXEmbedder {
	return &ONNXEmbedder{
		modelDir:  config.GetString("EMBEDDING_MODEL_DIR", defaultModelDir),
		modelName: config.GetString("EMBEDDING_MODEL", DEFAULT_EMBEDDING_MODEL),
	}
}

func (e *ONNXEmbedder) Name() string { return "onnx-feature-extraction" }

func (e *ONNXEmbedder) load() error {
	e.loadOnce.Do(func() {
		start := time.Now()

		if err := os.MkdirAll(e.modelDir, os.ModePerm); err != nil {
			e.initErr = fmt.Errorf("failed to create model directory: %w", err)
			return
		}

		slog.Info("[Topics] Loading embedding model", slog.String("model", e.modelName))
		modelPath, err := hugot.DownloadModel(e.modelName, e.modelDir, hugot.NewDownloadOptions())
		if err != nil {
			e.initErr = fmt.Errorf("failed to download embedding model: %w", err)
			return
		}

		session, err := hugot.NewORTSession()
		if err != nil {
			e.initErr = fmt.Errorf("failed to initialize hugot session: %w", err)
			return
		}

		cfg := hugot.FeatureExtractionConfig{
			ModelPath: modelPath,
			Name:      "embeddingPipeline",
		}
		pipeline, err := hugot.NewPipeline(session, cfg)
		if err != nil {
			e.initErr = fmt.Errorf("failed to initialize embedding pipeline: %w", err)
			return
		}

		e.pipeline = pipeline
		slog.Info("[Topics] Embedding model loaded",
			slog.Duration("elapsed", time.Since(start)))
	})
	return e.initErr
}

func (e *ONNXEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if err := e.load(); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	output, err := e.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("embedding pipeline failed: %w", err)
	}

	raw := output.GetOutput()
	if len(raw) != len(texts) {
		return nil, fmt.Errorf("unexpected embedding count: want %d, got %d", len(texts), len(raw))
	}

	vectors := make([][]float64, len(raw))
	for i, item := range raw {
		embedding, ok := item.([]float32)
		if !ok {
			return nil, fmt.Errorf("unexpected embedding format from hugot")
		}
		vec := make([]float64, len(embedding))
		for j, val := range embedding {
			vec[j] = float64(val)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// LexicalEmbedder is the terminal embedding tier: sparse term-frequency
// vectors over the batch vocabulary, L2-normalized. Coarser than the model
// tier but dependency-free, deterministic and it never fails.
type LexicalEmbedder struct{}

func NewLexicalEmbedder() *LexicalEmbedder { return &LexicalEmbedder{} }

func (e *LexicalEmbedder) Name() string { return "lexical-tf" }

func (e *LexicalEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	vocab := UniqueTokens(texts)
	terms := make([]string, 0, len(vocab))
	for term := range vocab {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[term] = i
	}

	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vec := make([]float64, len(terms))
		for _, token := range tokenize(text) {
			vec[index[token]]++
		}

		norm := 0.0
		for _, val := range vec {
			norm += val * val
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range vec {
				vec[j] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors, nil
}
