package oracle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Gemini is the production oracle, backed by the Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// GeminiConfig configures the production oracle.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewGemini creates the production oracle.
func NewGemini(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("merge oracle API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle client: %w", err)
	}
	return &Gemini{client: client, model: model, timeout: timeout, logger: logger}, nil
}

// Merge sends one batched file-merge request. The call blocks for at most the
// configured timeout; retries happen in the promotion controller, not here.
func (g *Gemini) Merge(ctx context.Context, req MergeRequest) (MergeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	g.logger.Debug("requesting merge",
		zap.String("file", req.FilePath),
		zap.Int("components", len(req.Components)))

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(BuildPrompt(req)),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0),
		})
	if err != nil {
		return MergeResponse{}, fmt.Errorf("merge request for %s failed: %w", req.FilePath, err)
	}

	merged := CleanResponse(resp.Text())
	if merged == "" {
		return MergeResponse{}, fmt.Errorf("merge of %s: %w", req.FilePath, ErrEmptyResponse)
	}

	g.logger.Debug("merge complete",
		zap.String("file", req.FilePath),
		zap.Duration("elapsed", time.Since(start)))
	return MergeResponse{MergedText: merged}, nil
}
