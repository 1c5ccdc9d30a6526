package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"resume-matcher/internal/llm"
)

const defaultTimeout = 120 * time.Second

// Config selects the backend. Project and Location switch the client to Vertex AI.
type Config struct {
	APIKey   string
	Vertex   bool
	Project  string
	Location string
	BaseURL  string
	Timeout  time.Duration
}

// Client implements llm.Client on top of the Google Gen AI SDK.
type Client struct {
	models *genai.Models
}

// NewClient constructs a Gemini client for the Gemini API or Vertex AI backend.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	cc := &genai.ClientConfig{
		HTTPClient: &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)},
		HTTPOptions: genai.HTTPOptions{
			BaseURL: strings.TrimSpace(cfg.BaseURL),
		},
	}
	if cfg.Vertex {
		if strings.TrimSpace(cfg.Project) == "" {
			return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for Vertex AI")
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	} else {
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required")
		}
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{models: client.Models}, nil
}

// Complete sends a single-turn prompt and returns the concatenated text parts.
func (c *Client) Complete(ctx context.Context, in llm.Request) (string, error) {
	if strings.TrimSpace(in.Model) == "" {
		return "", fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(in.Temperature),
	}
	if in.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(in.MaxTokens)
	}

	resp, err := c.models.GenerateContent(ctx, in.Model, genai.Text(in.Prompt), gc)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini response missing candidates")
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini response empty content")
	}
	return text, nil
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}

var _ llm.Client = (*Client)(nil)
