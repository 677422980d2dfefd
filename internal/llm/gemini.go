package llm

import (
	"context"
	"fmt"

	"ai-supply-planner/internal/config"
	"ai-supply-planner/internal/shared"

	"google.golang.org/genai"
)

const jsonMIMEType = "application/json"

// geminiClient is a client for the Google Gemini API.
type geminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiClient{client: client, model: cfg.GeminiModel}, nil
}

// Generate sends the request to the model and returns the raw text.
// An empty Content is not an error here; the Gateway decides what that means.
func (c *geminiClient) Generate(ctx context.Context, req Request) (ContentResponse, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), c.buildConfig(req))
	if err != nil {
		return ContentResponse{}, err
	}

	out := ContentResponse{
		Content: resp.Text(),
		Usage:   shared.TokenUsage{Model: c.model},
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage.PromptTokens = int(u.PromptTokenCount)
		out.Usage.CompletionTokens = int(u.CandidatesTokenCount)
		out.Usage.TotalTokens = int(u.TotalTokenCount)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
		out.SearchQueries = resp.Candidates[0].GroundingMetadata.WebSearchQueries
	}
	return out, nil
}

func (c *geminiClient) buildConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = jsonMIMEType
		cfg.ResponseSchema = req.Schema
	}
	if req.Search {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return cfg
}
