package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-supply-planner/internal/shared"
)

// Gateway turns oracle text into decoded JSON and classifies every failure.
// It never retries.
type Gateway struct {
	gen Generator
}

func NewGateway(gen Generator) *Gateway {
	return &Gateway{gen: gen}
}

// StructuredJSON runs req in schema-constrained mode and decodes the answer into out.
func (g *Gateway) StructuredJSON(ctx context.Context, agent string, req Request, out any) (shared.AgentMeta, error) {
	if req.Schema == nil {
		return shared.AgentMeta{AgentName: agent}, fmt.Errorf("%s: structured request without schema", agent)
	}
	req.Search = false
	return g.do(ctx, agent, req, out)
}

// SearchJSON runs req with web search enabled. The model is only asked in
// prose for JSON, so fences are stripped before decoding.
func (g *Gateway) SearchJSON(ctx context.Context, agent string, req Request, out any) (shared.AgentMeta, error) {
	req.Schema = nil
	req.Search = true
	return g.do(ctx, agent, req, out)
}

func (g *Gateway) do(ctx context.Context, agent string, req Request, out any) (shared.AgentMeta, error) {
	start := time.Now()
	meta := shared.AgentMeta{AgentName: agent}

	resp, err := g.gen.Generate(ctx, req)
	meta.Latency = time.Since(start)
	if err != nil {
		return meta, classifyTransport(agent, err)
	}
	meta.Usage = resp.Usage
	meta.SearchQueries = resp.SearchQueries

	text := StripCodeFences(resp.Content)
	if text == "" {
		return meta, &Error{Kind: KindEmptyResponse, Agent: agent, Err: ErrEmptyResponse}
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return meta, &Error{
			Kind:  KindMalformedResponse,
			Agent: agent,
			Err:   fmt.Errorf("failed to parse JSON response: %w. Response: %s", err, truncate(text, 512)),
		}
	}
	return meta, nil
}

// StripCodeFences removes ```json and ``` markers wherever they appear and trims the rest.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
