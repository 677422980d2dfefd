package llm

import (
	"context"

	"ai-supply-planner/internal/shared"

	"google.golang.org/genai"
)

// Request is a single oracle round trip.
type Request struct {
	Prompt            string
	SystemInstruction string

	// Schema switches the oracle into schema-constrained JSON mode.
	Schema *genai.Schema
	// Search enables web-search grounding. The oracle cannot combine it with Schema.
	Search bool
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content       string
	Usage         shared.TokenUsage
	SearchQueries []string
}

// Generator is the boundary to the generative model.
type Generator interface {
	Generate(ctx context.Context, req Request) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
