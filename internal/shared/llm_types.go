package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta holds operational metadata for a single oracle round trip.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration

	// SearchQueries lists the web searches the model ran when grounding was enabled.
	SearchQueries []string
}
