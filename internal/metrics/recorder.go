package metrics

import (
	"ai-supply-planner/internal/llm"
	"ai-supply-planner/internal/shared"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder exports per-agent oracle usage to Prometheus.
type Recorder struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
}

// NewRecorder registers the agent metrics on the provided registerer.
// A nil registerer yields a Recorder that drops everything.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		return &Recorder{}
	}
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_agent_calls_total",
		Help: "Oracle calls per agent and outcome.",
	}, []string{"agent", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_agent_duration_seconds",
		Help:    "Latency of oracle calls in seconds.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
	}, []string{"agent"})
	tokens := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_agent_tokens_total",
		Help: "Tokens consumed per agent and kind.",
	}, []string{"agent", "kind"})
	reg.MustRegister(calls, duration, tokens)
	return &Recorder{calls: calls, duration: duration, tokens: tokens}
}

// ObserveAgent records one oracle round trip.
func (r *Recorder) ObserveAgent(meta shared.AgentMeta, err error) {
	if r == nil || r.calls == nil {
		return
	}
	agent := normalizeLabel(meta.AgentName)

	r.calls.WithLabelValues(agent, outcome(err)).Inc()
	r.duration.WithLabelValues(agent).Observe(meta.Latency.Seconds())
	if meta.Usage.PromptTokens > 0 {
		r.tokens.WithLabelValues(agent, "prompt").Add(float64(meta.Usage.PromptTokens))
	}
	if meta.Usage.CompletionTokens > 0 {
		r.tokens.WithLabelValues(agent, "completion").Add(float64(meta.Usage.CompletionTokens))
	}
}

func outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	if kind := llm.KindOf(err); kind != "" {
		return string(kind)
	}
	return OutcomeError
}

func normalizeLabel(agent string) string {
	if agent == "" {
		return "unknown"
	}
	return agent
}
