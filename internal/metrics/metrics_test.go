package metrics

import (
	"errors"
	"testing"
	"time"

	"ai-supply-planner/internal/llm"
	"ai-supply-planner/internal/shared"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderExportsAgentMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.ObserveAgent(shared.AgentMeta{
		AgentName: "OfferFinder",
		Latency:   1500 * time.Millisecond,
		Usage:     shared.TokenUsage{PromptTokens: 120, CompletionTokens: 30},
	}, nil)
	rec.ObserveAgent(shared.AgentMeta{AgentName: "OfferFinder", Latency: time.Second},
		&llm.Error{Kind: llm.KindMalformedResponse, Agent: "OfferFinder", Err: errors.New("bad")})
	rec.ObserveAgent(shared.AgentMeta{}, errors.New("boom"))

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assert.Equal(t, 1.0, counterValue(t, mfs, "planner_agent_calls_total", map[string]string{"agent": "OfferFinder", "outcome": OutcomeSuccess}))
	assert.Equal(t, 1.0, counterValue(t, mfs, "planner_agent_calls_total", map[string]string{"agent": "OfferFinder", "outcome": "malformed_response"}))
	assert.Equal(t, 1.0, counterValue(t, mfs, "planner_agent_calls_total", map[string]string{"agent": "unknown", "outcome": OutcomeError}))
	assert.Equal(t, 120.0, counterValue(t, mfs, "planner_agent_tokens_total", map[string]string{"agent": "OfferFinder", "kind": "prompt"}))
	assert.Equal(t, 30.0, counterValue(t, mfs, "planner_agent_tokens_total", map[string]string{"agent": "OfferFinder", "kind": "completion"}))

	h := findMetric(t, mfs, "planner_agent_duration_seconds", map[string]string{"agent": "OfferFinder"}).GetHistogram()
	assert.Equal(t, uint64(2), h.GetSampleCount())
	assert.InDelta(t, 2.5, h.GetSampleSum(), 0.001)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	assert.NotPanics(t, func() { rec.ObserveAgent(shared.AgentMeta{AgentName: "x"}, nil) })
	assert.NotPanics(t, func() { NewRecorder(nil).ObserveAgent(shared.AgentMeta{AgentName: "x"}, nil) })
}

func TestGetSysHealth(t *testing.T) {
	h := GetSysHealth(time.Now().Add(-90*time.Second), 3)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 3, h.Sessions)
	assert.Greater(t, h.Goroutines, 0)
	assert.NotEmpty(t, h.Uptime)
}

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	return findMetric(t, mfs, name, labels).GetCounter().GetValue()
}

func findMetric(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	got := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range labels {
		if got[k] != v {
			return false
		}
	}
	return true
}
