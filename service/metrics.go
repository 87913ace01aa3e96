package service

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ibreez3/pixel-ai/chat"
)

type Metrics struct {
	registry    *prometheus.Registry
	completions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	probes      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pixelai",
			Name:      "completions_total",
			Help:      "Completion calls by model and result.",
		}, []string{"model", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pixelai",
			Name:      "completion_duration_seconds",
			Help:      "Completion call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"model"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pixelai",
			Name:      "key_probes_total",
			Help:      "API key probes by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.completions, m.latency, m.probes)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Instrument wraps gw so every call is counted. The result label is "ok" or
// the outcome's failure kind.
func (m *Metrics) Instrument(gw chat.Gateway) chat.Gateway {
	return &instrumented{next: gw, m: m}
}

type instrumented struct {
	next chat.Gateway
	m    *Metrics
}

func (g *instrumented) CheckKeyStatus(ctx context.Context) (chat.KeyProbe, error) {
	probe, err := g.next.CheckKeyStatus(ctx)
	result := "configured"
	switch {
	case err != nil:
		result = "error"
	case !probe.Configured:
		result = "missing"
	}
	g.m.probes.WithLabelValues(result).Inc()
	return probe, err
}

func (g *instrumented) Complete(ctx context.Context, turns []chat.Turn, model string) chat.Outcome {
	start := time.Now()
	out := g.next.Complete(ctx, turns, model)
	g.m.latency.WithLabelValues(model).Observe(time.Since(start).Seconds())
	result := "ok"
	if !out.Success {
		result = string(out.Kind)
		if result == "" {
			result = "unknown"
		}
	}
	g.m.completions.WithLabelValues(model, result).Inc()
	return out
}
