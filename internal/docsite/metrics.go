package docsite

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

// Metrics records build activity for the preview server's /metrics endpoint.
type Metrics struct {
	registry      *prom.Registry
	builds        *prom.CounterVec
	buildDuration prom.Histogram
	pages         prom.Gauge
	brokenLinks   prom.Gauge
}

// NewMetrics constructs and registers the build metrics.
func NewMetrics(reg *prom.Registry) *Metrics {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	m := &Metrics{registry: reg}
	m.builds = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "addonkit",
		Name:      "docs_builds_total",
		Help:      "Documentation builds by outcome",
	}, []string{"outcome"})
	m.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "addonkit",
		Name:      "docs_build_duration_seconds",
		Help:      "Total documentation build duration",
		Buckets:   prom.DefBuckets,
	})
	m.pages = prom.NewGauge(prom.GaugeOpts{
		Namespace: "addonkit",
		Name:      "docs_pages",
		Help:      "Pages in the last successful build",
	})
	m.brokenLinks = prom.NewGauge(prom.GaugeOpts{
		Namespace: "addonkit",
		Name:      "docs_broken_links",
		Help:      "Broken links found in the last build",
	})
	reg.MustRegister(m.builds, m.buildDuration, m.pages, m.brokenLinks)
	return m
}

// Registry exposes the registry backing these metrics.
func (m *Metrics) Registry() *prom.Registry { return m.registry }

// RecordBuild records one finished build.
func (m *Metrics) RecordBuild(build *Build, err error) {
	if err != nil {
		m.builds.WithLabelValues("failure").Inc()
		return
	}
	m.builds.WithLabelValues("success").Inc()
	m.buildDuration.Observe(build.Duration.Seconds())
	m.pages.Set(float64(len(build.Pages)))
	m.brokenLinks.Set(float64(len(build.Broken)))
}
