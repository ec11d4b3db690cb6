package docsite

import (
	"context"
	"log/slog"
	"time"
)

// Builder runs the scan, render and verify stages of a documentation build
// and reports results to metrics and the event publisher.
type Builder struct {
	cfg     *Config
	metrics *Metrics
	events  Publisher
	logger  *slog.Logger
}

// NewBuilder wires a builder. Metrics and events may be nil for one-shot
// command line builds.
func NewBuilder(cfg *Config, metrics *Metrics, events Publisher, logger *slog.Logger) *Builder {
	if events == nil {
		events = NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{cfg: cfg, metrics: metrics, events: events, logger: logger}
}

// Build runs one full build of the site.
func (b *Builder) Build(ctx context.Context) (*Build, error) {
	pages, err := Scan(b.cfg.Source)
	if err != nil {
		b.record(nil, err)
		return nil, err
	}
	build, err := Render(b.cfg, pages)
	if err != nil {
		b.record(nil, err)
		return nil, err
	}
	if b.cfg.Verify.Enabled {
		broken, err := VerifyLinks(ctx, b.cfg, build)
		if err != nil {
			b.record(build, err)
			return nil, err
		}
		build.Broken = broken
		for _, bl := range broken {
			b.logger.Warn("broken link",
				"page", bl.Link.Page,
				"url", bl.Link.URL,
				"reason", bl.Reason)
		}
	}

	b.record(build, nil)
	ev := &BuildEvent{
		BuildID:     build.ID,
		Site:        b.cfg.Title,
		Pages:       len(build.Pages),
		BrokenLinks: len(build.Broken),
		Duration:    build.Duration,
		FinishedAt:  time.Now(),
	}
	if err := b.events.PublishBuild(ev); err != nil {
		b.logger.Warn("publish build event failed", "error", err)
	}
	b.logger.Info("build complete",
		"build_id", build.ID,
		"pages", len(build.Pages),
		"broken_links", len(build.Broken),
		"duration", build.Duration)
	return build, nil
}

func (b *Builder) record(build *Build, err error) {
	if b.metrics != nil {
		b.metrics.RecordBuild(build, err)
	}
}
