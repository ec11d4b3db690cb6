package docsite

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
)

// BuildEvent is published after every completed build.
type BuildEvent struct {
	BuildID     string        `json:"build_id"`
	Site        string        `json:"site"`
	Pages       int           `json:"pages"`
	BrokenLinks int           `json:"broken_links"`
	Duration    time.Duration `json:"duration"`
	FinishedAt  time.Time     `json:"finished_at"`
}

// Publisher sends build events to interested consumers.
type Publisher interface {
	PublishBuild(ev *BuildEvent) error
	Close() error
}

// NopPublisher drops all events. Used when the events section is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishBuild(*BuildEvent) error { return nil }
func (NopPublisher) Close() error                   { return nil }

type natsPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to the configured NATS server, or returns a no-op
// publisher when events are disabled.
func NewPublisher(cfg *Config) (Publisher, error) {
	if !cfg.Events.Enabled {
		return NopPublisher{}, nil
	}
	conn, err := nats.Connect(cfg.Events.URL,
		nats.Name("addonkit-docs"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &natsPublisher{conn: conn, subject: cfg.Events.Subject}, nil
}

func (p *natsPublisher) PublishBuild(ev *BuildEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode build event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish build event: %w", err)
	}
	return p.conn.Flush()
}

func (p *natsPublisher) Close() error {
	p.conn.Close()
	return nil
}
