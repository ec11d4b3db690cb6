// Package docsite builds a plugin's documentation site: it collects the
// markdown guides of a plugin source tree, renders them to a static HTML
// site, checks their links and can publish the result to a git remote.
package docsite

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives a documentation build. It is loaded from docs.yaml.
type Config struct {
	// Title heads the generated index page.
	Title string `yaml:"title"`
	// Source is the directory scanned for markdown files.
	Source string `yaml:"source"`
	// Output receives the rendered site.
	Output string `yaml:"output"`
	// BaseURL prefixes absolute links in the rendered site.
	BaseURL string `yaml:"base_url,omitempty"`

	Verify  VerifyConfig  `yaml:"verify,omitempty"`
	Publish PublishConfig `yaml:"publish,omitempty"`
	Events  EventsConfig  `yaml:"events,omitempty"`
	Serve   ServeConfig   `yaml:"serve,omitempty"`
}

// VerifyConfig controls external link checking.
type VerifyConfig struct {
	Enabled bool `yaml:"enabled"`
	// MaxConcurrent caps parallel link checks. Zero means 10.
	MaxConcurrent int `yaml:"max_concurrent,omitempty"`
	// TimeoutSeconds bounds one link check. Zero means 10.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// PublishConfig describes the git remote the site is pushed to.
type PublishConfig struct {
	// URL of the target repository. Empty disables publishing.
	URL    string `yaml:"url,omitempty"`
	Branch string `yaml:"branch,omitempty"`
	// Token authenticates HTTPS pushes.
	Token string `yaml:"token,omitempty"`
	// Author of the publish commits. Defaults to "addonkit".
	AuthorName  string `yaml:"author_name,omitempty"`
	AuthorEmail string `yaml:"author_email,omitempty"`
}

// EventsConfig enables build event publishing over NATS.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	// Addr defaults to ":8750".
	Addr string `yaml:"addr,omitempty"`
}

// LoadConfig reads and validates a docs.yaml file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read docs config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse docs config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = "Plugin documentation"
	}
	if c.Source == "" {
		c.Source = "doc"
	}
	if c.Output == "" {
		c.Output = "site"
	}
	if c.Verify.MaxConcurrent <= 0 {
		c.Verify.MaxConcurrent = 10
	}
	if c.Verify.TimeoutSeconds <= 0 {
		c.Verify.TimeoutSeconds = 10
	}
	if c.Publish.Branch == "" {
		c.Publish.Branch = "main"
	}
	if c.Publish.AuthorName == "" {
		c.Publish.AuthorName = "addonkit"
	}
	if c.Publish.AuthorEmail == "" {
		c.Publish.AuthorEmail = "addonkit@localhost"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "addonkit.docs.builds"
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":8750"
	}
}

func (c *Config) validate() error {
	if c.Events.Enabled && c.Events.URL == "" {
		return fmt.Errorf("docsite: events enabled without a NATS URL")
	}
	return nil
}
