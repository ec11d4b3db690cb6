// Package plugin ties the helper pieces together for a plugin author: one
// Plugin value holds the HTTP site, settings, user data and search history,
// and carries the named-handler registry menu trees dispatch into.
//
// Composition is explicit: a plugin HAS a Site (p.Site.Get(...)), it does
// not inherit one.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/addonkit/addonkit/menu"
	"github.com/addonkit/addonkit/search"
	"github.com/addonkit/addonkit/settings"
	"github.com/addonkit/addonkit/site"
	"github.com/addonkit/addonkit/storage"
)

// ErrUnknownCall is returned when a menu entry names a handler nobody
// registered.
var ErrUnknownCall = errors.New("plugin: unknown call")

// HandlerFunc runs when a menu entry with a matching Call is activated.
type HandlerFunc func(ctx context.Context) error

// Plugin is the composition root of one media-center plugin.
type Plugin struct {
	Name string
	// Site is the plugin's HTTP wrapper; nil when the plugin is offline.
	Site *site.Site
	// Settings backs menu gating (When keys) and plugin options.
	Settings *settings.Settings
	// Data is the plugin's persistent user data.
	Data *storage.Store
	// Search is the plugin's search history, stored inside Data.
	Search *search.History

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// Option configures New.
type Option func(*Plugin) error

// WithSite attaches an HTTP site wrapper.
func WithSite(s *site.Site) Option {
	return func(p *Plugin) error {
		p.Site = s
		return nil
	}
}

// WithSettings replaces the settings loaded from the profile directory.
func WithSettings(s *settings.Settings) Option {
	return func(p *Plugin) error {
		p.Settings = s
		return nil
	}
}

// WithData replaces the user-data store loaded from the profile directory.
func WithData(st *storage.Store) Option {
	return func(p *Plugin) error {
		p.Data = st
		return nil
	}
}

// New builds a plugin rooted in profileDir, where its settings.yaml and
// data.json live. The directory is created lazily on first save.
func New(name, profileDir string, opts ...Option) (*Plugin, error) {
	if name == "" {
		return nil, errors.New("plugin: empty name")
	}
	p := &Plugin{
		Name:     name,
		handlers: make(map[string]HandlerFunc),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if p.Settings == nil {
		s, err := settings.Load(filepath.Join(profileDir, "settings.yaml"),
			settings.WithEnvPrefix(name))
		if err != nil {
			return nil, err
		}
		p.Settings = s
	}
	if p.Data == nil {
		st, err := storage.Open(filepath.Join(profileDir, "data.json"))
		if err != nil {
			return nil, err
		}
		p.Data = st
	}
	if p.Search == nil {
		p.Search = search.New(p.Data)
	}
	return p, nil
}

// Register binds a handler to a menu Call name. Registering a name twice is
// a programming error.
func (p *Plugin) Register(name string, fn HandlerFunc) error {
	if name == "" || fn == nil {
		return errors.New("plugin: register needs a name and a func")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, dup := p.handlers[name]; dup {
		return fmt.Errorf("plugin: call %q registered twice", name)
	}
	p.handlers[name] = fn
	return nil
}

// Dispatch runs the handler registered under name.
func (p *Plugin) Dispatch(ctx context.Context, name string) error {
	p.mu.RLock()
	fn, ok := p.handlers[name]
	p.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCall, name)
	}
	return fn(ctx)
}

// Calls lists the registered handler names; menu validation uses it to
// catch dangling Call references early.
func (p *Plugin) Calls() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.handlers))
	for name := range p.handlers {
		names = append(names, name)
	}
	return names
}

// Walker builds a menu walker wired to this plugin: When keys gate through
// the plugin settings and the host handler renders the entries.
func (p *Plugin) Walker(root *menu.Menu, h menu.Handler) *menu.Walker {
	return &menu.Walker{
		Root:    root,
		Handler: h,
		Enabled: func(key string) bool {
			return p.Settings.Bool(key, false)
		},
	}
}

// Close persists pending user data and settings. It mirrors the end of a
// plugin invocation, so it saves even after handler errors.
func (p *Plugin) Close() error {
	var errs []error
	if p.Data != nil {
		if err := p.Data.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.Settings != nil {
		if err := p.Settings.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
