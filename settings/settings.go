// Package settings gives plugins typed access to their configuration. The
// backing file is YAML; environment variables override file values, and an
// optional .env file can supply the environment (useful in development).
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix prefixes the environment variables consulted for
// overrides when no plugin-specific prefix is set.
const DefaultEnvPrefix = "ADDONKIT"

// Settings reads and writes a plugin's configuration values. Reads prefer
// the environment (PREFIX_SECTION_KEY for key "section.key"), then the
// file, then the caller's default.
type Settings struct {
	path   string
	prefix string

	mu     sync.RWMutex
	values map[string]any
	dirty  bool
}

// Option configures Load.
type Option func(*Settings) error

// WithEnvPrefix sets the environment variable prefix, typically the plugin
// name in upper case.
func WithEnvPrefix(prefix string) Option {
	return func(s *Settings) error {
		s.prefix = strings.ToUpper(prefix)
		return nil
	}
}

// WithEnvFile loads a .env file into the process environment before the
// settings are read. A missing file is not an error.
func WithEnvFile(path string) Option {
	return func(s *Settings) error {
		if err := godotenv.Load(path); err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
}

// Load opens the settings file at path, creating an empty settings set when
// the file does not exist yet.
func Load(path string, opts ...Option) (*Settings, error) {
	s := &Settings{
		path:   path,
		prefix: DefaultEnvPrefix,
		values: make(map[string]any),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	if len(raw) > 0 {
		if err := yaml.Unmarshal(raw, &s.values); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	return s, nil
}

// envName maps "section.key" to "PREFIX_SECTION_KEY".
func (s *Settings) envName(key string) string {
	name := strings.NewReplacer(".", "_", "-", "_").Replace(key)
	return s.prefix + "_" + strings.ToUpper(name)
}

// raw returns the effective value for key: environment first, then file.
// The second result distinguishes "set to empty" from "absent".
func (s *Settings) raw(key string) (any, bool) {
	if v, ok := os.LookupEnv(s.envName(key)); ok {
		return v, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur := any(s.values)
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the setting as a string, or def when absent.
func (s *Settings) String(key, def string) string {
	v, ok := s.raw(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// Int returns the setting as an int, or def when absent or unparsable.
func (s *Settings) Int(key string, def int) int {
	v, ok := s.raw(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return def
}

// Float returns the setting as a float64, or def when absent or unparsable.
func (s *Settings) Float(key string, def float64) float64 {
	v, ok := s.raw(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return def
}

// Bool returns the setting as a bool, or def when absent or unparsable.
func (s *Settings) Bool(key string, def bool) bool {
	v, ok := s.raw(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
	}
	return def
}

// Duration returns the setting parsed as a time.Duration ("90s", "2h"), or
// def when absent or unparsable. Bare numbers are taken as seconds.
func (s *Settings) Duration(key string, def time.Duration) time.Duration {
	v, ok := s.raw(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int:
		return time.Duration(t) * time.Second
	case float64:
		return time.Duration(t * float64(time.Second))
	case string:
		t = strings.TrimSpace(t)
		if d, err := time.ParseDuration(t); err == nil {
			return d
		}
		if n, err := strconv.Atoi(t); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return def
}

// Set stores a value under the dotted key. Environment overrides still win
// on subsequent reads.
func (s *Settings) Set(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parts := strings.Split(key, ".")
	cur := s.values
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
	s.dirty = true
}

// Save writes modified settings back to the file atomically. Clean settings
// skip the write.
func (s *Settings) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	s.dirty = false
	return nil
}
