package site

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/net/publicsuffix"
)

// FileJar is a cookie jar that can persist its cookies to a file, so a
// plugin keeps its sessions between invocations. It wraps the standard
// cookiejar and records every SetCookies call for serialization.
type FileJar struct {
	mu     sync.Mutex
	jar    *cookiejar.Jar
	path   string
	stored map[string][]*http.Cookie
}

var _ http.CookieJar = (*FileJar)(nil)

// NewFileJar creates a jar persisted at path, replaying any cookies the
// file already holds. A missing file is not an error.
func NewFileJar(path string) (*FileJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	j := &FileJar{jar: jar, path: path, stored: make(map[string][]*http.Cookie)}
	if err := j.load(); err != nil {
		return nil, err
	}
	return j, nil
}

// Cookies implements http.CookieJar.
func (j *FileJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

// SetCookies implements http.CookieJar.
func (j *FileJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	j.stored[u.String()] = cookies
	j.mu.Unlock()
	j.jar.SetCookies(u, cookies)
}

func (j *FileJar) load() error {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cookie file: %w", err)
	}
	var stored map[string][]*http.Cookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("parse cookie file %s: %w", j.path, err)
	}
	for raw, cookies := range stored {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		j.stored[raw] = cookies
		j.jar.SetCookies(u, cookies)
	}
	return nil
}

// Save writes the recorded cookies to the jar's file atomically.
func (j *FileJar) Save() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.MarshalIndent(j.stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}
	tmp := j.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(j.path), 0o750); err != nil {
		return fmt.Errorf("create cookie directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write cookie file: %w", err)
	}
	if err := os.Rename(tmp, j.path); err != nil {
		return fmt.Errorf("replace cookie file: %w", err)
	}
	return nil
}
