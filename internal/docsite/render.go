package docsite

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
)

// Build is the result of one documentation build.
type Build struct {
	ID       string
	Pages    []Page
	Output   string
	Broken   []BrokenLink
	Duration time.Duration
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}} | {{.SiteTitle}}</title>
<link rel="stylesheet" href="{{.Root}}style.css">
</head>
<body>
<nav><a href="{{.Root}}index.html">{{.SiteTitle}}</a></nav>
<main>
{{.Content}}
</main>
</body>
</html>
`))

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="style.css">
</head>
<body>
<h1>{{.Title}}</h1>
<ul>
{{range .Pages}}<li><a href="{{.Href}}">{{.Title}}</a></li>
{{end}}</ul>
</body>
</html>
`))

const styleSheet = `body{font-family:sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem;line-height:1.5}
nav{border-bottom:1px solid #ddd;padding-bottom:.5rem;margin-bottom:1rem}
pre{background:#f4f4f4;padding:.75rem;overflow-x:auto}
code{background:#f4f4f4;padding:0 .2rem}`

// Render converts pages to HTML under cfg.Output and writes the index. It
// returns the build record used by verification, events and metrics.
func Render(cfg *Config, pages []Page) (*Build, error) {
	start := time.Now()
	md := goldmark.New()

	if err := os.MkdirAll(cfg.Output, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	for _, page := range pages {
		var content bytes.Buffer
		if err := md.Convert(page.Body, &content); err != nil {
			return nil, fmt.Errorf("render %s: %w", page.Rel, err)
		}
		out := filepath.Join(cfg.Output, filepath.FromSlash(page.OutputRel()))
		if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
			return nil, fmt.Errorf("create %s: %w", filepath.Dir(out), err)
		}
		var buf bytes.Buffer
		err := pageTemplate.Execute(&buf, map[string]any{
			"Title":     page.Title,
			"SiteTitle": cfg.Title,
			"Root":      rootPrefix(page.OutputRel()),
			"Content":   template.HTML(content.String()),
		})
		if err != nil {
			return nil, fmt.Errorf("render page template %s: %w", page.Rel, err)
		}
		if err := os.WriteFile(out, buf.Bytes(), 0o640); err != nil {
			return nil, fmt.Errorf("write %s: %w", out, err)
		}
	}

	if err := writeIndex(cfg, pages); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(cfg.Output, "style.css"), []byte(styleSheet), 0o640); err != nil {
		return nil, fmt.Errorf("write stylesheet: %w", err)
	}

	return &Build{
		ID:       uuid.NewString(),
		Pages:    pages,
		Output:   cfg.Output,
		Duration: time.Since(start),
	}, nil
}

func writeIndex(cfg *Config, pages []Page) error {
	type entry struct {
		Href  string
		Title string
	}
	entries := make([]entry, len(pages))
	for i, p := range pages {
		entries[i] = entry{Href: p.OutputRel(), Title: p.Title}
	}
	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, map[string]any{
		"Title": cfg.Title,
		"Pages": entries,
	})
	if err != nil {
		return fmt.Errorf("render index template: %w", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Output, "index.html"), buf.Bytes(), 0o640); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// rootPrefix builds the "../" chain from a page back to the site root.
func rootPrefix(rel string) string {
	depth := strings.Count(rel, "/")
	return strings.Repeat("../", depth)
}
