package docsite

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Page is one markdown source document.
type Page struct {
	// Path is the absolute source path.
	Path string
	// Rel is the path relative to the source root, with forward slashes.
	Rel string
	// Title comes from the first heading, or the file name.
	Title string
	Body  []byte
}

// OutputRel is the page's path inside the generated site.
func (p *Page) OutputRel() string {
	return strings.TrimSuffix(p.Rel, filepath.Ext(p.Rel)) + ".html"
}

// Scan collects the markdown files under root, sorted by relative path.
// Hidden directories and the usual build/vendor trees are skipped.
func Scan(root string) ([]Page, error) {
	var pages []Page
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(name), ".md") {
			return nil
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		pages = append(pages, Page{
			Path:  path,
			Rel:   rel,
			Title: pageTitle(body, rel),
			Body:  body,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Rel < pages[j].Rel })
	return pages, nil
}

// pageTitle takes the first ATX heading, falling back to the file name.
func pageTitle(body []byte, rel string) string {
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
		if line != "" {
			break
		}
	}
	base := filepath.Base(rel)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
