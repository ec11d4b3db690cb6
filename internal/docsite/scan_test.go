package docsite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o640))
	}
	return root
}

func TestScanCollectsSortedMarkdown(t *testing.T) {
	root := writeSource(t, map[string]string{
		"usage.md":        "# Usage\n\nRun it.",
		"api/site.md":     "# Site API\n",
		"api/menu.md":     "content without heading",
		"notes.txt":       "not markdown",
		".hidden/skip.md": "# Hidden",
		"vendor/dep.md":   "# Vendored",
	})

	pages, err := Scan(root)
	require.NoError(t, err)

	rels := make([]string, len(pages))
	for i, p := range pages {
		rels[i] = p.Rel
	}
	assert.Equal(t, []string{"api/menu.md", "api/site.md", "usage.md"}, rels)
}

func TestScanTitles(t *testing.T) {
	root := writeSource(t, map[string]string{
		"usage.md":    "# Getting started\n",
		"plain.md":    "no heading at all\n",
		"deep.md":     "\n\n## Second level\n",
		"trailing.md": "# Spaced out   \n",
	})

	pages, err := Scan(root)
	require.NoError(t, err)
	byRel := map[string]string{}
	for _, p := range pages {
		byRel[p.Rel] = p.Title
	}

	assert.Equal(t, "Getting started", byRel["usage.md"])
	assert.Equal(t, "plain", byRel["plain.md"], "heading-less page falls back to file name")
	assert.Equal(t, "Second level", byRel["deep.md"])
	assert.Equal(t, "Spaced out", byRel["trailing.md"])
}

func TestPageOutputRel(t *testing.T) {
	p := Page{Rel: "api/site.md"}
	assert.Equal(t, "api/site.html", p.OutputRel())
}
