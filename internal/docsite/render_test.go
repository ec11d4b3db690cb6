package docsite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWritesSite(t *testing.T) {
	root := writeSource(t, map[string]string{
		"usage.md":    "# Usage\n\nSome *emphasis* here.",
		"api/site.md": "# Site API\n",
	})
	cfg := &Config{Title: "My Plugin", Source: root, Output: filepath.Join(t.TempDir(), "site")}
	pages, err := Scan(root)
	require.NoError(t, err)

	build, err := Render(cfg, pages)
	require.NoError(t, err)
	assert.NotEmpty(t, build.ID)
	assert.Len(t, build.Pages, 2)

	usage, err := os.ReadFile(filepath.Join(cfg.Output, "usage.html"))
	require.NoError(t, err)
	assert.Contains(t, string(usage), "<em>emphasis</em>")
	assert.Contains(t, string(usage), "My Plugin")

	api, err := os.ReadFile(filepath.Join(cfg.Output, "api", "site.html"))
	require.NoError(t, err)
	assert.Contains(t, string(api), `href="../index.html"`, "nested pages link back to the root")

	index, err := os.ReadFile(filepath.Join(cfg.Output, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), `href="usage.html"`)
	assert.Contains(t, string(index), `href="api/site.html"`)
	assert.Contains(t, string(index), "Site API")

	_, err = os.Stat(filepath.Join(cfg.Output, "style.css"))
	assert.NoError(t, err)
}

func TestRenderEmptySource(t *testing.T) {
	cfg := &Config{Title: "Empty", Output: filepath.Join(t.TempDir(), "site")}

	build, err := Render(cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, build.Pages)

	index, err := os.ReadFile(filepath.Join(cfg.Output, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "Empty")
}

func TestRootPrefix(t *testing.T) {
	assert.Equal(t, "", rootPrefix("usage.html"))
	assert.Equal(t, "../", rootPrefix("api/site.html"))
	assert.Equal(t, "../../", rootPrefix("a/b/c.html"))
}
