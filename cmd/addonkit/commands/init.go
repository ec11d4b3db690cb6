package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const starterDocsConfig = `# Documentation build configuration.
title: My Plugin
source: doc
output: site

verify:
  enabled: false

# publish:
#   url: https://forge.example/me/my-plugin-pages.git
#   branch: pages
#   token: ${PAGES_TOKEN}

serve:
  addr: ":8750"
`

const starterMenu = `# Menu manifest. Titles become directory entries; call targets are the
# handler names registered on the plugin.
title: My Plugin
items:
  - title: Search
    call: search
  - title: Library
    items:
      - id: channels
        type: channel
        order:
          1: ["news *"]
      - title: Settings
        call: settings
`

// RunInit drops starter docs.yaml and menu.yaml files into dir.
func RunInit(dir string, force bool) error {
	files := map[string]string{
		"docs.yaml": starterDocsConfig,
		"menu.yaml": starterMenu,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if !force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}
		if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		slog.Info("Wrote starter file", "path", path)
	}
	return nil
}
