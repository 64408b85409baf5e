package main

import (
	"fmt"
	"os"
)

const starterConfig = `# compdocs configuration
title: Documentation

# Source root containing markdown pages.
docs_dir: docs

# Component libraries to document.
libraries: []
#  - name: ui
#    path: src/components

output:
  dir: .compdocs

site:
  base_path: /

# Presets and plugins, in application order. Empty means the classic preset
# (markdown + docconfig + framework).
plugins:
  presets: []
  plugins: []

watch:
  debounce: 250ms
`

// runInit writes a starter configuration file.
func runInit(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Println("created", path)
	return nil
}
