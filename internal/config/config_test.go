package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "git.home.luguber.info/inful/compdocs/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "compdocs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Documentation", cfg.Title)
	assert.Equal(t, "docs", cfg.DocsDir)
	assert.Equal(t, ".compdocs", cfg.Output.Dir)
	assert.Equal(t, "content", cfg.Output.ContentDir)
	assert.Equal(t, "/", cfg.Site.BasePath)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
title: My Components
libraries:
  - name: ui
    path: src/ui
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "My Components", cfg.Title)
	// Unset fields still carry defaults.
	assert.Equal(t, "docs", cfg.DocsDir)
	assert.Equal(t, "content", cfg.Output.ContentDir)
	require.Len(t, cfg.Libraries, 1)
	assert.Equal(t, "ui", cfg.Libraries[0].Name)
}

func TestLoadInvalidYAMLIsConfigError(t *testing.T) {
	path := writeConfig(t, "title: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, cerrors.IsCategory(err, cerrors.CategoryConfig))
}

func TestValidateRejectsBadLibraries(t *testing.T) {
	tests := []struct {
		name string
		libs []Library
	}{
		{"missing name", []Library{{Path: "a"}}},
		{"missing path", []Library{{Name: "a"}}},
		{"duplicate name", []Library{{Name: "a", Path: "x"}, {Name: "a", Path: "y"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Libraries = tt.libs
			err := Validate(&cfg)
			require.Error(t, err)
			assert.True(t, cerrors.IsCategory(err, cerrors.CategoryConfig))
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cfg := defaultConfig()
	cfg.Site.BasePath = "docs/"
	Normalize(&cfg)
	assert.Equal(t, "/docs", cfg.Site.BasePath)
}

func TestNormalizeIncludeExtensions(t *testing.T) {
	cfg := defaultConfig()
	cfg.Libraries = []Library{{Name: "ui", Path: "src", Include: []string{"tsx", ".jsx"}}}
	Normalize(&cfg)
	assert.Equal(t, []string{".tsx", ".jsx"}, cfg.Libraries[0].Include)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COMPDOCS_DOCS_DIR", "pages")
	t.Setenv("COMPDOCS_TITLE", "Override")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "pages", cfg.DocsDir)
	assert.Equal(t, "Override", cfg.Title)
}

func TestResolvePathsLayout(t *testing.T) {
	cfg := defaultConfig()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "out")

	paths, err := ResolvePaths(&cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "content"), paths.ContentRoot)
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "assets"), paths.AssetsRoot)
	assert.Equal(t, filepath.Join(paths.ContentRoot, SiteConfigFile), paths.SiteConfigPath())
}
