package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/compdocs/internal/config"
	"git.home.luguber.info/inful/compdocs/internal/detect"
)

func testPaths(t *testing.T) (*config.Config, config.Paths) {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		Title:       "Docs",
		Description: "test site",
		DocsDir:     filepath.Join(root, "docs"),
		Libraries:   []config.Library{{Name: "ui", Path: filepath.Join(root, "ui")}},
		Output:      config.OutputConfig{Dir: filepath.Join(root, "out"), ContentDir: "content", AssetsDir: "assets"},
		Site:        config.SiteConfig{Project: "docs-site", BasePath: "/docs/", Dir: filepath.Join(root, "site")},
	}
	paths, err := config.ResolvePaths(cfg)
	require.NoError(t, err)
	return cfg, paths
}

func TestGenerateConfig(t *testing.T) {
	cfg, paths := testPaths(t)
	detection := detect.Result{FrameworkVersion: "2.4.0"}

	require.NoError(t, GenerateConfig(cfg, paths, detection))

	data, err := os.ReadFile(paths.SiteConfigPath())
	require.NoError(t, err)

	var gen GeneratedConfig
	require.NoError(t, yaml.Unmarshal(data, &gen))
	assert.Equal(t, "Docs", gen.Title)
	assert.Equal(t, "test site", gen.Description)
	assert.Equal(t, "/docs/", gen.BasePath)
	assert.Equal(t, "2.4.0", gen.FrameworkVersion)
	assert.Equal(t, "content", gen.ContentDir)
	assert.Equal(t, "assets", gen.AssetsDir)
	assert.Equal(t, "navigation.yaml", gen.Navigation)
	assert.Equal(t, []string{"ui"}, gen.Libraries)
}

func TestScaffoldCreatesProject(t *testing.T) {
	cfg, paths := testPaths(t)

	require.NoError(t, Scaffold(cfg, paths, detect.Result{FrameworkVersion: "2.4.0"}, nil))

	data, err := os.ReadFile(filepath.Join(paths.SiteRoot, "site.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: docs-site")
	assert.Contains(t, string(data), `framework: "2.4.0"`)
}

func TestScaffoldReusesDetectedProject(t *testing.T) {
	cfg, paths := testPaths(t)
	detection := detect.Result{
		SiteProject: &detect.SiteProject{Name: "docs-site", Root: paths.SiteRoot},
	}

	require.NoError(t, Scaffold(cfg, paths, detection, nil))

	// Reuse means no scaffolding: the site root is left untouched.
	_, err := os.Stat(filepath.Join(paths.SiteRoot, "site.yaml"))
	assert.True(t, os.IsNotExist(err))
}
