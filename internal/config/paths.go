package config

import (
	"fmt"
	"path/filepath"
)

// Paths holds the resolved filesystem layout of one run. It is computed once
// from the configuration and read-only afterwards, so it is safe to read from
// concurrently running stages.
type Paths struct {
	// DocsRoot is the absolute source docs directory.
	DocsRoot string

	// OutputRoot is the absolute output directory.
	OutputRoot string

	// ContentRoot and AssetsRoot are the derived output subdirectories the
	// stages emit into.
	ContentRoot string
	AssetsRoot  string

	// SiteRoot is where the site project skeleton lives (or is scaffolded).
	SiteRoot string
}

// SiteConfigFile is the fixed-path derived configuration artifact under the
// content root. Its location and shape are a file-format contract with the
// downstream site layer.
const SiteConfigFile = "compdocs.site.yaml"

// ResolvePaths computes the absolute path layout for a configuration.
func ResolvePaths(cfg *Config) (Paths, error) {
	docs, err := filepath.Abs(cfg.DocsDir)
	if err != nil {
		return Paths{}, fmt.Errorf("resolve docs dir: %w", err)
	}
	out, err := filepath.Abs(cfg.Output.Dir)
	if err != nil {
		return Paths{}, fmt.Errorf("resolve output dir: %w", err)
	}

	siteDir := cfg.Site.Dir
	if siteDir == "" {
		siteDir = "site"
	}
	site, err := filepath.Abs(siteDir)
	if err != nil {
		return Paths{}, fmt.Errorf("resolve site dir: %w", err)
	}

	return Paths{
		DocsRoot:    docs,
		OutputRoot:  out,
		ContentRoot: filepath.Join(out, cfg.Output.ContentDir),
		AssetsRoot:  filepath.Join(out, cfg.Output.AssetsDir),
		SiteRoot:    site,
	}, nil
}

// SiteConfigPath returns the absolute path of the derived site configuration.
func (p Paths) SiteConfigPath() string {
	return filepath.Join(p.ContentRoot, SiteConfigFile)
}
