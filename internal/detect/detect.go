// Package detect classifies the source tree before the pipeline runs: which
// framework generation the component libraries target, and whether a
// dedicated site sub-project already exists.
package detect

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SiteProject is a handle to an existing site scaffold. A populated handle
// means "reuse this scaffold"; absence means "scaffold one".
type SiteProject struct {
	Name string
	Root string
}

// Result is what detection hands to the orchestrator.
type Result struct {
	FrameworkVersion string
	SiteProject      *SiteProject
}

// Detector inspects the source tree. External collaborator boundary: the
// orchestrator only consumes this interface.
type Detector interface {
	Detect(ctx context.Context) (Result, error)
}

// siteManifest is the manifest file marking a directory as a site project.
const siteManifest = "site.yaml"

// DefaultFrameworkVersion is assumed when no manifest declares one.
const DefaultFrameworkVersion = "2"

// FSDetector detects by reading manifests from the filesystem.
type FSDetector struct {
	root     string // source tree root
	siteDir  string // candidate site project directory (absolute)
	siteName string // configured required project name, empty if none
	logger   *slog.Logger
}

// NewFSDetector creates a detector rooted at root. siteDir is the directory
// to probe for a site project; siteName, when non-empty, is the configured
// project name the manifest must match.
func NewFSDetector(root, siteDir, siteName string, logger *slog.Logger) *FSDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSDetector{root: root, siteDir: siteDir, siteName: siteName, logger: logger}
}

type manifestFile struct {
	Name      string `yaml:"name"`
	Framework string `yaml:"framework,omitempty"`
}

// Detect probes the site directory for a manifest. A missing or unreadable
// manifest means no site project; the orchestrator decides whether that is
// acceptable for the configuration.
func (d *FSDetector) Detect(_ context.Context) (Result, error) {
	res := Result{FrameworkVersion: DefaultFrameworkVersion}

	path := filepath.Join(d.siteDir, siteManifest)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			d.logger.Warn("site manifest unreadable", "path", path, "error", err)
		}
		return res, nil
	}

	var m manifestFile
	if err := yaml.Unmarshal(data, &m); err != nil {
		d.logger.Warn("site manifest malformed, ignoring", "path", path, "error", err)
		return res, nil
	}

	if m.Framework != "" {
		res.FrameworkVersion = m.Framework
	}
	if d.siteName != "" && m.Name != d.siteName {
		// A manifest for a different project is not a match for the
		// configured one.
		d.logger.Debug("site manifest name mismatch", "found", m.Name, "want", d.siteName)
		return res, nil
	}

	name := m.Name
	if name == "" {
		name = filepath.Base(d.siteDir)
	}
	res.SiteProject = &SiteProject{Name: name, Root: d.siteDir}
	d.logger.Debug("detected site project", "name", name, "root", d.siteDir, "framework", res.FrameworkVersion)
	return res, nil
}
