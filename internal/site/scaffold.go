package site

import (
	"fmt"
	"log/slog"

	"path/filepath"

	"git.home.luguber.info/inful/compdocs/internal/config"
	"git.home.luguber.info/inful/compdocs/internal/detect"
	cerrors "git.home.luguber.info/inful/compdocs/internal/errors"
	"git.home.luguber.info/inful/compdocs/internal/fsutil"
)

// Scaffold initializes the site project skeleton, or reuses an existing one
// when detection found a project handle.
func Scaffold(cfg *config.Config, paths config.Paths, detection detect.Result, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if detection.SiteProject != nil {
		logger.Info("reusing existing site project",
			"name", detection.SiteProject.Name, "root", detection.SiteProject.Root)
		return nil
	}

	name := cfg.Site.Project
	if name == "" {
		name = filepath.Base(paths.SiteRoot)
	}
	logger.Info("scaffolding site project", "name", name, "root", paths.SiteRoot)

	if err := fsutil.EnsureDir(paths.SiteRoot); err != nil {
		return cerrors.Wrap(err, cerrors.CategoryFileSystem, cerrors.SeverityFatal, "create site project root")
	}
	manifest := fmt.Sprintf("name: %s\nframework: %q\n", name, detection.FrameworkVersion)
	if err := fsutil.WriteFile(filepath.Join(paths.SiteRoot, "site.yaml"), []byte(manifest)); err != nil {
		return cerrors.Wrap(err, cerrors.CategoryFileSystem, cerrors.SeverityFatal, "write site manifest")
	}
	return nil
}
