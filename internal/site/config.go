package site

import (
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/compdocs/internal/config"
	"git.home.luguber.info/inful/compdocs/internal/detect"
	cerrors "git.home.luguber.info/inful/compdocs/internal/errors"
	"git.home.luguber.info/inful/compdocs/internal/fsutil"
)

// GeneratedConfig is the serialized snapshot the downstream site layer reads
// at its own build or start time. Its field set is a file-format contract:
// changing it breaks the site layer.
type GeneratedConfig struct {
	Title            string   `yaml:"title"`
	Description      string   `yaml:"description,omitempty"`
	BasePath         string   `yaml:"base_path"`
	FrameworkVersion string   `yaml:"framework_version"`
	ContentDir       string   `yaml:"content_dir"`
	AssetsDir        string   `yaml:"assets_dir"`
	Navigation       string   `yaml:"navigation"`
	Libraries        []string `yaml:"libraries,omitempty"`
}

// GenerateConfig writes the derived site configuration to its fixed path
// under the content root. Called exactly once per run, after the docs and
// libraries stages have succeeded.
func GenerateConfig(cfg *config.Config, paths config.Paths, detection detect.Result) error {
	gen := GeneratedConfig{
		Title:            cfg.Title,
		Description:      cfg.Description,
		BasePath:         cfg.Site.BasePath,
		FrameworkVersion: detection.FrameworkVersion,
		ContentDir:       cfg.Output.ContentDir,
		AssetsDir:        cfg.Output.AssetsDir,
		Navigation:       "navigation.yaml",
	}
	for _, lib := range cfg.Libraries {
		gen.Libraries = append(gen.Libraries, lib.Name)
	}

	data, err := yaml.Marshal(gen)
	if err != nil {
		return cerrors.Wrap(err, cerrors.CategoryInternal, cerrors.SeverityFatal, "marshal site config")
	}
	if err := fsutil.WriteFile(paths.SiteConfigPath(), data); err != nil {
		return cerrors.Wrap(err, cerrors.CategoryFileSystem, cerrors.SeverityFatal, "write site config")
	}
	return nil
}
