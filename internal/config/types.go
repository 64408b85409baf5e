package config

import "time"

// Config is the full compdocs configuration. It is immutable after Load:
// every field a stage consumes has a default, so partial user configuration
// is always valid.
type Config struct {
	// Title of the generated documentation site.
	Title string `yaml:"title,omitempty"`

	// Description shown by the site layer.
	Description string `yaml:"description,omitempty"`

	// DocsDir is the source root containing markdown pages.
	DocsDir string `yaml:"docs_dir,omitempty"`

	// Libraries are the component library roots to document.
	Libraries []Library `yaml:"libraries,omitempty"`

	Output  OutputConfig  `yaml:"output,omitempty"`
	Site    SiteConfig    `yaml:"site,omitempty"`
	Plugins PluginConfig  `yaml:"plugins,omitempty"`
	Watch   WatchConfig   `yaml:"watch,omitempty"`
	Journal JournalConfig `yaml:"journal,omitempty"`
}

// Library describes one component library root.
type Library struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`

	// Include restricts analysis to the listed file extensions. Empty means
	// the framework plugin's defaults.
	Include []string `yaml:"include,omitempty"`
}

// OutputConfig controls where the site is generated.
type OutputConfig struct {
	// Dir is the output root. Content and assets roots are derived from it.
	Dir string `yaml:"dir,omitempty"`

	// ContentDir and AssetsDir are relative to Dir.
	ContentDir string `yaml:"content_dir,omitempty"`
	AssetsDir  string `yaml:"assets_dir,omitempty"`
}

// SiteConfig describes the downstream site project.
type SiteConfig struct {
	// Project names a required site sub-project. When set, detection must
	// find a matching project or the run fails with a configuration error.
	// Empty means "scaffold one when absent".
	Project string `yaml:"project,omitempty"`

	// Dir is the directory holding (or receiving) the site project.
	Dir string `yaml:"dir,omitempty"`

	// BasePath is the URL prefix the site is served under.
	BasePath string `yaml:"base_path,omitempty"`
}

// PluginConfig lists the presets and plugins to apply, in order.
type PluginConfig struct {
	Presets []string `yaml:"presets,omitempty"`
	Plugins []string `yaml:"plugins,omitempty"`
}

// WatchConfig controls watch-mode behavior.
type WatchConfig struct {
	// Debounce coalesces rapid file change events.
	Debounce time.Duration `yaml:"debounce,omitempty"`

	// FullRebuildInterval, when positive, schedules a periodic full rebuild
	// of every stage while watching. Zero disables the scheduler.
	FullRebuildInterval time.Duration `yaml:"full_rebuild_interval,omitempty"`
}

// JournalConfig controls the build event journal.
type JournalConfig struct {
	// Path of the SQLite journal database. Empty disables journaling.
	Path string `yaml:"path,omitempty"`
}
