package config

import (
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	cerrors "git.home.luguber.info/inful/compdocs/internal/errors"
)

// Default values applied to every loaded configuration. Every field a stage
// consumes downstream must have an entry here.
func defaultConfig() Config {
	return Config{
		Title:   "Documentation",
		DocsDir: "docs",
		Output: OutputConfig{
			Dir:        ".compdocs",
			ContentDir: "content",
			AssetsDir:  "assets",
		},
		Site: SiteConfig{
			BasePath: "/",
			Dir:      "site",
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
	}
}

// Load reads, merges, normalizes, and validates a configuration file.
// A missing file yields the pure default configuration.
func Load(path string) (*Config, error) {
	// Optional .env for local overrides; absence is not an error.
	_ = godotenv.Load()

	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, cerrors.Wrap(err, cerrors.CategoryConfig, cerrors.SeverityFatal,
				fmt.Sprintf("invalid configuration file %s", path))
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, cerrors.Wrap(err, cerrors.CategoryConfig, cerrors.SeverityFatal,
			fmt.Sprintf("read configuration file %s", path))
	}

	applyEnvOverrides(&cfg)

	defaults := defaultConfig()
	if err := mergo.Merge(&cfg, defaults); err != nil {
		return nil, cerrors.Wrap(err, cerrors.CategoryConfig, cerrors.SeverityFatal, "merge configuration defaults")
	}

	if res := Normalize(&cfg); len(res.Warnings) > 0 {
		for _, w := range res.Warnings {
			fmt.Fprintln(os.Stderr, "config:", w)
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides maps COMPDOCS_* environment variables over file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COMPDOCS_DOCS_DIR"); v != "" {
		cfg.DocsDir = v
	}
	if v := os.Getenv("COMPDOCS_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("COMPDOCS_TITLE"); v != "" {
		cfg.Title = v
	}
	if v := os.Getenv("COMPDOCS_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
}

// Validate checks invariants that normalization cannot repair.
func Validate(cfg *Config) error {
	if cfg.DocsDir == "" {
		return cerrors.Config("docs_dir must not be empty")
	}
	if cfg.Output.Dir == "" {
		return cerrors.Config("output.dir must not be empty")
	}
	seen := map[string]struct{}{}
	for _, lib := range cfg.Libraries {
		if lib.Name == "" {
			return cerrors.Config("library entries require a name")
		}
		if lib.Path == "" {
			return cerrors.Configf("library %s requires a path", lib.Name)
		}
		if _, dup := seen[lib.Name]; dup {
			return cerrors.Configf("duplicate library name %s", lib.Name)
		}
		seen[lib.Name] = struct{}{}
	}
	return nil
}
