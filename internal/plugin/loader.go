package plugin

import (
	"log/slog"

	"git.home.luguber.info/inful/compdocs/internal/builder"
	cerrors "git.home.luguber.info/inful/compdocs/internal/errors"
)

// PresetClassic is the default bundle applied when no presets or plugins are
// configured. It installs the minimum viable pipeline: markdown compilation,
// per-document configuration, and the component framework.
const PresetClassic = "classic"

// Loader applies presets and plugins to the build context, each exactly
// once, in configured order, before any stage builds.
type Loader struct {
	registry *Registry
	logger   *slog.Logger
}

// NewLoader creates a loader over a registry.
func NewLoader(registry *Registry, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{registry: registry, logger: logger}
}

// Load resolves and applies the given preset and plugin identifiers. An
// unresolvable identifier is a fatal configuration error: later stages may
// depend on behavior the missing unit was supposed to install. When both
// lists are empty the classic preset is applied.
func (l *Loader) Load(bctx *builder.Context, presets, plugins []string) error {
	if len(presets) == 0 && len(plugins) == 0 {
		presets = []string{PresetClassic}
	}

	for _, id := range presets {
		preset, ok := l.registry.Preset(id)
		if !ok {
			return cerrors.Configf("unknown preset %q", id)
		}
		l.logger.Debug("applying preset", "preset", id)
		if err := preset(bctx); err != nil {
			return cerrors.Wrap(err, cerrors.CategoryPlugin, cerrors.SeverityFatal, "apply preset "+id)
		}
	}

	for _, id := range plugins {
		p, ok := l.registry.Plugin(id)
		if !ok {
			return cerrors.Configf("unknown plugin %q", id)
		}
		meta := p.Metadata()
		if err := meta.Validate(); err != nil {
			return cerrors.Wrap(err, cerrors.CategoryPlugin, cerrors.SeverityFatal, "invalid plugin metadata")
		}
		l.logger.Debug("applying plugin", "plugin", meta.Name, "version", meta.Version)
		if err := p.Apply(bctx); err != nil {
			return cerrors.Wrap(err, cerrors.CategoryPlugin, cerrors.SeverityFatal, "apply plugin "+meta.Name)
		}
	}
	return nil
}
