// Package plugin defines the plugin and preset contracts and the closed
// registry that resolves configured identifiers to constructible units.
package plugin

import (
	"fmt"

	"git.home.luguber.info/inful/compdocs/internal/builder"
)

// Metadata identifies a plugin.
type Metadata struct {
	Name        string
	Version     string
	Description string
}

// Validate checks required metadata fields.
func (m Metadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin metadata requires a name")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin %s requires a version", m.Name)
	}
	return nil
}

// Plugin is a unit applied to the build context exactly once per run, before
// any stage builds. Plugins are stateless from the orchestrator's
// perspective; state they need lives in the hook callbacks and collaborators
// they register.
type Plugin interface {
	Metadata() Metadata

	// Apply registers hook callbacks and collaborators on the context. It
	// must not mutate configuration.
	Apply(bctx *builder.Context) error
}

// Preset is a callable that registers hooks and plugins on behalf of a
// larger bundle. Presets are applied before individually configured plugins.
type Preset func(bctx *builder.Context) error

// Factory constructs a fresh plugin instance.
type Factory func() Plugin
