package builtin

import (
	"git.home.luguber.info/inful/compdocs/internal/builder"
	"git.home.luguber.info/inful/compdocs/internal/plugin"
)

// DefaultRegistry returns a registry holding every built-in plugin plus the
// classic preset. Callers embedding compdocs can register additional plugins
// on the returned registry before loading.
func DefaultRegistry() *plugin.Registry {
	r := plugin.NewRegistry()

	mustRegisterPlugin(r, "markdown", func() plugin.Plugin { return NewMarkdownPlugin() })
	mustRegisterPlugin(r, "docconfig", func() plugin.Plugin { return NewDocConfigPlugin() })
	mustRegisterPlugin(r, "framework", func() plugin.Plugin { return NewFrameworkPlugin() })

	mustRegisterPreset(r, plugin.PresetClassic, func(bctx *builder.Context) error {
		for _, p := range []plugin.Plugin{
			NewMarkdownPlugin(),
			NewDocConfigPlugin(),
			NewFrameworkPlugin(),
		} {
			if err := p.Apply(bctx); err != nil {
				return err
			}
		}
		return nil
	})
	return r
}

func mustRegisterPlugin(r *plugin.Registry, id string, f plugin.Factory) {
	if err := r.RegisterPlugin(id, f); err != nil {
		panic(err)
	}
}

func mustRegisterPreset(r *plugin.Registry, id string, p plugin.Preset) {
	if err := r.RegisterPreset(id, p); err != nil {
		panic(err)
	}
}
