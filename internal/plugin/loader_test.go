package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/compdocs/internal/builder"
	"git.home.luguber.info/inful/compdocs/internal/config"
	cerrors "git.home.luguber.info/inful/compdocs/internal/errors"
)

type recordingPlugin struct {
	meta    Metadata
	applied *[]string
}

func (p recordingPlugin) Metadata() Metadata { return p.meta }

func (p recordingPlugin) Apply(_ *builder.Context) error {
	*p.applied = append(*p.applied, p.meta.Name)
	return nil
}

func newPluginTestContext() *builder.Context {
	cfg := &config.Config{}
	return builder.NewContext(cfg, config.Paths{}, nil, "test-build")
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	var applied []string
	factory := func() Plugin {
		return recordingPlugin{meta: Metadata{Name: "a", Version: "1.0"}, applied: &applied}
	}

	require.NoError(t, reg.RegisterPlugin("a", factory))
	assert.Error(t, reg.RegisterPlugin("a", factory))

	preset := func(*builder.Context) error { return nil }
	require.NoError(t, reg.RegisterPreset("p", preset))
	assert.Error(t, reg.RegisterPreset("p", preset))
}

func TestRegistryRejectsNil(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.RegisterPlugin("a", nil))
	assert.Error(t, reg.RegisterPreset("p", nil))
}

func TestLoaderAppliesInConfiguredOrder(t *testing.T) {
	reg := NewRegistry()
	var applied []string
	for _, name := range []string{"first", "second"} {
		name := name
		require.NoError(t, reg.RegisterPlugin(name, func() Plugin {
			return recordingPlugin{meta: Metadata{Name: name, Version: "1.0"}, applied: &applied}
		}))
	}
	require.NoError(t, reg.RegisterPreset("bundle", func(*builder.Context) error {
		applied = append(applied, "bundle")
		return nil
	}))

	loader := NewLoader(reg, nil)
	err := loader.Load(newPluginTestContext(), []string{"bundle"}, []string{"second", "first"})
	require.NoError(t, err)

	// Presets apply before plugins; plugins apply in configured order.
	assert.Equal(t, []string{"bundle", "second", "first"}, applied)
}

func TestLoaderUnknownIdentifierIsConfigError(t *testing.T) {
	loader := NewLoader(NewRegistry(), nil)

	err := loader.Load(newPluginTestContext(), []string{"nope"}, nil)
	require.Error(t, err)
	assert.True(t, cerrors.IsCategory(err, cerrors.CategoryConfig))

	err = loader.Load(newPluginTestContext(), nil, []string{"missing"})
	require.Error(t, err)
	assert.True(t, cerrors.IsCategory(err, cerrors.CategoryConfig))
}

func TestLoaderDefaultsToClassicPreset(t *testing.T) {
	reg := NewRegistry()
	var applied []string
	require.NoError(t, reg.RegisterPreset(PresetClassic, func(*builder.Context) error {
		applied = append(applied, PresetClassic)
		return nil
	}))

	loader := NewLoader(reg, nil)
	require.NoError(t, loader.Load(newPluginTestContext(), nil, nil))
	assert.Equal(t, []string{PresetClassic}, applied)
}

func TestLoaderRejectsInvalidMetadata(t *testing.T) {
	reg := NewRegistry()
	var applied []string
	require.NoError(t, reg.RegisterPlugin("bad", func() Plugin {
		return recordingPlugin{meta: Metadata{Name: "bad"}, applied: &applied}
	}))

	loader := NewLoader(reg, nil)
	err := loader.Load(newPluginTestContext(), nil, []string{"bad"})
	require.Error(t, err)
	assert.True(t, cerrors.IsCategory(err, cerrors.CategoryPlugin))
	assert.Empty(t, applied)
}

func TestMetadataValidate(t *testing.T) {
	assert.Error(t, Metadata{}.Validate())
	assert.Error(t, Metadata{Name: "x"}.Validate())
	assert.NoError(t, Metadata{Name: "x", Version: "0.1.0"}.Validate())
}
