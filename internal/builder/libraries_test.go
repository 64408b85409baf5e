package builder

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/compdocs/internal/config"
	cerrors "git.home.luguber.info/inful/compdocs/internal/errors"
)

type fakeAnalyzer struct{}

func (fakeAnalyzer) Matches(p string) bool {
	return path.Ext(p) == ".tsx"
}

func (fakeAnalyzer) Analyze(_ context.Context, _ config.Library, file string, src []byte) (*Component, error) {
	if bytes.Contains(src, []byte("!!fail!!")) {
		return nil, errMarker
	}
	name := strings.TrimSuffix(path.Base(file), path.Ext(file))
	return &Component{Name: name, File: file}, nil
}

func newLibContext(t *testing.T, libs ...config.Library) *Context {
	t.Helper()
	bctx := newTestContext(t)
	bctx.Config.Libraries = libs
	bctx.RegisterComponentAnalyzer(fakeAnalyzer{})
	return bctx
}

func addLibrary(t *testing.T, name string) (config.Library, string) {
	t.Helper()
	root := t.TempDir()
	return config.Library{Name: name, Path: root}, root
}

func writeComponent(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestLibrariesBuildPartialSuccess(t *testing.T) {
	lib, root := addLibrary(t, "ui")
	writeComponent(t, root, "button.tsx", "export Button")
	writeComponent(t, root, "broken.tsx", "!!fail!!")
	writeComponent(t, root, "readme.txt", "not a component")
	bctx := newLibContext(t, lib)

	b := NewLibrariesBuilder(bctx)
	require.NoError(t, b.Build(context.Background()))

	art := b.Artifact()
	la := art.Libraries["ui"]
	require.NotNil(t, la)
	assert.Len(t, la.Components, 1)
	assert.Len(t, la.Errors, 1)
}

func TestLibrariesBuildMissingRootFatal(t *testing.T) {
	bctx := newLibContext(t, config.Library{Name: "ui", Path: filepath.Join(t.TempDir(), "absent")})

	b := NewLibrariesBuilder(bctx)
	err := b.Build(context.Background())
	require.Error(t, err)
	assert.True(t, cerrors.IsCategory(err, cerrors.CategoryDiscovery))
}

func TestLibrariesBuildEmptyConfigIsEmptyArtifact(t *testing.T) {
	bctx := newLibContext(t)

	b := NewLibrariesBuilder(bctx)
	require.NoError(t, b.Build(context.Background()))
	assert.Empty(t, b.Artifact().Libraries)
}

func TestLibrariesIncludeOverridesAnalyzerMatcher(t *testing.T) {
	lib, root := addLibrary(t, "ui")
	lib.Include = []string{".vue"}
	writeComponent(t, root, "picker.vue", "vue component")
	writeComponent(t, root, "button.tsx", "ignored by include list")
	bctx := newLibContext(t, lib)

	// The fake analyzer only matches .tsx, but the include list wins.
	b := NewLibrariesBuilder(bctx)
	require.NoError(t, b.Build(context.Background()))

	la := b.Artifact().Libraries["ui"]
	assert.Contains(t, la.Components, "picker.vue")
	assert.NotContains(t, la.Components, "button.tsx")
}

func TestLibrariesRebuildPointerIdentity(t *testing.T) {
	libA, rootA := addLibrary(t, "alpha")
	libB, rootB := addLibrary(t, "beta")
	writeComponent(t, rootA, "one.tsx", "one")
	writeComponent(t, rootB, "two.tsx", "two")
	bctx := newLibContext(t, libA, libB)

	b := NewLibrariesBuilder(bctx)
	require.NoError(t, b.Build(context.Background()))
	before := b.Artifact()
	untouchedLib := before.Libraries["beta"]

	writeComponent(t, rootA, "one.tsx", "one, updated")
	require.NoError(t, b.Rebuild(context.Background(), "alpha", []string{"one.tsx"}))

	after := b.Artifact()
	assert.NotSame(t, before, after)
	assert.Same(t, untouchedLib, after.Libraries["beta"], "untouched libraries stay pointer-identical")
	assert.NotSame(t, before.Libraries["alpha"], after.Libraries["alpha"])
}

func TestLibrariesComponentHooksFire(t *testing.T) {
	lib, root := addLibrary(t, "ui")
	writeComponent(t, root, "button.tsx", "b")
	writeComponent(t, root, "input.tsx", "i")
	bctx := newLibContext(t, lib)

	var comps []string
	var libsSeen []string
	bctx.Hooks.LibComponentCompile.Register(func(e ComponentEvent) {
		comps = append(comps, e.Component.Name)
	})
	bctx.Hooks.LibCompile.Register(func(la *LibraryArtifact) {
		libsSeen = append(libsSeen, la.Library.Name)
	})

	b := NewLibrariesBuilder(bctx)
	require.NoError(t, b.Build(context.Background()))

	assert.Len(t, comps, 2)
	assert.Equal(t, []string{"ui"}, libsSeen)
}

func TestLibrariesEmitWritesDescriptors(t *testing.T) {
	lib, root := addLibrary(t, "ui")
	writeComponent(t, root, "button.tsx", "b")
	bctx := newLibContext(t, lib)

	b := NewLibrariesBuilder(bctx)
	require.NoError(t, b.Build(context.Background()))

	data, err := os.ReadFile(filepath.Join(bctx.Paths.ContentRoot, "libraries", "ui.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: ui")
	assert.Contains(t, string(data), "button")
}
