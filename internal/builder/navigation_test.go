package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/compdocs/internal/config"
)

func docsArtifactFixture() *DocsArtifact {
	return &DocsArtifact{
		Pages: map[string]*Page{
			"index.md":       {Source: "index.md", Route: "/", Title: "Home"},
			"guide/setup.md": {Source: "guide/setup.md", Route: "/guide/setup", Title: "Setup"},
			"guide/usage.md": {Source: "guide/usage.md", Route: "/guide/usage", Title: "Usage"},
		},
	}
}

func libsArtifactFixture() *LibrariesArtifact {
	return &LibrariesArtifact{
		Order: []string{"ui"},
		Libraries: map[string]*LibraryArtifact{
			"ui": {
				Library: config.Library{Name: "ui"},
				Components: map[string]*Component{
					"button.tsx": {Name: "Button", File: "button.tsx"},
					"input.tsx":  {Name: "Input", File: "input.tsx"},
				},
			},
		},
	}
}

func TestNavigationTreeShape(t *testing.T) {
	bctx := newTestContext(t)
	b := NewNavigationBuilder(bctx, docsArtifactFixture(), libsArtifactFixture())
	require.NoError(t, b.Build(context.Background()))

	art := b.Artifact()
	require.NotNil(t, art)
	require.Len(t, art.Entries, 2)

	docs := art.Entries[0]
	assert.Equal(t, "Documentation", docs.Label)
	assert.Equal(t, "/", docs.Route)
	require.Len(t, docs.Children, 1)
	guide := docs.Children[0]
	assert.Equal(t, "Guide", guide.Label)
	require.Len(t, guide.Children, 2)
	assert.Equal(t, "Setup", guide.Children[0].Label)
	assert.Equal(t, "/guide/setup", guide.Children[0].Route)

	libs := art.Entries[1]
	assert.Equal(t, "Libraries", libs.Label)
	require.Len(t, libs.Children, 1)
	ui := libs.Children[0]
	require.Len(t, ui.Children, 2)
	assert.Equal(t, "Button", ui.Children[0].Label)
	assert.Equal(t, "/libraries/ui/button", ui.Children[0].Route)
}

func TestNavigationRequiresBothArtifacts(t *testing.T) {
	bctx := newTestContext(t)
	b := NewNavigationBuilder(bctx, nil, nil)
	require.Error(t, b.Build(context.Background()))
	assert.Zero(t, b.Discoveries())
}

func TestNavigationEmitWritesTree(t *testing.T) {
	bctx := newTestContext(t)
	b := NewNavigationBuilder(bctx, docsArtifactFixture(), libsArtifactFixture())
	require.NoError(t, b.Build(context.Background()))

	data, err := os.ReadFile(filepath.Join(bctx.Paths.ContentRoot, "navigation.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "label: Documentation")
	assert.Contains(t, string(data), "label: Libraries")
}

func TestNavigationFollowsSourceRebuilds(t *testing.T) {
	bctx := newTestContext(t)
	docs := docsArtifactFixture()
	b := NewNavigationBuilder(bctx, docs, libsArtifactFixture())
	require.NoError(t, b.Build(context.Background()))
	require.NoError(t, b.Watch(context.Background()))
	first := b.Discoveries()

	// A docs rebuild re-fires the docsBuilt hook; navigation re-derives.
	updated := docs.clone()
	updated.Pages["new.md"] = &Page{Source: "new.md", Route: "/new", Title: "New"}
	require.NoError(t, bctx.Hooks.DocsBuilt.Fire(context.Background(), updated))

	assert.Greater(t, b.Discoveries(), first)
	var routes []string
	collect(b.Artifact().Entries, &routes)
	assert.Contains(t, routes, "/new")
}

func collect(entries []*NavEntry, routes *[]string) {
	for _, e := range entries {
		if e.Route != "" {
			*routes = append(*routes, e.Route)
		}
		collect(e.Children, routes)
	}
}

func TestTitleize(t *testing.T) {
	assert.Equal(t, "Getting Started", titleize("getting-started"))
	assert.Equal(t, "Api Reference", titleize("api_reference"))
}
