package builder

import (
	"context"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	cerrors "git.home.luguber.info/inful/compdocs/internal/errors"
	"git.home.luguber.info/inful/compdocs/internal/fsutil"
)

// NavigationBuilder derives the ordered navigation tree from the docs and
// libraries artifacts. It must not build before both source stages have
// succeeded; the orchestrator constructs it only after their join.
type NavigationBuilder struct {
	bctx *Context

	mu      sync.Mutex
	docs    *DocsArtifact
	libs    *LibrariesArtifact
	current atomic.Pointer[NavArtifact]

	discoveries atomic.Int64
}

// NewNavigationBuilder creates the navigation stage builder over the two
// source artifacts and subscribes its emission to the stage's
// build-succeeded hook.
func NewNavigationBuilder(bctx *Context, docs *DocsArtifact, libs *LibrariesArtifact) *NavigationBuilder {
	b := &NavigationBuilder{bctx: bctx, docs: docs, libs: libs}
	bctx.Hooks.NavBuilt.Register(func(ctx context.Context, art *NavArtifact) error {
		return b.emit(ctx, art)
	})
	return b
}

// Artifact returns the current artifact, nil before the first build.
func (b *NavigationBuilder) Artifact() *NavArtifact {
	return b.current.Load()
}

// Discoveries reports how many times the builder has enumerated its inputs.
func (b *NavigationBuilder) Discoveries() int64 {
	return b.discoveries.Load()
}

// Build derives the navigation tree and fires the build-succeeded hook.
func (b *NavigationBuilder) Build(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rebuildLocked(ctx)
}

func (b *NavigationBuilder) rebuildLocked(ctx context.Context) error {
	if b.docs == nil || b.libs == nil {
		return cerrors.New(cerrors.CategoryInternal, cerrors.SeverityFatal,
			"navigation build requires docs and libraries artifacts")
	}
	b.discoveries.Add(1)

	art := &NavArtifact{}
	if docsTree := buildDocsTree(b.docs); docsTree != nil {
		art.Entries = append(art.Entries, docsTree)
	}
	if libTree := buildLibrariesTree(b.libs); libTree != nil {
		art.Entries = append(art.Entries, libTree)
	}

	b.current.Store(art)
	b.bctx.Logger.Info("navigation built", "entries", len(art.Entries))
	return b.bctx.Hooks.NavBuilt.Fire(ctx, art)
}

// Watch subscribes to the source stages' build-succeeded hooks: navigation's
// input set is their artifacts, not files on disk. Every docs or libraries
// rebuild re-derives the tree and re-fires navBuilt, so emission re-runs
// without the orchestrator's involvement.
func (b *NavigationBuilder) Watch(ctx context.Context) error {
	b.bctx.Hooks.DocsBuilt.Register(func(ctx context.Context, art *DocsArtifact) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.docs = art
		return b.rebuildLocked(ctx)
	})
	b.bctx.Hooks.LibsBuilt.Register(func(ctx context.Context, art *LibrariesArtifact) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.libs = art
		return b.rebuildLocked(ctx)
	})
	return nil
}

// buildDocsTree nests pages by route segment under a "Documentation" root.
func buildDocsTree(docs *DocsArtifact) *NavEntry {
	pages := docs.SortedPages()
	if len(pages) == 0 {
		return nil
	}

	root := &NavEntry{Label: "Documentation"}
	for _, page := range pages {
		if page.Route == "/" {
			root.Route = "/"
			continue
		}
		segments := strings.Split(strings.TrimPrefix(page.Route, "/"), "/")
		node := root
		for i, seg := range segments {
			last := i == len(segments)-1
			child := findChild(node, seg)
			if child == nil {
				child = &NavEntry{Label: titleize(seg)}
				node.Children = append(node.Children, child)
			}
			if last {
				child.Route = page.Route
				if page.Title != "" {
					child.Label = page.Title
				}
			}
			node = child
		}
	}
	sortTree(root)
	return root
}

// buildLibrariesTree lists each library's components in configured order.
func buildLibrariesTree(libs *LibrariesArtifact) *NavEntry {
	if len(libs.Order) == 0 {
		return nil
	}

	root := &NavEntry{Label: "Libraries"}
	for _, name := range libs.Order {
		la := libs.Libraries[name]
		libEntry := &NavEntry{Label: titleize(name)}
		for _, comp := range la.SortedComponents() {
			libEntry.Children = append(libEntry.Children, &NavEntry{
				Label: comp.Name,
				Route: "/libraries/" + strings.ToLower(name) + "/" + strings.ToLower(comp.Name),
			})
		}
		root.Children = append(root.Children, libEntry)
	}
	return root
}

func findChild(node *NavEntry, segment string) *NavEntry {
	label := titleize(segment)
	for _, c := range node.Children {
		if c.Label == label || routeLeaf(c.Route) == segment {
			return c
		}
	}
	return nil
}

func routeLeaf(route string) string {
	if route == "" {
		return ""
	}
	return path.Base(route)
}

func sortTree(node *NavEntry) {
	sort.SliceStable(node.Children, func(i, j int) bool {
		return node.Children[i].Label < node.Children[j].Label
	})
	for _, c := range node.Children {
		sortTree(c)
	}
}

// emit writes the navigation tree under the content root.
func (b *NavigationBuilder) emit(_ context.Context, art *NavArtifact) error {
	data, err := yaml.Marshal(art)
	if err != nil {
		return cerrors.Wrap(err, cerrors.CategoryInternal, cerrors.SeverityFatal, "marshal navigation")
	}
	dst := filepath.Join(b.bctx.Paths.ContentRoot, "navigation.yaml")
	if err := fsutil.WriteFile(dst, data); err != nil {
		return cerrors.Wrap(err, cerrors.CategoryFileSystem, cerrors.SeverityFatal, "emit navigation")
	}
	return nil
}
