package builder

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"

	cerrors "git.home.luguber.info/inful/compdocs/internal/errors"
	"git.home.luguber.info/inful/compdocs/internal/fsutil"
	"git.home.luguber.info/inful/compdocs/internal/watch"
)

// DocsBuilder owns the docs slice of the build: it discovers markdown pages
// under the docs root, compiles them through the installed collaborators, and
// emits the compiled pages.
type DocsBuilder struct {
	bctx *Context

	// mu serializes full builds and incremental rebuilds of this stage.
	mu      sync.Mutex
	current atomic.Pointer[DocsArtifact]
	watcher *watch.Watcher
}

// NewDocsBuilder creates the docs stage builder and subscribes its emission
// to the stage's own "build succeeded" hook, so initial builds and
// incremental rebuilds share one write path.
func NewDocsBuilder(bctx *Context) *DocsBuilder {
	b := &DocsBuilder{bctx: bctx}
	bctx.Hooks.DocsBuilt.Register(func(ctx context.Context, art *DocsArtifact) error {
		return b.emit(ctx, art)
	})
	return b
}

// Artifact returns the current artifact, nil before the first build.
func (b *DocsBuilder) Artifact() *DocsArtifact {
	return b.current.Load()
}

// Build discovers and compiles all pages, then fires the stage's build
// succeeded hook with the new artifact.
func (b *DocsBuilder) Build(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bctx.DocCompiler() == nil {
		return cerrors.Config("no document compiler registered; the docs stage needs a markdown plugin")
	}

	art, err := b.discoverAndCompile(ctx)
	if err != nil {
		return err
	}

	b.current.Store(art)
	b.bctx.Hooks.DocsCompile.Fire(art.SortedPages())
	return b.bctx.Hooks.DocsBuilt.Fire(ctx, art)
}

// discoverAndCompile walks the docs root. A missing root is a discovery
// failure and fatal; a page that fails to compile is recorded against that
// page and its siblings proceed.
func (b *DocsBuilder) discoverAndCompile(ctx context.Context) (*DocsArtifact, error) {
	root := b.bctx.Paths.DocsRoot
	if !fsutil.DirExists(root) {
		return nil, cerrors.Discovery(os.ErrNotExist, "docs root does not exist: "+root)
	}

	art := &DocsArtifact{
		Pages:  map[string]*Page{},
		Errors: map[string]error{},
	}

	var itemErrs *multierror.Error
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !isMarkdown(rel) {
			art.Assets = append(art.Assets, rel)
			return nil
		}

		page, err := b.compileOne(ctx, rel)
		if err != nil {
			ie := cerrors.Compile(err, rel)
			art.Errors[rel] = ie
			itemErrs = multierror.Append(itemErrs, ie)
			b.bctx.Logger.Warn("page failed to compile", "source", rel, "error", err)
			return nil
		}
		art.Pages[rel] = page
		b.bctx.Hooks.DocCompile.Fire(page)
		return nil
	})
	if err != nil {
		return nil, cerrors.Discovery(err, "walk docs root")
	}

	if itemErrs != nil {
		b.bctx.Logger.Warn("docs build completed with item errors",
			"pages", len(art.Pages), "errors", itemErrs.Len())
	} else {
		b.bctx.Logger.Info("docs build completed", "pages", len(art.Pages), "assets", len(art.Assets))
	}
	return art, nil
}

// compileOne reads and compiles a single page.
func (b *DocsBuilder) compileOne(ctx context.Context, rel string) (*Page, error) {
	raw, err := os.ReadFile(filepath.Join(b.bctx.Paths.DocsRoot, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}

	var meta map[string]any
	body := raw
	if parser := b.bctx.FrontMatterParser(); parser != nil {
		fm, err := parser.Parse(raw)
		if err != nil {
			return nil, err
		}
		meta = fm.Meta
		body = fm.Body
	}

	compiled, err := b.bctx.DocCompiler().Compile(ctx, rel, body)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Source: rel,
		Route:  routeFor(rel, meta),
		Title:  compiled.Title,
		HTML:   compiled.HTML,
		Meta:   meta,
	}
	if t, ok := meta["title"].(string); ok && t != "" {
		page.Title = t
	}
	if page.Title == "" {
		page.Title = titleize(strings.TrimSuffix(path.Base(rel), path.Ext(rel)))
	}
	return page, nil
}

// Rebuild recompiles only the changed pages and replaces the artifact.
// Unchanged pages stay pointer-identical to the previous artifact.
func (b *DocsBuilder) Rebuild(ctx context.Context, changed []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev := b.current.Load()
	if prev == nil {
		return cerrors.New(cerrors.CategoryInternal, cerrors.SeverityFatal, "rebuild before first build")
	}

	art := prev.clone()
	for _, rel := range changed {
		abs := filepath.Join(b.bctx.Paths.DocsRoot, filepath.FromSlash(rel))
		st, statErr := os.Stat(abs)

		// The watcher reports directory events too; they are never pages
		// or assets.
		if statErr == nil && st.IsDir() {
			continue
		}

		if !isMarkdown(rel) {
			// Asset change: the emit pass recopies assets wholesale.
			if os.IsNotExist(statErr) {
				art.Assets = withoutString(art.Assets, rel)
			} else if !containsString(art.Assets, rel) {
				art.Assets = append(art.Assets, rel)
			}
			continue
		}

		if os.IsNotExist(statErr) {
			if page, ok := art.Pages[rel]; ok {
				b.removeEmitted(page.Route)
			}
			delete(art.Pages, rel)
			delete(art.Errors, rel)
			continue
		}

		page, err := b.compileOne(ctx, rel)
		if err != nil {
			art.Errors[rel] = cerrors.Compile(err, rel)
			delete(art.Pages, rel)
			b.bctx.Logger.Warn("page failed to recompile", "source", rel, "error", err)
			continue
		}
		delete(art.Errors, rel)
		art.Pages[rel] = page
		b.bctx.Hooks.DocCompile.Fire(page)
	}

	b.current.Store(art)
	b.bctx.Hooks.DocsCompile.Fire(art.SortedPages())
	return b.bctx.Hooks.DocsBuilt.Fire(ctx, art)
}

// Watch attaches a filesystem watcher over the docs root. Non-blocking; the
// watcher re-runs the incremental path on relevant changes.
func (b *DocsBuilder) Watch(ctx context.Context) error {
	w, err := watch.New([]string{b.bctx.Paths.DocsRoot}, b.bctx.Config.Watch.Debounce, b.bctx.Logger,
		func(paths []string) {
			rels := make([]string, 0, len(paths))
			for _, p := range paths {
				rel, err := filepath.Rel(b.bctx.Paths.DocsRoot, p)
				if err != nil {
					continue
				}
				rels = append(rels, filepath.ToSlash(rel))
			}
			if len(rels) == 0 {
				return
			}
			if err := b.Rebuild(ctx, rels); err != nil {
				b.bctx.Logger.Error("incremental docs rebuild failed", "error", err)
			}
		})
	if err != nil {
		return err
	}
	b.watcher = w
	return w.Start(ctx)
}

// emit writes the artifact's pages and assets under the output roots. It is
// only ever invoked through the DocsBuilt hook.
func (b *DocsBuilder) emit(_ context.Context, art *DocsArtifact) error {
	for _, page := range art.Pages {
		dst := filepath.Join(b.bctx.Paths.ContentRoot, "pages", routeFile(page.Route))
		if err := fsutil.WriteFile(dst, page.HTML); err != nil {
			return cerrors.Wrap(err, cerrors.CategoryFileSystem, cerrors.SeverityFatal, "emit page")
		}
	}
	for _, rel := range art.Assets {
		src := filepath.Join(b.bctx.Paths.DocsRoot, filepath.FromSlash(rel))
		dst := filepath.Join(b.bctx.Paths.AssetsRoot, filepath.FromSlash(rel))
		if err := fsutil.CopyFile(src, dst); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return cerrors.Wrap(err, cerrors.CategoryFileSystem, cerrors.SeverityFatal, "emit asset")
		}
	}
	return nil
}

func isMarkdown(rel string) bool {
	switch strings.ToLower(path.Ext(rel)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// routeFor derives a page's route from its source path, honoring a front
// matter override.
func routeFor(rel string, meta map[string]any) string {
	if meta != nil {
		if r, ok := meta["route"].(string); ok && r != "" {
			if !strings.HasPrefix(r, "/") {
				r = "/" + r
			}
			return r
		}
	}
	trimmed := strings.TrimSuffix(rel, path.Ext(rel))
	if path.Base(trimmed) == "index" {
		trimmed = path.Dir(trimmed)
		if trimmed == "." {
			return "/"
		}
	}
	return "/" + strings.ToLower(trimmed)
}

// routeFile maps a route to its emitted file path.
func routeFile(route string) string {
	if route == "/" {
		return "index.html"
	}
	return filepath.FromSlash(strings.TrimPrefix(route, "/")) + ".html"
}

// removeEmitted deletes the emitted file of a page that left the artifact, so
// watch mode does not serve stale output until the next full run cleans it.
func (b *DocsBuilder) removeEmitted(route string) {
	dst := filepath.Join(b.bctx.Paths.ContentRoot, "pages", routeFile(route))
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		b.bctx.Logger.Warn("could not remove emitted page", "path", dst, "error", err)
	}
}

func withoutString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
