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

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/compdocs/internal/config"
	cerrors "git.home.luguber.info/inful/compdocs/internal/errors"
	"git.home.luguber.info/inful/compdocs/internal/fsutil"
	"git.home.luguber.info/inful/compdocs/internal/watch"
)

// LibrariesBuilder owns the component-library slice of the build: it walks
// each configured library root, analyzes component sources through the
// installed analyzer, and emits per-library descriptors.
type LibrariesBuilder struct {
	bctx *Context

	mu      sync.Mutex
	current atomic.Pointer[LibrariesArtifact]
	watcher *watch.Watcher
}

// NewLibrariesBuilder creates the libraries stage builder and subscribes its
// emission to the stage's build-succeeded hook.
func NewLibrariesBuilder(bctx *Context) *LibrariesBuilder {
	b := &LibrariesBuilder{bctx: bctx}
	bctx.Hooks.LibsBuilt.Register(func(ctx context.Context, art *LibrariesArtifact) error {
		return b.emit(ctx, art)
	})
	return b
}

// Artifact returns the current artifact, nil before the first build.
func (b *LibrariesBuilder) Artifact() *LibrariesArtifact {
	return b.current.Load()
}

// Build analyzes every configured library and fires the build-succeeded hook.
// With no libraries configured the stage produces an empty artifact.
func (b *LibrariesBuilder) Build(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	art := &LibrariesArtifact{Libraries: map[string]*LibraryArtifact{}}
	for _, lib := range b.bctx.Config.Libraries {
		la, err := b.analyzeLibrary(ctx, lib)
		if err != nil {
			return err
		}
		art.Libraries[lib.Name] = la
		art.Order = append(art.Order, lib.Name)
		b.bctx.Hooks.LibCompile.Fire(la)
	}

	b.current.Store(art)
	return b.bctx.Hooks.LibsBuilt.Fire(ctx, art)
}

// analyzeLibrary walks one library root. A missing root is fatal; an
// individual component that fails analysis is recorded and skipped.
func (b *LibrariesBuilder) analyzeLibrary(ctx context.Context, lib config.Library) (*LibraryArtifact, error) {
	analyzer := b.bctx.ComponentAnalyzer()
	if analyzer == nil {
		return nil, cerrors.Config("no component analyzer registered; the libraries stage needs a framework plugin")
	}

	root, err := filepath.Abs(lib.Path)
	if err != nil {
		return nil, cerrors.Discovery(err, "resolve library root "+lib.Path)
	}
	if !fsutil.DirExists(root) {
		return nil, cerrors.Discovery(os.ErrNotExist, "library root does not exist: "+root)
	}

	la := &LibraryArtifact{
		Library:    lib,
		Components: map[string]*Component{},
		Errors:     map[string]error{},
	}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
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
		if !b.matches(lib, rel) {
			return nil
		}

		comp, err := b.analyzeOne(ctx, lib, root, rel)
		if err != nil {
			ie := cerrors.Compile(err, lib.Name+"/"+rel)
			la.Errors[rel] = ie
			b.bctx.Logger.Warn("component failed to analyze", "library", lib.Name, "file", rel, "error", err)
			return nil
		}
		la.Components[rel] = comp
		b.bctx.Hooks.LibComponentCompile.Fire(ComponentEvent{Library: lib.Name, Component: comp})
		return nil
	})
	if err != nil {
		return nil, cerrors.Discovery(err, "walk library root "+root)
	}

	b.bctx.Logger.Info("library analyzed", "library", lib.Name,
		"components", len(la.Components), "errors", len(la.Errors))
	return la, nil
}

// matches applies the library's include list when present, falling back to
// the analyzer's own matcher.
func (b *LibrariesBuilder) matches(lib config.Library, rel string) bool {
	if len(lib.Include) > 0 {
		ext := strings.ToLower(path.Ext(rel))
		for _, inc := range lib.Include {
			if ext == strings.ToLower(inc) {
				return true
			}
		}
		return false
	}
	return b.bctx.ComponentAnalyzer().Matches(rel)
}

func (b *LibrariesBuilder) analyzeOne(ctx context.Context, lib config.Library, root, rel string) (*Component, error) {
	src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	return b.bctx.ComponentAnalyzer().Analyze(ctx, lib, rel, src)
}

// Rebuild re-analyzes only the changed component files. The library artifact
// containing a change is cloned; untouched libraries stay pointer-identical.
func (b *LibrariesBuilder) Rebuild(ctx context.Context, libName string, changed []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev := b.current.Load()
	if prev == nil {
		return cerrors.New(cerrors.CategoryInternal, cerrors.SeverityFatal, "rebuild before first build")
	}
	prevLib, ok := prev.Libraries[libName]
	if !ok {
		return cerrors.Configf("unknown library %s", libName)
	}

	root, err := filepath.Abs(prevLib.Library.Path)
	if err != nil {
		return cerrors.Discovery(err, "resolve library root")
	}

	la := prevLib.clone()
	for _, rel := range changed {
		if !b.matches(prevLib.Library, rel) {
			continue
		}
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if _, err := os.Stat(abs); os.IsNotExist(err) {
			delete(la.Components, rel)
			delete(la.Errors, rel)
			continue
		}

		comp, err := b.analyzeOne(ctx, prevLib.Library, root, rel)
		if err != nil {
			la.Errors[rel] = cerrors.Compile(err, libName+"/"+rel)
			delete(la.Components, rel)
			continue
		}
		delete(la.Errors, rel)
		la.Components[rel] = comp
		b.bctx.Hooks.LibComponentCompile.Fire(ComponentEvent{Library: libName, Component: comp})
	}

	art := prev.clone()
	art.Libraries[libName] = la
	b.current.Store(art)
	b.bctx.Hooks.LibCompile.Fire(la)
	return b.bctx.Hooks.LibsBuilt.Fire(ctx, art)
}

// Watch attaches filesystem watchers over every library root.
func (b *LibrariesBuilder) Watch(ctx context.Context) error {
	roots := make([]string, 0, len(b.bctx.Config.Libraries))
	byRoot := map[string]config.Library{}
	for _, lib := range b.bctx.Config.Libraries {
		abs, err := filepath.Abs(lib.Path)
		if err != nil {
			return cerrors.Discovery(err, "resolve library root "+lib.Path)
		}
		roots = append(roots, abs)
		byRoot[abs] = lib
	}
	if len(roots) == 0 {
		return nil
	}

	w, err := watch.New(roots, b.bctx.Config.Watch.Debounce, b.bctx.Logger, func(paths []string) {
		perLib := map[string][]string{}
		for _, p := range paths {
			for root, lib := range byRoot {
				if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
					perLib[lib.Name] = append(perLib[lib.Name], filepath.ToSlash(rel))
					break
				}
			}
		}
		for libName, rels := range perLib {
			if err := b.Rebuild(ctx, libName, rels); err != nil {
				b.bctx.Logger.Error("incremental library rebuild failed", "library", libName, "error", err)
			}
		}
	})
	if err != nil {
		return err
	}
	b.watcher = w
	return w.Start(ctx)
}

// libraryDescriptor is the emitted per-library file shape.
type libraryDescriptor struct {
	Name       string                `yaml:"name"`
	Components []componentDescriptor `yaml:"components"`
}

type componentDescriptor struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
	Doc  string `yaml:"doc,omitempty"`
}

// emit writes one descriptor file per library under the content root.
func (b *LibrariesBuilder) emit(_ context.Context, art *LibrariesArtifact) error {
	for _, name := range art.Order {
		la := art.Libraries[name]
		desc := libraryDescriptor{Name: name}
		for _, c := range la.SortedComponents() {
			desc.Components = append(desc.Components, componentDescriptor{
				Name: c.Name, File: c.File, Doc: c.Doc,
			})
		}

		data, err := yaml.Marshal(desc)
		if err != nil {
			return cerrors.Wrap(err, cerrors.CategoryInternal, cerrors.SeverityFatal, "marshal library descriptor")
		}
		dst := filepath.Join(b.bctx.Paths.ContentRoot, "libraries", name+".yaml")
		if err := fsutil.WriteFile(dst, data); err != nil {
			return cerrors.Wrap(err, cerrors.CategoryFileSystem, cerrors.SeverityFatal, "emit library descriptor")
		}
	}
	return nil
}
