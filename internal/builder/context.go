// Package builder contains the staged build pipeline: the shared build
// context, the per-stage artifact types, and the Docs, Libraries, and
// Navigation builders.
package builder

import (
	"log/slog"

	"git.home.luguber.info/inful/compdocs/internal/config"
	"git.home.luguber.info/inful/compdocs/internal/detect"
	"git.home.luguber.info/inful/compdocs/internal/hooks"
)

// Hooks is the fixed, pre-declared set of named extension points. The hook
// set never grows or shrinks at runtime; plugins only append callbacks.
type Hooks struct {
	// Run fires once the site scaffold is ready, before any stage builds.
	Run *hooks.FanOut[struct{}]

	// DocCompile fires for every successfully compiled page.
	DocCompile *hooks.FanOut[*Page]

	// DocsCompile fires with the full compiled page set of a docs build.
	DocsCompile *hooks.FanOut[[]*Page]

	// LibCompile fires for every fully analyzed library.
	LibCompile *hooks.FanOut[*LibraryArtifact]

	// LibComponentCompile fires for every analyzed component.
	LibComponentCompile *hooks.FanOut[ComponentEvent]

	// Emit fires as the last lifecycle step before completion in one-shot
	// mode. Callbacks are awaited in order.
	Emit *hooks.Series[struct{}]

	// Stage-local "build succeeded" hooks. Each stage's own emission is
	// subscribed here, so full builds and incremental rebuilds funnel
	// through one write path.
	DocsBuilt *hooks.Series[*DocsArtifact]
	LibsBuilt *hooks.Series[*LibrariesArtifact]
	NavBuilt  *hooks.Series[*NavArtifact]
}

// ComponentEvent is the payload of LibComponentCompile.
type ComponentEvent struct {
	Library   string
	Component *Component
}

// NewHooks constructs the full hook set.
func NewHooks() *Hooks {
	return &Hooks{
		Run:                 hooks.NewFanOut[struct{}]("run"),
		DocCompile:          hooks.NewFanOut[*Page]("docCompile"),
		DocsCompile:         hooks.NewFanOut[[]*Page]("docsCompile"),
		LibCompile:          hooks.NewFanOut[*LibraryArtifact]("libCompile"),
		LibComponentCompile: hooks.NewFanOut[ComponentEvent]("libComponentCompile"),
		Emit:                hooks.NewSeries[struct{}]("emit"),
		DocsBuilt:           hooks.NewSeries[*DocsArtifact]("docsBuilt"),
		LibsBuilt:           hooks.NewSeries[*LibrariesArtifact]("libsBuilt"),
		NavBuilt:            hooks.NewSeries[*NavArtifact]("navBuilt"),
	}
}

// SetRecorder wires a firing observer onto every hook, typically backed by
// the build event journal.
func (h *Hooks) SetRecorder(r hooks.Recorder) {
	h.Run.SetRecorder(r)
	h.DocCompile.SetRecorder(r)
	h.DocsCompile.SetRecorder(r)
	h.LibCompile.SetRecorder(r)
	h.LibComponentCompile.SetRecorder(r)
	h.Emit.SetRecorder(r)
	h.DocsBuilt.SetRecorder(r)
	h.LibsBuilt.SetRecorder(r)
	h.NavBuilt.SetRecorder(r)
}

// Context is the process-wide build context, one instance per run. It is
// owned by the orchestrator. Plugins receive a reference but must only read
// configuration and paths and register hook callbacks or collaborators;
// configuration is immutable after initialization.
type Context struct {
	Config  *config.Config
	Paths   config.Paths
	Hooks   *Hooks
	Logger  *slog.Logger
	BuildID string

	// Detection is populated by the orchestrator after the detect step and
	// read-only afterwards.
	Detection detect.Result

	compiler    DocCompiler
	frontmatter FrontMatterParser
	analyzer    ComponentAnalyzer
}

// NewContext creates a build context.
func NewContext(cfg *config.Config, paths config.Paths, logger *slog.Logger, buildID string) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		Config:  cfg,
		Paths:   paths,
		Hooks:   NewHooks(),
		Logger:  logger,
		BuildID: buildID,
	}
}

// RegisterDocCompiler installs the markdown-to-document collaborator. The
// last registration wins; an earlier one is logged and replaced.
func (c *Context) RegisterDocCompiler(dc DocCompiler) {
	if c.compiler != nil {
		c.Logger.Debug("replacing registered document compiler")
	}
	c.compiler = dc
}

// RegisterFrontMatterParser installs the per-document config collaborator.
func (c *Context) RegisterFrontMatterParser(p FrontMatterParser) {
	if c.frontmatter != nil {
		c.Logger.Debug("replacing registered front matter parser")
	}
	c.frontmatter = p
}

// RegisterComponentAnalyzer installs the component analysis collaborator.
func (c *Context) RegisterComponentAnalyzer(a ComponentAnalyzer) {
	if c.analyzer != nil {
		c.Logger.Debug("replacing registered component analyzer")
	}
	c.analyzer = a
}

// DocCompiler returns the installed compiler, nil when none is registered.
func (c *Context) DocCompiler() DocCompiler { return c.compiler }

// FrontMatterParser returns the installed parser, nil when none is registered.
func (c *Context) FrontMatterParser() FrontMatterParser { return c.frontmatter }

// ComponentAnalyzer returns the installed analyzer, nil when none is registered.
func (c *Context) ComponentAnalyzer() ComponentAnalyzer { return c.analyzer }
