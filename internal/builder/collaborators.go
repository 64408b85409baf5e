package builder

import (
	"context"

	"git.home.luguber.info/inful/compdocs/internal/config"
)

// CompiledDoc is what the document compiler produces for one page body.
type CompiledDoc struct {
	// Title extracted from the document, empty when none was found.
	Title string

	// HTML is the rendered page body.
	HTML []byte
}

// DocCompiler turns a markdown body (front matter already removed) into a
// compiled document. Implementations are supplied by plugins; the builders
// never know which compiler is installed.
type DocCompiler interface {
	Compile(ctx context.Context, source string, body []byte) (CompiledDoc, error)
}

// FrontMatter is the parsed per-document configuration.
type FrontMatter struct {
	// Meta holds the parsed front matter mapping, nil when the document has
	// none.
	Meta map[string]any

	// Body is the document content with front matter stripped.
	Body []byte
}

// FrontMatterParser splits and parses per-document configuration.
type FrontMatterParser interface {
	Parse(content []byte) (FrontMatter, error)
}

// ComponentAnalyzer inspects component source files. Static analysis itself
// is delegated; the pipeline only depends on this narrow surface.
type ComponentAnalyzer interface {
	// Matches reports whether the analyzer handles the given file path.
	Matches(path string) bool

	// Analyze produces a component descriptor from one source file.
	Analyze(ctx context.Context, lib config.Library, path string, src []byte) (*Component, error)
}
