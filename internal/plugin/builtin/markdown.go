// Package builtin provides the built-in plugins: markdown compilation,
// per-document configuration, and the component framework analyzer.
package builtin

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/compdocs/internal/builder"
	"git.home.luguber.info/inful/compdocs/internal/plugin"
)

// MarkdownPlugin installs a goldmark-backed document compiler. Without it
// the docs stage has nothing to compile with.
type MarkdownPlugin struct{}

// NewMarkdownPlugin constructs the plugin.
func NewMarkdownPlugin() *MarkdownPlugin { return &MarkdownPlugin{} }

// Metadata implements plugin.Plugin.
func (p *MarkdownPlugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "markdown",
		Version:     "1.0.0",
		Description: "compiles markdown pages with goldmark",
	}
}

// Apply registers the compiler collaborator.
func (p *MarkdownPlugin) Apply(bctx *builder.Context) error {
	bctx.RegisterDocCompiler(newGoldmarkCompiler())
	return nil
}

type goldmarkCompiler struct {
	md goldmark.Markdown
}

func newGoldmarkCompiler() *goldmarkCompiler {
	return &goldmarkCompiler{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Compile renders one markdown body to HTML and extracts the first heading
// as the document title.
func (c *goldmarkCompiler) Compile(_ context.Context, source string, body []byte) (builder.CompiledDoc, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return builder.CompiledDoc{}, fmt.Errorf("render %s: %w", source, err)
	}
	rendered := buf.Bytes()
	return builder.CompiledDoc{
		Title: firstHeading(rendered),
		HTML:  rendered,
	}, nil
}

// firstHeading returns the text of the first h1 in the rendered output.
func firstHeading(rendered []byte) string {
	doc, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "h1" {
			title = strings.TrimSpace(textContent(n))
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return title
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
