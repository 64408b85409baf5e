package builtin

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/compdocs/internal/builder"
	"git.home.luguber.info/inful/compdocs/internal/plugin"
)

// DocConfigPlugin installs the per-document configuration collaborator: YAML
// front matter delimited by `---` lines.
type DocConfigPlugin struct{}

// NewDocConfigPlugin constructs the plugin.
func NewDocConfigPlugin() *DocConfigPlugin { return &DocConfigPlugin{} }

// Metadata implements plugin.Plugin.
func (p *DocConfigPlugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "docconfig",
		Version:     "1.0.0",
		Description: "parses YAML front matter as per-document configuration",
	}
}

// Apply registers the front matter parser collaborator.
func (p *DocConfigPlugin) Apply(bctx *builder.Context) error {
	bctx.RegisterFrontMatterParser(yamlFrontMatter{})
	return nil
}

type yamlFrontMatter struct{}

var delimiter = []byte("---")

// Parse splits `---` delimited YAML front matter from the body. A document
// without front matter passes through untouched; an unterminated or invalid
// block is a compile error for that document.
func (yamlFrontMatter) Parse(content []byte) (builder.FrontMatter, error) {
	if !bytes.HasPrefix(content, delimiter) {
		return builder.FrontMatter{Body: content}, nil
	}

	rest := content[len(delimiter):]
	if len(rest) == 0 || (rest[0] != '\n' && !bytes.HasPrefix(rest, []byte("\r\n"))) {
		return builder.FrontMatter{Body: content}, nil
	}
	rest = bytes.TrimPrefix(rest, []byte("\r"))
	rest = rest[1:]

	end := bytes.Index(rest, append([]byte("\n"), delimiter...))
	if end < 0 {
		return builder.FrontMatter{}, fmt.Errorf("front matter missing closing delimiter")
	}
	raw := rest[:end+1]
	body := rest[end+1+len(delimiter):]
	body = bytes.TrimPrefix(body, []byte("\r"))
	body = bytes.TrimPrefix(body, []byte("\n"))

	var meta map[string]any
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return builder.FrontMatter{}, fmt.Errorf("invalid front matter: %w", err)
	}
	return builder.FrontMatter{Meta: meta, Body: body}, nil
}
