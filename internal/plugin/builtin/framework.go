package builtin

import (
	"context"
	"path"
	"strings"

	"git.home.luguber.info/inful/compdocs/internal/builder"
	"git.home.luguber.info/inful/compdocs/internal/config"
	"git.home.luguber.info/inful/compdocs/internal/plugin"
)

// FrameworkPlugin installs the component analyzer collaborator. Deep static
// analysis is an external concern; this analyzer derives the descriptor the
// pipeline needs: component name from the file name and documentation from
// the leading comment block.
type FrameworkPlugin struct{}

// NewFrameworkPlugin constructs the plugin.
func NewFrameworkPlugin() *FrameworkPlugin { return &FrameworkPlugin{} }

// Metadata implements plugin.Plugin.
func (p *FrameworkPlugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "framework",
		Version:     "1.0.0",
		Description: "analyzes component library source files",
	}
}

// Apply registers the analyzer collaborator.
func (p *FrameworkPlugin) Apply(bctx *builder.Context) error {
	bctx.RegisterComponentAnalyzer(componentAnalyzer{})
	return nil
}

type componentAnalyzer struct{}

var componentExtensions = map[string]struct{}{
	".jsx": {},
	".tsx": {},
	".vue": {},
}

// Matches reports whether the file is a component source.
func (componentAnalyzer) Matches(p string) bool {
	_, ok := componentExtensions[strings.ToLower(path.Ext(p))]
	return ok
}

// Analyze derives a component descriptor from one source file.
func (componentAnalyzer) Analyze(_ context.Context, _ config.Library, file string, src []byte) (*builder.Component, error) {
	base := strings.TrimSuffix(path.Base(file), path.Ext(file))
	return &builder.Component{
		Name: componentName(base),
		File: file,
		Doc:  leadingComment(string(src)),
	}, nil
}

// componentName normalizes a file base name to PascalCase:
// "date-picker" -> "DatePicker".
func componentName(base string) string {
	parts := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	var sb strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}
	return sb.String()
}

// leadingComment extracts the documentation text from a leading // or /* */
// comment block.
func leadingComment(src string) string {
	src = strings.TrimLeft(src, " \t\r\n")

	if strings.HasPrefix(src, "/*") {
		end := strings.Index(src, "*/")
		if end < 0 {
			return ""
		}
		body := src[2:end]
		var lines []string
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
			if line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, " ")
	}

	var lines []string
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "//") {
			break
		}
		text := strings.TrimSpace(strings.TrimPrefix(trimmed, "//"))
		if text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, " ")
}
