package builder

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/compdocs/internal/config"
)

// Page is one compiled documentation page.
type Page struct {
	// Source is the path relative to the docs root.
	Source string

	// Route is the site route the page is served under.
	Route string

	Title string
	HTML  []byte

	// Meta is the parsed front matter, nil when the page has none.
	Meta map[string]any
}

// DocsArtifact is the output of one docs build. It is replaced wholesale
// after every (re)build, never mutated in place, so a reader never observes a
// half-updated page set.
type DocsArtifact struct {
	// Pages keyed by source-relative path.
	Pages map[string]*Page

	// Assets are non-markdown files (images etc.) found under the docs
	// root, as source-relative paths.
	Assets []string

	// Errors records item-scoped compile failures keyed by source path.
	// Failed pages are excluded from Pages.
	Errors map[string]error
}

// SortedPages returns the pages ordered by route for deterministic
// downstream processing.
func (a *DocsArtifact) SortedPages() []*Page {
	pages := make([]*Page, 0, len(a.Pages))
	for _, p := range a.Pages {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Route < pages[j].Route })
	return pages
}

// clone returns a shallow copy with fresh maps. Page pointers are shared, so
// entries an incremental rebuild does not touch stay pointer-identical.
func (a *DocsArtifact) clone() *DocsArtifact {
	c := &DocsArtifact{
		Pages:  make(map[string]*Page, len(a.Pages)),
		Assets: append([]string(nil), a.Assets...),
		Errors: make(map[string]error, len(a.Errors)),
	}
	for k, v := range a.Pages {
		c.Pages[k] = v
	}
	for k, v := range a.Errors {
		c.Errors[k] = v
	}
	return c
}

// Component is one analyzed library component.
type Component struct {
	Name string
	// File is the path relative to the library root.
	File string
	// Doc is the component's extracted documentation text.
	Doc string
}

// LibraryArtifact is the analyzed state of one component library.
type LibraryArtifact struct {
	Library config.Library

	// Components keyed by library-relative file path.
	Components map[string]*Component

	// Errors records item-scoped analysis failures keyed by file path.
	Errors map[string]error
}

// SortedComponents returns components ordered by name.
func (a *LibraryArtifact) SortedComponents() []*Component {
	comps := make([]*Component, 0, len(a.Components))
	for _, c := range a.Components {
		comps = append(comps, c)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].Name < comps[j].Name })
	return comps
}

func (a *LibraryArtifact) clone() *LibraryArtifact {
	c := &LibraryArtifact{
		Library:    a.Library,
		Components: make(map[string]*Component, len(a.Components)),
		Errors:     make(map[string]error, len(a.Errors)),
	}
	for k, v := range a.Components {
		c.Components[k] = v
	}
	for k, v := range a.Errors {
		c.Errors[k] = v
	}
	return c
}

// LibrariesArtifact is the output of one libraries build, grouped by library.
type LibrariesArtifact struct {
	// Libraries keyed by library name.
	Libraries map[string]*LibraryArtifact

	// Order preserves the configured library order.
	Order []string
}

// clone copies the outer map; individual library artifacts are shared until
// an incremental rebuild replaces the affected one.
func (a *LibrariesArtifact) clone() *LibrariesArtifact {
	c := &LibrariesArtifact{
		Libraries: make(map[string]*LibraryArtifact, len(a.Libraries)),
		Order:     append([]string(nil), a.Order...),
	}
	for k, v := range a.Libraries {
		c.Libraries[k] = v
	}
	return c
}

// NavEntry is one node of the navigation tree.
type NavEntry struct {
	Label    string      `yaml:"label"`
	Route    string      `yaml:"route,omitempty"`
	Children []*NavEntry `yaml:"children,omitempty"`
}

// NavArtifact is the ordered navigation tree derived from the docs and
// libraries artifacts.
type NavArtifact struct {
	Entries []*NavEntry `yaml:"entries"`
}

var titleCaser = cases.Title(language.English)

// titleize turns a file or directory name into a human label:
// "getting-started" -> "Getting Started".
func titleize(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return titleCaser.String(name)
}
