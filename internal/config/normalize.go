package config

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// NormalizationResult captures adjustments and warnings from the
// normalization pass.
type NormalizationResult struct{ Warnings []string }

// Normalize canonicalizes enumerated and bounded fields in place after
// defaults are applied. Coercions are reported, not failed.
func Normalize(c *Config) *NormalizationResult {
	res := &NormalizationResult{}
	if c == nil {
		return res
	}

	c.DocsDir = strings.TrimSpace(c.DocsDir)
	c.Output.Dir = strings.TrimSpace(c.Output.Dir)

	// Base path is always absolute with no trailing slash (except root).
	bp := strings.TrimSpace(c.Site.BasePath)
	if bp == "" {
		bp = "/"
	}
	if !strings.HasPrefix(bp, "/") {
		bp = "/" + bp
	}
	if cleaned := path.Clean(bp); cleaned != bp {
		res.Warnings = append(res.Warnings, warnChanged("site.base_path", bp, cleaned))
		bp = cleaned
	}
	c.Site.BasePath = bp

	if c.Watch.Debounce < 0 {
		res.Warnings = append(res.Warnings, warnChanged("watch.debounce", c.Watch.Debounce, 0))
		c.Watch.Debounce = 0
	}
	if c.Watch.FullRebuildInterval < 0 {
		res.Warnings = append(res.Warnings, warnChanged("watch.full_rebuild_interval", c.Watch.FullRebuildInterval, 0))
		c.Watch.FullRebuildInterval = 0
	}
	if c.Watch.FullRebuildInterval > 0 && c.Watch.FullRebuildInterval < time.Second {
		res.Warnings = append(res.Warnings, warnChanged("watch.full_rebuild_interval", c.Watch.FullRebuildInterval, time.Second))
		c.Watch.FullRebuildInterval = time.Second
	}

	for i := range c.Libraries {
		c.Libraries[i].Name = strings.TrimSpace(c.Libraries[i].Name)
		c.Libraries[i].Path = strings.TrimSpace(c.Libraries[i].Path)
		for j, ext := range c.Libraries[i].Include {
			if !strings.HasPrefix(ext, ".") {
				c.Libraries[i].Include[j] = "." + ext
			}
		}
	}
	return res
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("%s: coerced %v -> %v", field, from, to)
}
