package catalog

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	titlePolicy       = bluemonday.StrictPolicy()
	descriptionPolicy = bluemonday.UGCPolicy()
	markdown          = goldmark.New()
)

// SafeTitle strips any markup from an upstream product title, leaving plain
// text for templates.
func SafeTitle(title string) string {
	return strings.TrimSpace(titlePolicy.Sanitize(title))
}

// RenderDescription renders an upstream product description as markdown and
// sanitizes the result. Upstream content is untrusted; the sanitized HTML is
// safe to inject into the card body.
func RenderDescription(description string) template.HTML {
	description = strings.TrimSpace(description)
	if description == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(description), &buf); err != nil {
		// fall back to the sanitized raw text
		return template.HTML(descriptionPolicy.Sanitize(description))
	}
	return template.HTML(descriptionPolicy.SanitizeBytes(buf.Bytes()))
}
