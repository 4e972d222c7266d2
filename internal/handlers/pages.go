package handlers

import (
	"html/template"

	"mercadoluz.com/storefront/internal/nav"
)

// PageData is a generic view model for simple pages using the shared layout.
type PageData struct {
	Title     string
	Lang      string
	SEO       SEOData
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb

	// Optional per-page view model payloads
	Shop    any
	Cart    any
	Contact any
	Toast   any
	Reveal  any
}

// SEOData is a lightweight copy to avoid importing the seo package here.
type SEOData struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          struct {
		Title       string
		Description string
		Image       string
		Type        string
		URL         string
		SiteName    string
	}
	Twitter struct {
		Card  string
		Site  string
		Image string
	}
	Alternates []struct{ Href, Hreflang string }
	JSONLD     []template.JS
}
