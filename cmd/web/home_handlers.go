package main

import (
	"html/template"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"mercadoluz.com/storefront/internal/catalog"
	"mercadoluz.com/storefront/internal/format"
	handlersPkg "mercadoluz.com/storefront/internal/handlers"
	mw "mercadoluz.com/storefront/internal/middleware"
	"mercadoluz.com/storefront/internal/nav"
	"mercadoluz.com/storefront/internal/reveal"
	"mercadoluz.com/storefront/internal/seo"
)

// productView is the template model for one catalog card.
type productView struct {
	ID          int64
	Title       string
	Description template.HTML
	Price       float64
	PriceLabel  string
	Image       string
}

// shopView is the template model for the product grid section.
type shopView struct {
	Lang        string
	Products    []productView
	Unavailable bool
	Apology     string
	CSRFToken   string
	Revealed    map[int64]bool
}

// revealView carries scroll-reveal state for the page sections.
type revealView struct {
	Threshold float64
	Sections  map[string]bool
}

var revealSections = []string{"hero", "productos", "contacto"}

func cardRevealKey(id int64) string {
	return "producto-" + strconv.FormatInt(id, 10)
}

func buildShopView(r *http.Request, lang, csrfToken string) shopView {
	view := shopView{
		Lang:      lang,
		Apology:   i18nOrDefault(lang, "shop.unavailable", "Lo sentimos, no pudimos cargar los productos."),
		CSRFToken: csrfToken,
		Revealed:  map[int64]bool{},
	}
	products, err := catalogSource.Fetch(r.Context())
	if err != nil {
		logger.Warn("catalog fetch", zap.Error(err))
		view.Unavailable = true
		return view
	}
	sess := mw.GetSession(r)
	for _, p := range products {
		view.Revealed[p.ID] = revealed.Visible(sess.ID, cardRevealKey(p.ID))
		view.Products = append(view.Products, productView{
			ID:          p.ID,
			Title:       catalog.SafeTitle(p.Title),
			Description: catalog.RenderDescription(p.Description),
			Price:       p.Price,
			PriceLabel:  format.FmtPrice(p.Price),
			Image:       p.Image,
		})
	}
	return view
}

func buildRevealView(sessionID string) revealView {
	view := revealView{Threshold: reveal.Threshold, Sections: map[string]bool{}}
	for _, key := range revealSections {
		view.Sections[key] = revealed.Visible(sessionID, key)
	}
	return view
}

// HomeHandler renders the storefront landing page: hero, product grid,
// cart panel and contact call to action.
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)
	lines, err := cartSvc.Get(r.Context(), sess.CartKey)
	if err != nil {
		logger.Warn("cart load", zap.Error(err))
	}

	shop := buildShopView(r, lang, sess.CSRFToken)
	title := i18nOrDefault(lang, "home.title", "Mercado Luz")

	vm := handlersPkg.PageData{
		Title:       title,
		Lang:        lang,
		Path:        r.URL.Path,
		Nav:         nav.Build(r.URL.Path),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path),
		Analytics:   handlersPkg.LoadAnalyticsFromEnv(),
		Shop:        shop,
		Cart:        buildCartView(lang, lines, sess.CSRFToken),
		Reveal:      buildRevealView(sess.ID),
		Toast:       toastState(sess.ID),
	}
	brand := i18nOrDefault(lang, "brand.name", "Mercado Luz")
	vm.SEO.Title = title
	vm.SEO.Description = i18nOrDefault(lang, "home.description", "Productos seleccionados con envío a todo el país.")
	vm.SEO.Canonical = absoluteURL(r)
	vm.SEO.OG.SiteName = brand
	vm.SEO.OG.Title = title
	vm.SEO.OG.Type = "website"
	vm.SEO.JSONLD = append(vm.SEO.JSONLD, template.JS(seo.JSON(seo.Organization(brand, absoluteURL(r), ""))))
	vm.SEO.JSONLD = append(vm.SEO.JSONLD, template.JS(seo.JSON(seo.WebSite(brand, absoluteURL(r), ""))))
	for _, p := range shop.Products {
		vm.SEO.JSONLD = append(vm.SEO.JSONLD, template.JS(seo.JSON(seo.Product(p.Title, "", "", p.Image, p.Price))))
	}

	renderPage(w, r, "home", vm)
}

// ProductsFrag renders the product grid fragment for htmx swaps.
func ProductsFrag(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)
	renderTemplate(w, r, "frag_products", buildShopView(r, lang, sess.CSRFToken))
}

// RevealMarkHandler records sections the visitor has scrolled into view.
// Reveals are one-shot per session: a section never returns to hidden.
func RevealMarkHandler(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	keys := r.PostForm["section"]
	if len(keys) == 0 {
		http.Error(w, "missing section", http.StatusBadRequest)
		return
	}
	revealed.Mark(sess.ID, keys...)
	w.WriteHeader(http.StatusNoContent)
}
