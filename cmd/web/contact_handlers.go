package main

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"mercadoluz.com/storefront/internal/contact"
	"mercadoluz.com/storefront/internal/content"
	handlersPkg "mercadoluz.com/storefront/internal/handlers"
	mw "mercadoluz.com/storefront/internal/middleware"
	"mercadoluz.com/storefront/internal/nav"
	"mercadoluz.com/storefront/internal/seo"
)

// contactView is the template model for the contact page and form.
type contactView struct {
	Lang      string
	Intro     template.HTML
	CSRFToken string

	// Submission feedback
	Submitted bool
	Success   bool
	Status    string
	Reference string

	// Sticky form values on validation failure
	Name    string
	Email   string
	Message string
	Errors  map[string]string
}

// ContactHandler renders the contact page with localized intro copy.
func ContactHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)

	view := contactView{Lang: lang, CSRFToken: sess.CSRFToken}
	if page, err := contentStore.Get("contacto", lang); err == nil {
		view.Intro = page.Body
	} else if !errors.Is(err, content.ErrNotFound) {
		logger.Warn("contact copy", zap.Error(err))
	}

	lines, err := cartSvc.Get(r.Context(), sess.CartKey)
	if err != nil {
		logger.Warn("cart load", zap.Error(err))
	}

	title := i18nOrDefault(lang, "contact.title", "Contacto")
	vm := handlersPkg.PageData{
		Title:       title,
		Lang:        lang,
		Path:        r.URL.Path,
		Nav:         nav.Build(r.URL.Path),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path),
		Analytics:   handlersPkg.LoadAnalyticsFromEnv(),
		Contact:     view,
		Cart:        buildCartView(lang, lines, sess.CSRFToken),
	}
	brand := i18nOrDefault(lang, "brand.name", "Mercado Luz")
	vm.SEO.Title = title + " | " + brand
	vm.SEO.Description = i18nOrDefault(lang, "contact.description", "Escríbenos y te respondemos lo antes posible.")
	vm.SEO.Canonical = absoluteURL(r)
	vm.SEO.JSONLD = append(vm.SEO.JSONLD, template.JS(seo.JSON(seo.BreadcrumbList([]seo.BreadcrumbItem{
		{Name: i18nOrDefault(lang, "nav.home", "Inicio"), Item: "/"},
		{Name: title, Item: "/contacto"},
	}))))

	renderPage(w, r, "contact", vm)
}

// ContactSubmitHandler validates the form and relays it to the external
// endpoint. The response is the form fragment with status copy so htmx can
// swap it in place.
func ContactSubmitHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	view := contactView{
		Lang:      lang,
		CSRFToken: sess.CSRFToken,
		Name:      strings.TrimSpace(r.FormValue("name")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		Message:   strings.TrimSpace(r.FormValue("message")),
		Errors:    map[string]string{},
	}
	if view.Name == "" {
		view.Errors["name"] = i18nOrDefault(lang, "contact.error.name", "Ingresa tu nombre.")
	}
	if view.Email == "" || !strings.Contains(view.Email, "@") {
		view.Errors["email"] = i18nOrDefault(lang, "contact.error.email", "Ingresa un correo válido.")
	}
	if view.Message == "" {
		view.Errors["message"] = i18nOrDefault(lang, "contact.error.message", "Escribe tu mensaje.")
	}
	if len(view.Errors) > 0 {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnprocessableEntity)
		renderTemplate(w, r, "frag_contact_form", view)
		return
	}

	receipt, err := contactRelay.Submit(r.Context(), contact.Message{
		Name:  view.Name,
		Email: view.Email,
		Body:  view.Message,
	})
	view.Submitted = true
	switch {
	case err == nil:
		view.Success = true
		view.Reference = receipt.Reference
		view.Status = i18nOrDefault(lang, "contact.sent", "¡Gracias por tu mensaje! Nos pondremos en contacto pronto.")
		// clear the form on success
		view.Name, view.Email, view.Message = "", "", ""
	case errors.Is(err, contact.ErrUnreachable):
		logger.Warn("contact relay", zap.Error(err))
		view.Status = i18nOrDefault(lang, "contact.unreachable", "Error de conexión. Verifica tu red.")
	default:
		logger.Warn("contact relay", zap.Error(err))
		view.Status = i18nOrDefault(lang, "contact.failed", "Hubo un error al enviar el formulario. Por favor, inténtalo de nuevo.")
	}
	renderTemplate(w, r, "frag_contact_form", view)
}
