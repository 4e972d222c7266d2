package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mercadoluz.com/storefront/internal/cart"
	handlersPkg "mercadoluz.com/storefront/internal/handlers"
	mw "mercadoluz.com/storefront/internal/middleware"
	"mercadoluz.com/storefront/internal/nav"
)

// CartHandler renders the cart page.
func CartHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)
	lines, err := cartSvc.Get(r.Context(), sess.CartKey)
	if err != nil {
		logger.Warn("cart load", zap.Error(err))
	}
	view := buildCartView(lang, lines, sess.CSRFToken)
	title := i18nOrDefault(lang, "cart.title", "Tu carrito")

	vm := handlersPkg.PageData{
		Title:       title,
		Lang:        lang,
		Path:        r.URL.Path,
		Nav:         nav.Build(r.URL.Path),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path),
		Analytics:   handlersPkg.LoadAnalyticsFromEnv(),
		Cart:        view,
		Toast:       toastState(sess.ID),
	}
	brand := i18nOrDefault(lang, "brand.name", "Mercado Luz")
	vm.SEO.Title = title + " | " + brand
	vm.SEO.Description = i18nOrDefault(lang, "cart.description", "Revisa los productos de tu carrito antes de pagar.")
	vm.SEO.Canonical = absoluteURL(r)

	renderPage(w, r, "cart", vm)
}

// CartPanelFrag renders the cart panel fragment for htmx swaps.
func CartPanelFrag(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)
	lines, err := cartSvc.Get(r.Context(), sess.CartKey)
	if err != nil {
		logger.Warn("cart load", zap.Error(err))
	}
	renderTemplate(w, r, "frag_cart_panel", buildCartView(lang, lines, sess.CSRFToken))
}

// CartAddHandler adds a catalog product to the session cart. The name and
// price stored are the catalog's at the time of the first add; later adds of
// the same product only bump the quantity.
func CartAddHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid product", http.StatusBadRequest)
		return
	}

	products, err := catalogSource.Fetch(r.Context())
	if err != nil {
		logger.Warn("catalog fetch", zap.Error(err))
		http.Error(w, i18nOrDefault(lang, "shop.unavailable", "Lo sentimos, no pudimos cargar los productos."), http.StatusBadGateway)
		return
	}
	var found bool
	var name string
	var price float64
	for _, p := range products {
		if p.ID == id {
			found = true
			name = p.Title
			price = p.Price
			break
		}
	}
	if !found {
		http.Error(w, "unknown product", http.StatusNotFound)
		return
	}

	lines, err := cartSvc.Add(r.Context(), sess.CartKey, id, name, price)
	if err != nil {
		cartError(w, r, err)
		return
	}

	toasts.Publish(sess.ID, fmt.Sprintf(i18nOrDefault(lang, "cart.toast.added", "✅ \"%s\" añadido al carrito."), name))
	renderCartUpdate(w, r, lang, sess, lines)
}

// CartIncreaseHandler bumps the quantity of a cart line by one.
func CartIncreaseHandler(w http.ResponseWriter, r *http.Request) {
	adjustCart(w, r, cart.ActionIncrease)
}

// CartDecreaseHandler lowers the quantity by one; reaching zero removes the line.
func CartDecreaseHandler(w http.ResponseWriter, r *http.Request) {
	adjustCart(w, r, cart.ActionDecrease)
}

// CartRemoveHandler drops a line from the cart regardless of quantity.
func CartRemoveHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product", http.StatusBadRequest)
		return
	}
	lines, err := cartSvc.Remove(r.Context(), sess.CartKey, id)
	if err != nil {
		cartError(w, r, err)
		return
	}
	renderCartUpdate(w, r, lang, sess, lines)
}

func adjustCart(w http.ResponseWriter, r *http.Request, action cart.Action) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product", http.StatusBadRequest)
		return
	}
	lines, err := cartSvc.AdjustQuantity(r.Context(), sess.CartKey, id, action)
	if err != nil {
		cartError(w, r, err)
		return
	}
	renderCartUpdate(w, r, lang, sess, lines)
}

// CheckoutHandler is a stub: it acknowledges the request without charging.
func CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	sess := mw.GetSession(r)
	lines, err := cartSvc.Get(r.Context(), sess.CartKey)
	if err != nil {
		logger.Warn("cart load", zap.Error(err))
	}
	if len(lines) == 0 {
		toasts.Publish(sess.ID, i18nOrDefault(lang, "cart.empty", "Tu carrito está vacío."))
	} else {
		toasts.Publish(sess.ID, i18nOrDefault(lang, checkoutNotice, "¡Procesando pago! (Esta función aún está en desarrollo)"))
	}
	renderCartUpdate(w, r, lang, sess, lines)
}

// ToastFrag renders the currently visible toast, if any.
func ToastFrag(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	renderTemplate(w, r, "frag_toast", toastState(sess.ID))
}

func toastState(sessionID string) map[string]any {
	message, visible := toasts.Current(sessionID)
	return map[string]any{
		"Visible": visible,
		"Message": message,
	}
}

// renderCartUpdate writes the cart panel plus out-of-band counter and toast
// swaps so a single response refreshes every cart surface on the page.
func renderCartUpdate(w http.ResponseWriter, r *http.Request, lang string, sess *mw.SessionData, lines []cart.Line) {
	view := buildCartView(lang, lines, sess.CSRFToken)
	message, visible := toasts.Current(sess.ID)
	renderTemplate(w, r, "frag_cart_update", map[string]any{
		"Cart":         view,
		"ToastVisible": visible,
		"ToastMessage": message,
	})
}

func cartError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Warn("cart operation", zap.Error(err))
	switch {
	case errors.Is(err, cart.ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	case errors.Is(err, cart.ErrUnavailable):
		http.Error(w, "cart unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
