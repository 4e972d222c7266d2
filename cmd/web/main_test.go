package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"mercadoluz.com/storefront/internal/cart"
	cartstore "mercadoluz.com/storefront/internal/cart/store"
	"mercadoluz.com/storefront/internal/catalog"
	"mercadoluz.com/storefront/internal/contact"
	"mercadoluz.com/storefront/internal/content"
	"mercadoluz.com/storefront/internal/i18n"
	mw "mercadoluz.com/storefront/internal/middleware"
	"mercadoluz.com/storefront/internal/notify"
	"mercadoluz.com/storefront/internal/reveal"
	"mercadoluz.com/storefront/internal/testutil"
)

const fakeCatalogJSON = `[
  {"id": 1, "title": "Lámpara de mesa", "price": 19.99, "image": "/img/1.jpg", "description": "Luz cálida"},
  {"id": 2, "title": "Velador artesanal", "price": 34.5, "image": "/img/2.jpg", "description": ""}
]`

func newFakeCatalog(t *testing.T, status int, payload string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status >= 400 {
			http.Error(w, "upstream down", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newTestRouter builds a router identical to main()'s, backed by test doubles.
func newTestRouter(t *testing.T, catalogURL, contactURL string) http.Handler {
	t.Helper()
	devMode = true
	templatesDir = "../../templates"
	publicDir = "../../public"
	if _, err := parseTemplates(); err != nil {
		t.Fatalf("parseTemplates failed: %v", err)
	}
	logger = zap.NewNop()
	var err error
	i18nBundle, err = i18n.Load("../../locales", "es", []string{"es", "en"})
	if err != nil {
		t.Fatalf("load i18n: %v", err)
	}
	catalogSource = catalog.NewClient(catalogURL, 6)
	cartSvc, err = cart.NewService(cart.ServiceDeps{Store: cartstore.NewMemory(), Logger: logger})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	toasts = notify.NewCenter(time.Now)
	revealed = reveal.NewTracker()
	contactRelay = contact.NewSubmitter(contactURL)
	contentStore = content.NewStore("../../content", "es")
	return newRouter()
}

// bootstrapSession GETs / and returns the csrf and session cookie values.
func bootstrapSession(t *testing.T, srv http.Handler) (csrf, session string) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "es")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case "csrf_token":
			csrf = c.Value
		case "MERCADO_SESSION":
			session = c.Value
		}
	}
	if csrf == "" || session == "" {
		t.Fatalf("expected csrf and session cookies, got csrf=%q session=%q", csrf, session)
	}
	return csrf, session
}

func postForm(srv http.Handler, path, csrf, session string, form url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(http.MethodPost, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-CSRF-Token", csrf)
	req.Header.Set("Cookie", "csrf_token="+csrf+"; MERCADO_SESSION="+session)
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzOK(t *testing.T) {
	cat := newFakeCatalog(t, http.StatusOK, fakeCatalogJSON)
	srv := newTestRouter(t, cat.URL, "")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "ok" {
		t.Fatalf("expected body 'ok', got %q", got)
	}
}

func TestHomeRendersCatalog(t *testing.T) {
	cat := newFakeCatalog(t, http.StatusOK, fakeCatalogJSON)
	srv := newTestRouter(t, cat.URL, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "es")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}

	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	if n := doc.Find("#productos .product-card").Length(); n != 2 {
		t.Fatalf("expected 2 product cards, got %d", n)
	}
	if txt := doc.Find("#productos").Text(); !strings.Contains(txt, "Lámpara de mesa") {
		t.Fatalf("expected product title in grid, got %q", txt)
	}
	if txt := doc.Find("#productos .price").First().Text(); txt != "$19.99" {
		t.Fatalf("expected formatted price $19.99, got %q", txt)
	}
	if txt := doc.Find("#cart-button").Text(); txt != "Carrito (0)" {
		t.Fatalf("expected empty counter, got %q", txt)
	}
	if txt := doc.Find("#empty-cart-message").Text(); txt != "Tu carrito está vacío." {
		t.Fatalf("expected empty cart message, got %q", txt)
	}
}

func TestHomeCatalogFailureShowsApology(t *testing.T) {
	cat := newFakeCatalog(t, http.StatusBadGateway, "")
	srv := newTestRouter(t, cat.URL, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "es")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Lo sentimos, no pudimos cargar los productos.") {
		t.Fatalf("expected apology message in body; body=%s", body)
	}
	if strings.Contains(body, "product-card") {
		t.Fatalf("expected no product cards on failure; body=%s", body)
	}
}

func TestCartLifecycle(t *testing.T) {
	cat := newFakeCatalog(t, http.StatusOK, fakeCatalogJSON)
	srv := newTestRouter(t, cat.URL, "")
	csrf, session := bootstrapSession(t, srv)

	// Add product 1: counter shows one item and the toast names it.
	rec := postForm(srv, "/cart/items", csrf, session, url.Values{"product_id": {"1"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("add expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	if txt := doc.Find("#cart-button").Text(); txt != "Carrito (1)" {
		t.Fatalf("expected counter Carrito (1), got %q", txt)
	}
	toast := doc.Find("#notification-toast").Text()
	if !strings.Contains(toast, "Lámpara de mesa") || !strings.Contains(toast, "añadido al carrito") {
		t.Fatalf("expected add toast, got %q", toast)
	}

	// Add the same product again: quantities merge into one line.
	rec = postForm(srv, "/cart/items", csrf, session, url.Values{"product_id": {"1"}})
	doc = testutil.ParseHTML(t, rec.Body.Bytes())
	if txt := doc.Find("#cart-button").Text(); txt != "Carrito (2)" {
		t.Fatalf("expected counter Carrito (2), got %q", txt)
	}
	if n := doc.Find(".cart-item").Length(); n != 1 {
		t.Fatalf("expected single merged line, got %d", n)
	}
	if txt := doc.Find(".cart-item .item-details").Text(); !strings.Contains(txt, "$19.99 x 2 = $39.98") {
		t.Fatalf("expected subtotal line, got %q", txt)
	}
	if txt := doc.Find("#cart-total").Text(); txt != "$39.98" {
		t.Fatalf("expected total $39.98, got %q", txt)
	}

	// Decrease twice: the line disappears and the cart reports empty.
	rec = postForm(srv, "/cart/items/1/decrease", csrf, session, nil)
	doc = testutil.ParseHTML(t, rec.Body.Bytes())
	if txt := doc.Find("#cart-button").Text(); txt != "Carrito (1)" {
		t.Fatalf("expected counter Carrito (1) after decrease, got %q", txt)
	}
	rec = postForm(srv, "/cart/items/1/decrease", csrf, session, nil)
	doc = testutil.ParseHTML(t, rec.Body.Bytes())
	if txt := doc.Find("#cart-button").Text(); txt != "Carrito (0)" {
		t.Fatalf("expected counter Carrito (0), got %q", txt)
	}
	if txt := doc.Find("#empty-cart-message").Text(); txt != "Tu carrito está vacío." {
		t.Fatalf("expected empty cart message, got %q", txt)
	}

	// Adjusting or removing a product that is not in the cart is a no-op.
	rec = postForm(srv, "/cart/items/99/decrease", csrf, session, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown-id decrease expected 200, got %d", rec.Code)
	}
	rec = postForm(srv, "/cart/items/99/remove", csrf, session, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown-id remove expected 200, got %d", rec.Code)
	}
	doc = testutil.ParseHTML(t, rec.Body.Bytes())
	if txt := doc.Find("#cart-button").Text(); txt != "Carrito (0)" {
		t.Fatalf("expected counter to stay at Carrito (0), got %q", txt)
	}
}

func TestCartAddUnknownProduct(t *testing.T) {
	cat := newFakeCatalog(t, http.StatusOK, fakeCatalogJSON)
	srv := newTestRouter(t, cat.URL, "")
	csrf, session := bootstrapSession(t, srv)

	rec := postForm(srv, "/cart/items", csrf, session, url.Values{"product_id": {"42"}})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", rec.Code)
	}
}

func TestCheckoutStub(t *testing.T) {
	cat := newFakeCatalog(t, http.StatusOK, fakeCatalogJSON)
	srv := newTestRouter(t, cat.URL, "")
	csrf, session := bootstrapSession(t, srv)

	// Empty cart: checkout nudges instead of pretending to pay.
	rec := postForm(srv, "/checkout", csrf, session, nil)
	doc := testutil.ParseHTML(t, rec.Body.Bytes())
	if txt := doc.Find("#notification-toast").Text(); !strings.Contains(txt, "Tu carrito está vacío.") {
		t.Fatalf("expected empty-cart toast, got %q", txt)
	}

	// With items: the stub acknowledges without charging.
	postForm(srv, "/cart/items", csrf, session, url.Values{"product_id": {"2"}})
	rec = postForm(srv, "/checkout", csrf, session, nil)
	doc = testutil.ParseHTML(t, rec.Body.Bytes())
	toast := doc.Find("#notification-toast").Text()
	if !strings.Contains(toast, "¡Procesando pago!") || !strings.Contains(toast, "desarrollo") {
		t.Fatalf("expected processing toast, got %q", toast)
	}
	// The cart is left untouched.
	if txt := doc.Find("#cart-button").Text(); txt != "Carrito (1)" {
		t.Fatalf("expected cart preserved after checkout stub, got %q", txt)
	}
}

func TestContactSubmitRelaysForm(t *testing.T) {
	cat := newFakeCatalog(t, http.StatusOK, fakeCatalogJSON)
	var gotForm url.Values
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer relay.Close()

	srv := newTestRouter(t, cat.URL, relay.URL)
	csrf, session := bootstrapSession(t, srv)

	rec := postForm(srv, "/contact", csrf, session, url.Values{
		"name":    {"Ana"},
		"email":   {"ana@example.com"},
		"message": {"Hola, tengo una consulta."},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "¡Gracias por tu mensaje!") {
		t.Fatalf("expected success status in body; body=%s", rec.Body.String())
	}
	if gotForm.Get("name") != "Ana" || gotForm.Get("message") != "Hola, tengo una consulta." {
		t.Fatalf("expected relayed form values, got %v", gotForm)
	}
}

func TestContactSubmitValidation(t *testing.T) {
	cat := newFakeCatalog(t, http.StatusOK, fakeCatalogJSON)
	srv := newTestRouter(t, cat.URL, "")
	csrf, session := bootstrapSession(t, srv)

	rec := postForm(srv, "/contact", csrf, session, url.Values{
		"name":    {""},
		"email":   {"not-an-email"},
		"message": {"hola"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Ingresa tu nombre.") || !strings.Contains(body, "Ingresa un correo válido.") {
		t.Fatalf("expected field errors in body; body=%s", body)
	}
	// sticky message value survives the round trip
	if !strings.Contains(body, "hola") {
		t.Fatalf("expected sticky message value; body=%s", body)
	}
}

func TestContactSubmitUnreachableRelay(t *testing.T) {
	cat := newFakeCatalog(t, http.StatusOK, fakeCatalogJSON)
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	relay.Close()

	srv := newTestRouter(t, cat.URL, relay.URL)
	csrf, session := bootstrapSession(t, srv)

	rec := postForm(srv, "/contact", csrf, session, url.Values{
		"name":    {"Ana"},
		"email":   {"ana@example.com"},
		"message": {"hola"},
	})
	if !strings.Contains(rec.Body.String(), "Error de conexión. Verifica tu red.") {
		t.Fatalf("expected connection error status; body=%s", rec.Body.String())
	}
}

func TestRevealMarkPersistsAcrossLoads(t *testing.T) {
	cat := newFakeCatalog(t, http.StatusOK, fakeCatalogJSON)
	srv := newTestRouter(t, cat.URL, "")
	csrf, session := bootstrapSession(t, srv)

	rec := postForm(srv, "/reveal", csrf, session, url.Values{"section": {"hero"}})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d; body=%s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", "csrf_token="+csrf+"; MERCADO_SESSION="+session)
	home := httptest.NewRecorder()
	srv.ServeHTTP(home, req)
	doc := testutil.ParseHTML(t, home.Body.Bytes())
	if !doc.Find("#hero").HasClass("visible") {
		t.Fatalf("expected hero section to stay revealed")
	}
	if doc.Find("#contacto").HasClass("visible") {
		t.Fatalf("expected unmarked section to stay hidden")
	}
}

func TestHTMXPostRequiresCSRF(t *testing.T) {
	cat := newFakeCatalog(t, http.StatusOK, fakeCatalogJSON)
	srv := newTestRouter(t, cat.URL, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader("product_id=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for missing CSRF, got %d; body=%s", rec.Code, rec.Body.String())
	}
}

func TestSessionMiddlewareSetsCookie(t *testing.T) {
	h := mw.Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var seen bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "MERCADO_SESSION" {
			seen = true
			break
		}
	}
	if !seen {
		t.Fatalf("expected MERCADO_SESSION cookie to be set, got %v", rec.Result().Header["Set-Cookie"])
	}
}
