package main

import (
	"context"
	"flag"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mercadoluz.com/storefront/internal/cart"
	cartstore "mercadoluz.com/storefront/internal/cart/store"
	"mercadoluz.com/storefront/internal/catalog"
	"mercadoluz.com/storefront/internal/config"
	"mercadoluz.com/storefront/internal/contact"
	"mercadoluz.com/storefront/internal/content"
	"mercadoluz.com/storefront/internal/format"
	"mercadoluz.com/storefront/internal/i18n"
	mw "mercadoluz.com/storefront/internal/middleware"
	"mercadoluz.com/storefront/internal/notify"
	"mercadoluz.com/storefront/internal/observability"
	"mercadoluz.com/storefront/internal/reveal"
)

var (
	templatesDir = "templates"
	publicDir    = "public"
	// devMode is set in main() based on env: MERCADO_DEV (preferred) or DEV (fallback)
	devMode   bool
	tmplCache *template.Template

	i18nBundle *i18n.Bundle
	logger     *zap.Logger

	catalogSource  productSource
	cartSvc        *cart.Service
	toasts         *notify.Center
	revealed       *reveal.Tracker
	contactRelay   *contact.Submitter
	contentStore   *content.Store
	checkoutNotice = "checkout.processing"
)

// productSource is what the shop handlers need from the catalog layer.
type productSource interface {
	Fetch(ctx context.Context) ([]catalog.Product, error)
}

func main() {
	var (
		addr     string
		cfgPath  string
		tmplPath string
		pubPath  string
	)
	flag.StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	flag.StringVar(&cfgPath, "config", os.Getenv("MERCADO_CONFIG"), "config file path")
	flag.StringVar(&tmplPath, "templates", templatesDir, "templates directory")
	flag.StringVar(&pubPath, "public", publicDir, "public assets directory")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err = observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	templatesDir = tmplPath
	if cfg.TemplatesDir != "" && tmplPath == "templates" {
		templatesDir = cfg.TemplatesDir
	}
	publicDir = pubPath
	if cfg.PublicDir != "" && pubPath == "public" {
		publicDir = cfg.PublicDir
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	// Dev mode: prefer MERCADO_DEV, fallback to DEV
	devMode = cfg.Dev || os.Getenv("MERCADO_DEV") != "" || os.Getenv("DEV") != ""

	if !devMode {
		// Parse templates once in production
		tc, err := parseTemplates()
		if err != nil {
			logger.Fatal("parse templates", zap.Error(err))
		}
		tmplCache = tc
	}

	i18nBundle, err = i18n.Load(cfg.LocalesDir, "es", []string{"es", "en"})
	if err != nil {
		logger.Fatal("load locales", zap.Error(err))
	}

	catalogSource = catalog.NewCache(catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Limit), 2*time.Minute)

	var store cart.Store
	if cfg.Cart.RedisAddr != "" {
		store = cartstore.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.Cart.RedisAddr}))
		logger.Info("cart store", zap.String("kind", "redis"), zap.String("addr", cfg.Cart.RedisAddr))
	} else {
		store = cartstore.NewMemory()
		logger.Info("cart store", zap.String("kind", "memory"))
	}
	cartSvc, err = cart.NewService(cart.ServiceDeps{Store: store, Logger: logger})
	if err != nil {
		logger.Fatal("cart service", zap.Error(err))
	}

	toasts = notify.NewCenter(time.Now)
	revealed = reveal.NewTracker()
	contactRelay = contact.NewSubmitter(cfg.Contact.Endpoint)
	contentStore = content.NewStore("content", "es")

	r := newRouter()

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	logger.Info("web listening", zap.String("addr", addr), zap.Bool("dev", devMode))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("listen", zap.Error(err))
	}
}

func newRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP. Ensure only trusted proxies
	// can set these headers in production environments.
	r.Use(chimw.RealIP)
	r.Use(mw.HTMX)
	r.Use(mw.Session)
	r.Use(mw.Locale(i18nBundle))
	r.Use(mw.CSRF)
	r.Use(mw.VaryLocale)
	r.Use(mw.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Static assets under /assets/
	assets := http.StripPrefix("/assets", mw.AssetsWithCache(filepath.Join(publicDir, "assets"), "/assets"))
	r.Handle("/assets/*", assets)

	r.Get("/", HomeHandler)
	r.Get("/fragments/products", ProductsFrag)

	r.Get("/carrito", CartHandler)
	r.Get("/fragments/cart", CartPanelFrag)
	r.Get("/fragments/toast", ToastFrag)
	r.Post("/cart/items", CartAddHandler)
	r.Post("/cart/items/{productID}/increase", CartIncreaseHandler)
	r.Post("/cart/items/{productID}/decrease", CartDecreaseHandler)
	r.Post("/cart/items/{productID}/remove", CartRemoveHandler)
	r.Post("/checkout", CheckoutHandler)

	r.Get("/contacto", ContactHandler)
	r.Post("/contact", ContactSubmitHandler)

	r.Post("/reveal", RevealMarkHandler)

	return r
}

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"now":      time.Now,
		"fmtPrice": format.FmtPrice,
		"t": func(lang, key string) string {
			if i18nBundle == nil {
				return key
			}
			return i18nBundle.T(lang, key)
		},
	}
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesDir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

func lookupTemplates(w http.ResponseWriter) *template.Template {
	if devMode {
		tc, err := parseTemplates()
		if err != nil {
			http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
			return nil
		}
		return tc
	}
	if tmplCache == nil {
		http.Error(w, "template not initialized", http.StatusInternalServerError)
		return nil
	}
	return tmplCache
}

// renderPage executes the base layout with the given page template name.
func renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	t := lookupTemplates(w)
	if t == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
	}
}

// renderTemplate executes a named fragment template without the layout.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	t := lookupTemplates(w)
	if t == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
	}
}

func i18nOrDefault(lang, key, fallback string) string {
	if i18nBundle == nil {
		return fallback
	}
	if v := i18nBundle.T(lang, key); v != key {
		return v
	}
	return fallback
}

func absoluteURL(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil && (r.Host == "" || strings.HasPrefix(r.Host, "localhost") || strings.HasPrefix(r.Host, "127.")) {
		scheme = "http"
	}
	return scheme + "://" + r.Host + r.URL.Path
}
