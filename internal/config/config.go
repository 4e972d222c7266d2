package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAddr           = ":8080"
	defaultCatalogBaseURL = "https://fakestoreapi.com"
	defaultCatalogLimit   = 6
	defaultTemplatesDir   = "templates"
	defaultLocalesDir     = "locales"
	defaultPublicDir      = "public"
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
)

// Config captures runtime configuration for the storefront, organised by concern.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Catalog CatalogConfig `yaml:"catalog"`
	Contact ContactConfig `yaml:"contact"`
	Cart    CartConfig    `yaml:"cart"`
	Dev     bool          `yaml:"dev"`

	TemplatesDir string `yaml:"templates_dir"`
	LocalesDir   string `yaml:"locales_dir"`
	PublicDir    string `yaml:"public_dir"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// CatalogConfig points at the upstream product API.
type CatalogConfig struct {
	BaseURL string `yaml:"base_url"`
	Limit   int    `yaml:"limit"`
}

// ContactConfig points at the form relay endpoint. An empty endpoint disables
// the relay and contact submissions report the error state.
type ContactConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// CartConfig selects the cart persistence backend. An empty Redis address
// keeps carts in process memory.
type CartConfig struct {
	RedisAddr string `yaml:"redis_addr"`
}

// Load reads the optional YAML config file, then applies environment
// overrides (MERCADO_*). A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := defaults()

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// fall through to env overrides
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	normalize(&cfg)
	return cfg, nil
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:         defaultAddr,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
			IdleTimeout:  defaultIdleTimeout,
		},
		Catalog: CatalogConfig{
			BaseURL: defaultCatalogBaseURL,
			Limit:   defaultCatalogLimit,
		},
		TemplatesDir: defaultTemplatesDir,
		LocalesDir:   defaultLocalesDir,
		PublicDir:    defaultPublicDir,
	}
}

func applyEnv(cfg *Config) {
	// Port resolution: prefer MERCADO_PORT, then Cloud Run's PORT.
	if port := firstEnv("MERCADO_PORT", "PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	if v := os.Getenv("MERCADO_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("MERCADO_CATALOG_URL"); v != "" {
		cfg.Catalog.BaseURL = v
	}
	if v := os.Getenv("MERCADO_CATALOG_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Catalog.Limit = n
		}
	}
	if v := os.Getenv("MERCADO_CONTACT_ENDPOINT"); v != "" {
		cfg.Contact.Endpoint = v
	}
	if v := os.Getenv("MERCADO_REDIS_ADDR"); v != "" {
		cfg.Cart.RedisAddr = v
	}
	if v := os.Getenv("MERCADO_TEMPLATES_DIR"); v != "" {
		cfg.TemplatesDir = v
	}
	if v := os.Getenv("MERCADO_LOCALES_DIR"); v != "" {
		cfg.LocalesDir = v
	}
	if v := os.Getenv("MERCADO_PUBLIC_DIR"); v != "" {
		cfg.PublicDir = v
	}
	if os.Getenv("MERCADO_DEV") != "" || os.Getenv("DEV") != "" {
		cfg.Dev = true
	}
}

func normalize(cfg *Config) {
	cfg.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Catalog.BaseURL), "/")
	cfg.Contact.Endpoint = strings.TrimSpace(cfg.Contact.Endpoint)
	if cfg.Catalog.Limit <= 0 {
		cfg.Catalog.Limit = defaultCatalogLimit
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if strings.TrimSpace(cfg.TemplatesDir) == "" {
		cfg.TemplatesDir = defaultTemplatesDir
	}
	if strings.TrimSpace(cfg.LocalesDir) == "" {
		cfg.LocalesDir = defaultLocalesDir
	}
	if strings.TrimSpace(cfg.PublicDir) == "" {
		cfg.PublicDir = defaultPublicDir
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
