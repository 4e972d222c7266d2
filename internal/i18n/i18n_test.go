package i18n

import "testing"

func TestResolveHonorsQValues(t *testing.T) {
    b, err := Load("../../locales", "es", []string{"es", "en"})
    if err != nil {
        t.Fatalf("load: %v", err)
    }
    got := b.Resolve("es;q=0.8, en;q=0.9")
    if got != "en" {
        t.Fatalf("expected en, got %s", got)
    }
}

func TestTFallsBackToDefaultLocale(t *testing.T) {
    b, err := Load("../../locales", "es", []string{"es", "en"})
    if err != nil {
        t.Fatalf("load: %v", err)
    }
    if got := b.T("en", "cart.empty"); got == "cart.empty" {
        t.Fatalf("expected translation for cart.empty, got key back")
    }
    if got := b.T("xx", "cart.empty"); got != b.T("es", "cart.empty") {
        t.Fatalf("unsupported locale should fall back to es, got %q", got)
    }
}
