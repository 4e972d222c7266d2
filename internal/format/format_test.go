package format

import (
    "testing"
    "time"
)

func TestFmtPrice(t *testing.T) {
    cases := map[float64]string{
        0:     "$0.00",
        9.9:   "$9.90",
        19.99: "$19.99",
        39.98: "$39.98",
    }
    for in, want := range cases {
        if got := FmtPrice(in); got != want {
            t.Fatalf("FmtPrice(%v) = %q, want %q", in, got, want)
        }
    }
}

func TestFmtDate(t *testing.T) {
    ts := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
    if got := FmtDate(ts, "es"); got != "15/08/2026" {
        t.Fatalf("es date = %q", got)
    }
    if got := FmtDate(ts, "en"); got != "Aug 15, 2026" {
        t.Fatalf("en date = %q", got)
    }
}
