package format

import (
    "fmt"
    "strings"
    "time"
)

// Price formats a dollar amount for display.
// Example: FmtPrice(9.9) => "$9.90"
func FmtPrice(amount float64) string {
    return fmt.Sprintf("$%.2f", amount)
}

// Date formats time in a locale-friendly short form.
func FmtDate(t time.Time, lang string) string {
    switch strings.ToLower(lang) {
    case "es":
        return t.Format("02/01/2006")
    default:
        return t.Format("Jan 2, 2006")
    }
}
