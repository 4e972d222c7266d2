package main

import (
	"fmt"

	"mercadoluz.com/storefront/internal/cart"
	"mercadoluz.com/storefront/internal/format"
)

// cartLineView is the template model for a single cart row.
type cartLineView struct {
	ID            int64
	Name          string
	PriceLabel    string
	Quantity      int
	SubtotalLabel string
}

// cartView is the template model for the cart panel.
type cartView struct {
	Lang         string
	Lines        []cartLineView
	Empty        bool
	EmptyLabel   string
	TotalLabel   string
	Count        int
	CounterLabel string
	CSRFToken    string
}

func buildCartView(lang string, lines []cart.Line, csrfToken string) cartView {
	view := cartView{
		Lang:       lang,
		Empty:      len(lines) == 0,
		EmptyLabel: i18nOrDefault(lang, "cart.empty", "Tu carrito está vacío."),
		TotalLabel: format.FmtPrice(cart.Total(lines)),
		Count:      cart.Count(lines),
		CSRFToken:  csrfToken,
	}
	view.CounterLabel = fmt.Sprintf(i18nOrDefault(lang, "cart.counter", "Carrito (%d)"), view.Count)
	for _, l := range lines {
		view.Lines = append(view.Lines, cartLineView{
			ID:            l.ID,
			Name:          l.Name,
			PriceLabel:    format.FmtPrice(l.Price),
			Quantity:      l.Quantity,
			SubtotalLabel: format.FmtPrice(l.Subtotal()),
		})
	}
	return view
}
