package catalog

// Product is a catalog record fetched from the upstream store API. Products
// are read-only and never persisted locally; the cart keeps its own name and
// price snapshots.
type Product struct {
	ID          int64
	Title       string
	Price       float64
	Image       string
	Description string
}
