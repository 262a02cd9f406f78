package services

import (
	"github.com/samber/lo"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shopspring/decimal"
)

// PriceSource says where a resolved unit price came from.
type PriceSource string

const (
	SourceSnapshot   PriceSource = "snapshot"
	SourceCatalog    PriceSource = "catalog-lookup"
	SourceUnresolved PriceSource = "unresolved"
)

// CatalogIndex maps product id to the current catalogue entry.
type CatalogIndex map[string]models.Product

// IndexCatalog keys products by id.
func IndexCatalog(products []models.Product) CatalogIndex {
	return lo.KeyBy(products, func(p models.Product) string { return p.ID })
}

// ResolveItemPrice applies the fallback policy: a positive snapshot price is
// trusted, otherwise the catalogue price is used, otherwise zero. It never
// fails.
func ResolveItemPrice(item models.OrderItem, catalog CatalogIndex) (decimal.Decimal, PriceSource) {
	if item.UnitPrice.IsPositive() {
		return item.UnitPrice, SourceSnapshot
	}
	if p, ok := catalog[item.ProductID]; ok {
		return p.Price, SourceCatalog
	}
	return decimal.Zero, SourceUnresolved
}

// ResolveOrderTotal sums resolved price × quantity. An order with no items
// totals zero; keeping a legacy stored total is the caller's call.
func ResolveOrderTotal(items []models.OrderItem, catalog CatalogIndex) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		price, source := ResolveItemPrice(it, catalog)
		metrics.PriceResolutions.WithLabelValues(string(source)).Inc()
		total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// DisplayTotal is the total shown to users: re-priced when the order has
// items, the stored total for legacy orders without items.
func DisplayTotal(o models.Order, catalog CatalogIndex) decimal.Decimal {
	if !o.HasItems() {
		return o.Total
	}
	return ResolveOrderTotal(o.Items, catalog)
}
