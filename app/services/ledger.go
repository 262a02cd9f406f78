package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auditlog"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/record"
	"github.com/shopspring/decimal"
)

// stockAttempts bounds the re-read/retry loop of the stock decrement when
// the product changed underneath us.
const stockAttempts = 3

// Notifier publishes fire-and-forget notifications. *queue.Queue
// implements it.
type Notifier interface {
	Publish(ctx context.Context, kind, body string) error
}

// StockAdjustmentError is returned by Place when the order was stored but
// the product stock could not be decremented. Order holds the stored order.
type StockAdjustmentError struct {
	Order     models.Order
	ProductID string
	Err       error
}

func (e *StockAdjustmentError) Error() string {
	return fmt.Sprintf("order %s placed but stock of product %s not adjusted: %v", e.Order.ID, e.ProductID, e.Err)
}

func (e *StockAdjustmentError) Unwrap() error { return e.Err }

// OrderFilter narrows an order listing. Zero values mean "no filter".
type OrderFilter struct {
	// Search is a case-insensitive substring of the order id or customer id.
	Search string
	// Status is compared case-insensitively.
	Status string
	// From is inclusive. To includes the whole calendar day it falls on.
	From     mo.Option[time.Time]
	To       mo.Option[time.Time]
	Page     int
	PageSize int
}

// Match reports whether o passes every set filter.
func (f OrderFilter) Match(o models.Order) bool {
	if q := strings.TrimSpace(f.Search); q != "" {
		q = strings.ToLower(q)
		if !strings.Contains(strings.ToLower(o.ID), q) && !strings.Contains(strings.ToLower(o.CustomerID), q) {
			return false
		}
	}
	if s := strings.TrimSpace(f.Status); s != "" && !strings.EqualFold(o.Status, s) {
		return false
	}
	if from, ok := f.From.Get(); ok && o.OrderedAt.Before(from) {
		return false
	}
	if to, ok := f.To.Get(); ok {
		end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()).Add(24 * time.Hour)
		if !o.OrderedAt.Before(end) {
			return false
		}
	}
	return true
}

// OrderView is an order plus the total shown to users.
type OrderView struct {
	models.Order
	DisplayTotal decimal.Decimal `json:"displayTotal"`
}

// Ledger is the read/write façade over orders used by both the customer
// and the admin flows.
type Ledger struct {
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
	notify   Notifier
	audit    auditlog.Appender
	policy   WritePolicy
	now      func() time.Time
}

func NewLedger(orders *repositories.OrderRepository, products *repositories.ProductRepository, notify Notifier, audit auditlog.Appender, policy WritePolicy) *Ledger {
	return &Ledger{
		orders:   orders,
		products: products,
		notify:   notify,
		audit:    audit,
		policy:   policy,
		now:      time.Now,
	}
}

// Place creates a Pending order for quantity units of a product and then
// decrements the product's stock in a second write. The two writes are not
// atomic: if the decrement fails the order stays and a
// *StockAdjustmentError is returned alongside it.
func (l *Ledger) Place(ctx context.Context, customerID, productID string, quantity int) (models.Order, error) {
	log := logger.Component(ctx, "ledger")

	switch {
	case strings.TrimSpace(customerID) == "":
		metrics.OrdersPlaced.WithLabelValues("invalid").Inc()
		return models.Order{}, invalid("customer_id", "is required")
	case strings.TrimSpace(productID) == "":
		metrics.OrdersPlaced.WithLabelValues("invalid").Inc()
		return models.Order{}, invalid("product_id", "is required")
	case quantity <= 0:
		metrics.OrdersPlaced.WithLabelValues("invalid").Inc()
		return models.Order{}, invalid("quantity", "must be greater than zero")
	}

	product, err := l.products.Find(ctx, productID)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			metrics.OrdersPlaced.WithLabelValues("not_found").Inc()
			return models.Order{}, ErrProductNotFound
		}
		metrics.OrdersPlaced.WithLabelValues("error").Inc()
		return models.Order{}, err
	}
	if product.StockQuantity < quantity {
		metrics.OrdersPlaced.WithLabelValues("insufficient_stock").Inc()
		return models.Order{}, fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, quantity, product.StockQuantity)
	}

	name := product.Name
	if name == "" {
		name = "Unknown Product"
	}
	items := []models.OrderItem{{
		ProductID:   product.ID,
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
	}}
	order, err := l.orders.Create(ctx, models.Order{
		ID:         models.NewID(),
		CustomerID: customerID,
		Items:      items,
		Total:      ResolveOrderTotal(items, IndexCatalog([]models.Product{product})),
		Status:     models.StatusPending,
		OrderedAt:  l.now().UTC(),
	})
	if err != nil {
		metrics.OrdersPlaced.WithLabelValues("error").Inc()
		return models.Order{}, fmt.Errorf("place order: %w", err)
	}

	if err := l.decrementStock(ctx, product, quantity); err != nil {
		metrics.OrdersPlaced.WithLabelValues("stock_not_adjusted").Inc()
		log.Error("stock decrement failed after order insert",
			"order_id", order.ID, "product_id", product.ID, "error", err)
		return order, &StockAdjustmentError{Order: order, ProductID: product.ID, Err: err}
	}

	body := fmt.Sprintf("New order placed: %s by customer %s", order.ID, customerID)
	if err := l.notify.Publish(ctx, queue.KindOrderPlaced, body); err != nil {
		log.Warn("order notification not queued", "order_id", order.ID, "error", err)
	}

	metrics.OrdersPlaced.WithLabelValues("ok").Inc()
	log.Info("order placed", "order_id", order.ID, "customer_id", customerID,
		"product_id", product.ID, "quantity", quantity, "total", order.Total.StringFixed(2))
	return order, nil
}

// decrementStock writes product.StockQuantity-quantity. On a token
// mismatch the product is re-read and the decrement re-applied.
func (l *Ledger) decrementStock(ctx context.Context, product models.Product, quantity int) error {
	var err error
	for attempt := 1; attempt <= stockAttempts; attempt++ {
		if attempt > 1 {
			if product, err = l.products.Find(ctx, product.ID); err != nil {
				return err
			}
		}

		now := l.now().UTC()
		product.StockQuantity -= quantity
		if product.StockQuantity < 0 {
			logger.Component(ctx, "ledger").Warn("stock clamped at zero",
				"product_id", product.ID, "short_by", -product.StockQuantity)
			product.StockQuantity = 0
		}
		product.UpdatedAt = &now

		_, err = l.products.Update(ctx, product, l.policy.Mode(product.ETag))
		if !errors.Is(err, record.ErrTokenMismatch) {
			return err
		}
	}
	return err
}

// Get fetches one order.
func (l *Ledger) Get(ctx context.Context, id string) (models.Order, error) {
	o, err := l.orders.Find(ctx, id)
	if err != nil {
		return models.Order{}, notFound(err, ErrOrderNotFound)
	}
	return o, nil
}

// GetForCustomer fetches an order only if it belongs to customerID.
func (l *Ledger) GetForCustomer(ctx context.Context, customerID, id string) (models.Order, error) {
	o, err := l.Get(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if o.CustomerID != customerID {
		return models.Order{}, ErrOrderNotFound
	}
	return o, nil
}

// ListForCustomer returns one page of a customer's orders, newest first.
// The whole partition is materialised before paging.
func (l *Ledger) ListForCustomer(ctx context.Context, customerID string, f OrderFilter) (Page[models.Order], error) {
	all, err := l.orders.All(ctx, nil)
	if err != nil {
		return Page[models.Order]{}, err
	}
	mine := lo.Filter(all, func(o models.Order, _ int) bool {
		return o.CustomerID == customerID && f.Match(o)
	})
	newestFirst(mine)
	return Paginate(mine, f.Page, f.PageSize), nil
}

// List is the admin listing across all customers. Totals are re-priced
// through the current catalogue for display; stored totals are untouched.
func (l *Ledger) List(ctx context.Context, f OrderFilter) (Page[OrderView], error) {
	products, err := l.products.All(ctx, nil)
	if err != nil {
		return Page[OrderView]{}, err
	}
	all, err := l.orders.All(ctx, nil)
	if err != nil {
		return Page[OrderView]{}, err
	}

	matched := lo.Filter(all, func(o models.Order, _ int) bool { return f.Match(o) })
	newestFirst(matched)
	page := Paginate(matched, f.Page, f.PageSize)

	catalog := IndexCatalog(products)
	return Page[OrderView]{
		Items:      Views(page.Items, catalog),
		Pagination: page.Pagination,
	}, nil
}

// Views pairs each order with its display total.
func Views(orders []models.Order, catalog CatalogIndex) []OrderView {
	return lo.Map(orders, func(o models.Order, _ int) OrderView {
		return OrderView{Order: o, DisplayTotal: DisplayTotal(o, catalog)}
	})
}

// UpdateStatus overwrites an order's status under the configured write
// policy and records the change in the audit log.
func (l *Ledger) UpdateStatus(ctx context.Context, id, status string) (models.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return models.Order{}, invalid("status", "is required")
	}

	o, err := l.Get(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	o.Status = status

	updated, err := l.orders.Update(ctx, o, l.policy.Mode(o.ETag))
	if err != nil {
		return models.Order{}, notFound(err, ErrOrderNotFound)
	}

	l.audit.Append(ctx, fmt.Sprintf("Order %s status updated to: %s", id, status))
	return updated, nil
}

func newestFirst(orders []models.Order) {
	slices.SortStableFunc(orders, func(a, b models.Order) int {
		return cmp.Compare(b.OrderedAt.UnixNano(), a.OrderedAt.UnixNano())
	})
}
