package services

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shopspring/decimal"
)

const (
	recentOrders      = 5
	lowStockThreshold = 10
)

// AdminDashboard is the administrator landing summary.
type AdminDashboard struct {
	TotalCustomers     int             `json:"totalCustomers"`
	TotalProducts      int             `json:"totalProducts"`
	TotalOrders        int             `json:"totalOrders"`
	PendingOrders      int             `json:"pendingOrders"`
	LowStockProducts   int             `json:"lowStockProducts"`
	OutOfStockProducts int             `json:"outOfStockProducts"`
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	RecentOrders       []OrderView     `json:"recentOrders"`
}

// CustomerDashboard summarises one customer's orders.
type CustomerDashboard struct {
	Customer      models.CustomerProfile `json:"customer"`
	TotalOrders   int                    `json:"totalOrders"`
	PendingOrders int                    `json:"pendingOrders"`
	TotalSpent    decimal.Decimal        `json:"totalSpent"`
	RecentOrders  []OrderView            `json:"recentOrders"`
}

// Stats are cheap counters for the stats API.
type Stats struct {
	Customers     int   `json:"customers"`
	Products      int   `json:"products"`
	PendingQueued int64 `json:"pendingMessages"`
}

// Backlog reports queued notifications. *queue.Queue implements it.
type Backlog interface {
	Pending(ctx context.Context) (int64, error)
}

type Dashboards struct {
	orders    *repositories.OrderRepository
	products  *repositories.ProductRepository
	customers *repositories.CustomerRepository
	backlog   Backlog
	cache     cache.Cache
	ttl       time.Duration
}

func NewDashboards(orders *repositories.OrderRepository, products *repositories.ProductRepository, customers *repositories.CustomerRepository, backlog Backlog, c cache.Cache, ttl time.Duration) *Dashboards {
	return &Dashboards{orders: orders, products: products, customers: customers, backlog: backlog, cache: c, ttl: ttl}
}

// Admin builds the admin dashboard. Recent order totals are re-priced for
// display; revenue sums the stored totals of Completed orders.
func (d *Dashboards) Admin(ctx context.Context) (AdminDashboard, error) {
	products, err := d.products.All(ctx, nil)
	if err != nil {
		return AdminDashboard{}, err
	}
	customers, err := d.customers.All(ctx, nil)
	if err != nil {
		return AdminDashboard{}, err
	}
	orders, err := d.orders.All(ctx, nil)
	if err != nil {
		return AdminDashboard{}, err
	}

	newestFirst(orders)
	revenue := lo.Reduce(orders, func(sum decimal.Decimal, o models.Order, _ int) decimal.Decimal {
		if o.Status == models.StatusCompleted {
			return sum.Add(o.Total)
		}
		return sum
	}, decimal.Zero)

	return AdminDashboard{
		TotalCustomers:     len(customers),
		TotalProducts:      len(products),
		TotalOrders:        len(orders),
		PendingOrders:      lo.CountBy(orders, isPending),
		LowStockProducts:   lo.CountBy(products, func(p models.Product) bool { return p.StockQuantity < lowStockThreshold }),
		OutOfStockProducts: lo.CountBy(products, func(p models.Product) bool { return p.StockQuantity <= 0 }),
		TotalRevenue:       revenue,
		RecentOrders:       Views(lo.Slice(orders, 0, recentOrders), IndexCatalog(products)),
	}, nil
}

// Customer builds the dashboard for one customer.
func (d *Dashboards) Customer(ctx context.Context, customerID string) (CustomerDashboard, error) {
	c, err := d.customers.Find(ctx, customerID)
	if err != nil {
		return CustomerDashboard{}, notFound(err, ErrCustomerNotFound)
	}
	products, err := d.products.All(ctx, nil)
	if err != nil {
		return CustomerDashboard{}, err
	}
	all, err := d.orders.All(ctx, nil)
	if err != nil {
		return CustomerDashboard{}, err
	}

	mine := lo.Filter(all, func(o models.Order, _ int) bool { return o.CustomerID == customerID })
	newestFirst(mine)
	spent := lo.Reduce(mine, func(sum decimal.Decimal, o models.Order, _ int) decimal.Decimal {
		return sum.Add(o.Total)
	}, decimal.Zero)

	return CustomerDashboard{
		Customer:      c.Profile(),
		TotalOrders:   len(mine),
		PendingOrders: lo.CountBy(mine, isPending),
		TotalSpent:    spent,
		RecentOrders:  Views(lo.Slice(mine, 0, recentOrders), IndexCatalog(products)),
	}, nil
}

// Stats returns cached counters.
func (d *Dashboards) Stats(ctx context.Context) (Stats, error) {
	return cache.Remember(ctx, d.cache, "stats:summary", d.ttl, func(ctx context.Context) (Stats, error) {
		products, err := d.products.All(ctx, nil)
		if err != nil {
			return Stats{}, err
		}
		customers, err := d.customers.All(ctx, nil)
		if err != nil {
			return Stats{}, err
		}
		pending, err := d.backlog.Pending(ctx)
		if err != nil {
			return Stats{}, err
		}
		return Stats{Customers: len(customers), Products: len(products), PendingQueued: pending}, nil
	})
}

func isPending(o models.Order) bool { return o.Status == models.StatusPending }
