package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auditlog"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shopspring/decimal"
)

// ProductInput is the editable part of a product.
type ProductInput struct {
	Name          string          `json:"name" validate:"required,max=200"`
	Description   string          `json:"description" validate:"max=2000"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity" validate:"min=0"`
	Category      string          `json:"category" validate:"required,max=100"`
	ImageURL      string          `json:"imageUrl"`
	SKU           string          `json:"sku"`
	IsActive      *bool           `json:"isActive,omitempty"`
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return invalid("name", "is required")
	case strings.TrimSpace(in.Category) == "":
		return invalid("category", "is required")
	case !in.Price.IsPositive():
		return invalid("price", "must be greater than zero")
	case in.StockQuantity < 0:
		return invalid("stockQuantity", "must not be negative")
	}
	return nil
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Category   string
	ActiveOnly bool
	Page       int
	PageSize   int
}

// Catalog is thin CRUD over the Products partition. Catalogue edits never
// touch existing orders.
type Catalog struct {
	products *repositories.ProductRepository
	notify   Notifier
	audit    auditlog.Appender
	policy   WritePolicy
	now      func() time.Time
}

func NewCatalog(products *repositories.ProductRepository, notify Notifier, audit auditlog.Appender, policy WritePolicy) *Catalog {
	return &Catalog{products: products, notify: notify, audit: audit, policy: policy, now: time.Now}
}

func (c *Catalog) Create(ctx context.Context, in ProductInput) (models.Product, error) {
	if err := in.validate(); err != nil {
		return models.Product{}, err
	}

	p, err := c.products.Create(ctx, models.Product{
		ID:            models.NewID(),
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		Category:      strings.TrimSpace(in.Category),
		ImageURL:      in.ImageURL,
		SKU:           in.SKU,
		IsActive:      in.IsActive == nil || *in.IsActive,
		CreatedAt:     c.now().UTC(),
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("create product: %w", err)
	}

	body := fmt.Sprintf("New product added: %s (ID: %s)", p.Name, p.ID)
	if err := c.notify.Publish(ctx, queue.KindProductAdded, body); err != nil {
		logger.Component(ctx, "catalog").Warn("product notification not queued", "product_id", p.ID, "error", err)
	}
	c.audit.Append(ctx, fmt.Sprintf("Product added: %s (ID: %s)", p.Name, p.ID))
	return p, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (models.Product, error) {
	p, err := c.products.Find(ctx, id)
	if err != nil {
		return models.Product{}, notFound(err, ErrProductNotFound)
	}
	return p, nil
}

// All returns every product; used to build the pricing catalogue.
func (c *Catalog) All(ctx context.Context) ([]models.Product, error) {
	return c.products.All(ctx, nil)
}

// List pages products sorted by name.
func (c *Catalog) List(ctx context.Context, f ProductFilter) (Page[models.Product], error) {
	all, err := c.products.All(ctx, func(p models.Product) bool {
		if f.ActiveOnly && !p.IsActive {
			return false
		}
		return f.Category == "" || strings.EqualFold(p.Category, f.Category)
	})
	if err != nil {
		return Page[models.Product]{}, err
	}
	sortProducts(all)
	return Paginate(all, f.Page, f.PageSize), nil
}

// Categories lists distinct categories, sorted.
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	all, err := c.products.All(ctx, nil)
	if err != nil {
		return nil, err
	}
	cats := lo.Uniq(lo.FilterMap(all, func(p models.Product, _ int) (string, bool) {
		return p.Category, p.Category != ""
	}))
	slices.Sort(cats)
	return cats, nil
}

// Update replaces the editable fields, keeping the creation date.
func (c *Catalog) Update(ctx context.Context, id string, in ProductInput) (models.Product, error) {
	if err := in.validate(); err != nil {
		return models.Product{}, err
	}
	p, err := c.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	now := c.now().UTC()
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.StockQuantity = in.StockQuantity
	p.Category = strings.TrimSpace(in.Category)
	p.ImageURL = in.ImageURL
	p.SKU = in.SKU
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = &now

	updated, err := c.products.Update(ctx, p, c.policy.Mode(p.ETag))
	if err != nil {
		return models.Product{}, notFound(err, ErrProductNotFound)
	}
	c.audit.Append(ctx, fmt.Sprintf("Product updated: %s (ID: %s)", p.Name, p.ID))
	return updated, nil
}

// ToggleActive flips the active flag.
func (c *Catalog) ToggleActive(ctx context.Context, id string) (models.Product, error) {
	p, err := c.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	now := c.now().UTC()
	p.IsActive = !p.IsActive
	p.UpdatedAt = &now

	updated, err := c.products.Update(ctx, p, c.policy.Mode(p.ETag))
	if err != nil {
		return models.Product{}, notFound(err, ErrProductNotFound)
	}
	state := lo.Ternary(updated.IsActive, "activated", "deactivated")
	c.audit.Append(ctx, fmt.Sprintf("Product %s: %s (ID: %s)", state, p.Name, p.ID))
	return updated, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	p, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := c.products.Delete(ctx, id); err != nil {
		return notFound(err, ErrProductNotFound)
	}
	c.audit.Append(ctx, fmt.Sprintf("Product deleted: %s (ID: %s)", p.Name, id))
	return nil
}

func sortProducts(ps []models.Product) {
	slices.SortStableFunc(ps, func(a, b models.Product) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}
