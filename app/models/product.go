package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/storefront/pkg/record"
	"github.com/shopspring/decimal"
)

// Partition names in the record store.
const (
	PartitionProducts  = "Products"
	PartitionOrders    = "Orders"
	PartitionCustomers = "Customers"
)

// NewID returns an opaque row key.
func NewID() string { return uuid.NewString() }

// Product is a catalogue entry.
type Product struct {
	record.Meta
	ID            string          `json:"-"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Category      string          `json:"category"`
	ImageURL      string          `json:"imageUrl"`
	SKU           string          `json:"sku"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdDate"`
	UpdatedAt     *time.Time      `json:"lastUpdated,omitempty"`
}

func (p Product) ToEntity() (record.Entity, error) {
	e, err := record.Encode(PartitionProducts, p.ID, p)
	e.ETag = p.ETag
	return e, err
}

func ProductFromEntity(e record.Entity) (Product, error) {
	var p Product
	if err := record.Decode(e, &p); err != nil {
		return Product{}, err
	}
	p.ID = e.Row
	p.Stamp(e)
	return p, nil
}

// ProductResponse is the API shape of a product: the stored document plus
// its row key.
type ProductResponse struct {
	ID string `json:"id"`
	Product
}

func (p Product) Response() ProductResponse { return ProductResponse{ID: p.ID, Product: p} }

// ProductResponses maps Response over ps.
func ProductResponses(ps []Product) []ProductResponse {
	out := make([]ProductResponse, len(ps))
	for i, p := range ps {
		out[i] = p.Response()
	}
	return out
}
