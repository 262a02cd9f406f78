package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/record"
	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// OrderItem is embedded in its Order and never stored on its own.
// UnitPrice is the snapshot taken at placement; zero means it was never
// captured.
type OrderItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Order is the in-memory shape handed to callers. Items are decoded from
// the single serialized column of the stored document.
type Order struct {
	record.Meta
	ID         string          `json:"id"`
	CustomerID string          `json:"customerId"`
	Items      []OrderItem     `json:"items"`
	Total      decimal.Decimal `json:"totalAmount"`
	Status     string          `json:"status"`
	OrderedAt  time.Time       `json:"orderDate"`

	// ItemsErr is set when the stored item document could not be decoded;
	// Items is then empty.
	ItemsErr error `json:"-"`

	// itemsRaw keeps the undecodable document so writes put it back as read.
	itemsRaw string
}

// HasItems reports whether the order carries a decoded item collection.
func (o Order) HasItems() bool { return len(o.Items) > 0 }

// orderDoc is the persisted attribute document.
type orderDoc struct {
	CustomerID  string          `json:"customerId"`
	ItemsJSON   string          `json:"itemsJson"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
	OrderDate   time.Time       `json:"orderDate"`
}

// ToEntity encodes the order. An order read with ItemsErr set writes its
// original item document back untouched.
func (o Order) ToEntity() (record.Entity, error) {
	items := o.itemsRaw
	if o.ItemsErr == nil {
		var err error
		if items, err = EncodeItems(o.Items); err != nil {
			return record.Entity{}, err
		}
	}
	e, err := record.Encode(PartitionOrders, o.ID, orderDoc{
		CustomerID:  o.CustomerID,
		ItemsJSON:   items,
		TotalAmount: o.Total,
		Status:      o.Status,
		OrderDate:   o.OrderedAt.UTC(),
	})
	e.ETag = o.ETag
	return e, err
}

// OrderFromEntity rebuilds an Order. A malformed item document does not fail
// the read: the order comes back with no items and ItemsErr set.
func OrderFromEntity(e record.Entity) (Order, error) {
	var doc orderDoc
	if err := record.Decode(e, &doc); err != nil {
		return Order{}, err
	}
	o := Order{
		ID:         e.Row,
		CustomerID: doc.CustomerID,
		Total:      doc.TotalAmount,
		Status:     doc.Status,
		OrderedAt:  doc.OrderDate,
	}
	o.Stamp(e)

	items, err := DecodeItems(doc.ItemsJSON)
	if err != nil {
		o.ItemsErr = fmt.Errorf("order %s: %w", e.Row, err)
		o.itemsRaw = doc.ItemsJSON
		return o, nil
	}
	o.Items = items
	return o, nil
}

// ── Item document codec ──────────────────────────────────────────────────────

// DecodeError marks a stored item document that is not valid JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "malformed item document: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err came from a malformed item document.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// itemDoc keeps unitPrice a JSON number on disk.
type itemDoc struct {
	ProductID   string      `json:"productId"`
	ProductName string      `json:"productName"`
	Quantity    int         `json:"quantity"`
	UnitPrice   json.Number `json:"unitPrice"`
}

// EncodeItems serializes items as a JSON array preserving order. No items
// encodes as the empty string, matching legacy rows.
func EncodeItems(items []OrderItem) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	docs := make([]itemDoc, len(items))
	for i, it := range items {
		docs[i] = itemDoc{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   json.Number(it.UnitPrice.String()),
		}
	}
	b, err := json.Marshal(docs)
	if err != nil {
		return "", fmt.Errorf("encode items: %w", err)
	}
	return string(b), nil
}

// DecodeItems parses an item document. An empty document yields no items.
func DecodeItems(doc string) ([]OrderItem, error) {
	if doc == "" {
		return nil, nil
	}
	var docs []itemDoc
	if err := json.Unmarshal([]byte(doc), &docs); err != nil {
		return nil, &DecodeError{Err: err}
	}
	items := make([]OrderItem, len(docs))
	for i, d := range docs {
		price := decimal.Zero
		if d.UnitPrice != "" {
			p, err := decimal.NewFromString(string(d.UnitPrice))
			if err != nil {
				return nil, &DecodeError{Err: err}
			}
			price = p
		}
		items[i] = OrderItem{
			ProductID:   d.ProductID,
			ProductName: d.ProductName,
			Quantity:    d.Quantity,
			UnitPrice:   price,
		}
	}
	return items, nil
}
