package repositories

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/record"
)

// OrderRepository reconstructs orders from the Orders partition. A
// malformed item document is logged and the order is returned with no
// items; it never fails the read.
type OrderRepository struct {
	store record.Store
}

func NewOrderRepository(store record.Store) *OrderRepository {
	return &OrderRepository{store: store}
}

func (r *OrderRepository) Find(ctx context.Context, id string) (models.Order, error) {
	e, err := r.store.Get(ctx, models.PartitionOrders, id)
	if err != nil {
		return models.Order{}, err
	}
	o, err := models.OrderFromEntity(e)
	if err != nil {
		return models.Order{}, err
	}
	warnItems(ctx, o)
	return o, nil
}

// All materialises the partition. pred runs on raw entities before decoding.
func (r *OrderRepository) All(ctx context.Context, pred record.Predicate) ([]models.Order, error) {
	entities, err := record.Collect(r.store.Scan(ctx, models.PartitionOrders, pred))
	if err != nil {
		return nil, err
	}
	out := make([]models.Order, 0, len(entities))
	for _, e := range entities {
		o, err := models.OrderFromEntity(e)
		if err != nil {
			logger.Component(ctx, "orders").Warn("skipping unreadable order", "order_id", e.Row, "error", err)
			continue
		}
		warnItems(ctx, o)
		out = append(out, o)
	}
	return out, nil
}

func (r *OrderRepository) Create(ctx context.Context, o models.Order) (models.Order, error) {
	e, err := o.ToEntity()
	if err != nil {
		return models.Order{}, err
	}
	stored, err := r.store.Insert(ctx, e)
	if err != nil {
		return models.Order{}, err
	}
	o.Stamp(stored)
	return o, nil
}

func (r *OrderRepository) Update(ctx context.Context, o models.Order, mode record.WriteMode) (models.Order, error) {
	e, err := o.ToEntity()
	if err != nil {
		return models.Order{}, err
	}
	stored, err := r.store.Replace(ctx, e, mode)
	if err != nil {
		return models.Order{}, err
	}
	o.Stamp(stored)
	return o, nil
}

func warnItems(ctx context.Context, o models.Order) {
	if o.ItemsErr != nil {
		logger.Component(ctx, "orders").Warn("order items unreadable, treating as empty",
			"order_id", o.ID, "error", o.ItemsErr)
	}
}
