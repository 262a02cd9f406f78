package repositories

import (
	"context"
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/record"
)

type CustomerRepository struct {
	store record.Store
}

func NewCustomerRepository(store record.Store) *CustomerRepository {
	return &CustomerRepository{store: store}
}

func (r *CustomerRepository) Find(ctx context.Context, id string) (models.Customer, error) {
	e, err := r.store.Get(ctx, models.PartitionCustomers, id)
	if err != nil {
		return models.Customer{}, err
	}
	return models.CustomerFromEntity(e)
}

// FindByEmail scans for a case-insensitive email match. ok is false when
// nobody has that email.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (c models.Customer, ok bool, err error) {
	for e, err := range r.store.Scan(ctx, models.PartitionCustomers, nil) {
		if err != nil {
			return models.Customer{}, false, err
		}
		c, err := models.CustomerFromEntity(e)
		if err != nil {
			return models.Customer{}, false, err
		}
		if strings.EqualFold(c.Email, email) {
			return c, true, nil
		}
	}
	return models.Customer{}, false, nil
}

func (r *CustomerRepository) All(ctx context.Context, keep func(models.Customer) bool) ([]models.Customer, error) {
	var out []models.Customer
	for e, err := range r.store.Scan(ctx, models.PartitionCustomers, nil) {
		if err != nil {
			return nil, err
		}
		c, err := models.CustomerFromEntity(e)
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c models.Customer) (models.Customer, error) {
	e, err := c.ToEntity()
	if err != nil {
		return models.Customer{}, err
	}
	stored, err := r.store.Insert(ctx, e)
	if err != nil {
		return models.Customer{}, err
	}
	c.Stamp(stored)
	return c, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c models.Customer, mode record.WriteMode) (models.Customer, error) {
	e, err := c.ToEntity()
	if err != nil {
		return models.Customer{}, err
	}
	stored, err := r.store.Replace(ctx, e, mode)
	if err != nil {
		return models.Customer{}, err
	}
	c.Stamp(stored)
	return c, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, models.PartitionCustomers, id)
}
