package repositories

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/record"
)

// ProductRepository maps Products partition entities to models.Product.
type ProductRepository struct {
	store record.Store
}

func NewProductRepository(store record.Store) *ProductRepository {
	return &ProductRepository{store: store}
}

// Find looks up a product by id.
func (r *ProductRepository) Find(ctx context.Context, id string) (models.Product, error) {
	e, err := r.store.Get(ctx, models.PartitionProducts, id)
	if err != nil {
		return models.Product{}, err
	}
	return models.ProductFromEntity(e)
}

// All returns every product, optionally filtered.
func (r *ProductRepository) All(ctx context.Context, keep func(models.Product) bool) ([]models.Product, error) {
	var out []models.Product
	for e, err := range r.store.Scan(ctx, models.PartitionProducts, nil) {
		if err != nil {
			return nil, err
		}
		p, err := models.ProductFromEntity(e)
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Create persists a new product and returns it with its token.
func (r *ProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	e, err := p.ToEntity()
	if err != nil {
		return models.Product{}, err
	}
	stored, err := r.store.Insert(ctx, e)
	if err != nil {
		return models.Product{}, err
	}
	p.Stamp(stored)
	return p, nil
}

// Update replaces the stored product under mode.
func (r *ProductRepository) Update(ctx context.Context, p models.Product, mode record.WriteMode) (models.Product, error) {
	e, err := p.ToEntity()
	if err != nil {
		return models.Product{}, err
	}
	stored, err := r.store.Replace(ctx, e, mode)
	if err != nil {
		return models.Product{}, err
	}
	p.Stamp(stored)
	return p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, models.PartitionProducts, id)
}
