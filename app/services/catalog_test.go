package services_test

import (
	"context"
	"testing"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *env) catalog() *services.Catalog {
	return services.NewCatalog(e.products, e.notify, e.audit, services.WritePolicy{})
}

func lampInput() services.ProductInput {
	return services.ProductInput{Name: "Lamp", Price: dec("24.50"), StockQuantity: 3, Category: "Home"}
}

func TestCatalogCreate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	p, err := e.catalog().Create(ctx, lampInput())
	require.NoError(t, err)
	assert.True(t, p.IsActive)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := e.catalog().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", got.Name)
	assert.Equal(t, []string{"New product added: Lamp (ID: " + p.ID + ")"}, e.notify.bodies)
}

func TestCatalogCreateValidates(t *testing.T) {
	e := newEnv(t)
	for name, mutate := range map[string]func(*services.ProductInput){
		"no name":        func(in *services.ProductInput) { in.Name = " " },
		"no category":    func(in *services.ProductInput) { in.Category = "" },
		"zero price":     func(in *services.ProductInput) { in.Price = dec("0") },
		"negative stock": func(in *services.ProductInput) { in.StockQuantity = -1 },
	} {
		t.Run(name, func(t *testing.T) {
			in := lampInput()
			mutate(&in)
			_, err := e.catalog().Create(context.Background(), in)
			assert.True(t, services.IsValidation(err), "got %v", err)
		})
	}
	assert.Zero(t, e.mem.Writes)
}

func TestCatalogUpdateKeepsCreatedDate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p, err := e.catalog().Create(ctx, lampInput())
	require.NoError(t, err)

	in := lampInput()
	in.Price = dec("30")
	updated, err := e.catalog().Update(ctx, p.ID, in)
	require.NoError(t, err)
	assert.True(t, p.CreatedAt.Equal(updated.CreatedAt))
	require.NotNil(t, updated.UpdatedAt)
	assert.True(t, dec("30").Equal(updated.Price))

	_, err = e.catalog().Update(ctx, "missing", in)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestCatalogListAndToggle(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	c := e.catalog()
	lamp, err := c.Create(ctx, lampInput())
	require.NoError(t, err)
	_, err = c.Create(ctx, services.ProductInput{Name: "Apron", Price: dec("9"), Category: "Kitchen"})
	require.NoError(t, err)

	page, err := c.List(ctx, services.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Apron", page.Items[0].Name)

	page, err = c.List(ctx, services.ProductFilter{Category: "home"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	toggled, err := c.ToggleActive(ctx, lamp.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	page, err = c.List(ctx, services.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Apron", page.Items[0].Name)

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Home", "Kitchen"}, cats)
}

func TestCatalogDeleteAudits(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p, err := e.catalog().Create(ctx, lampInput())
	require.NoError(t, err)

	require.NoError(t, e.catalog().Delete(ctx, p.ID))
	assert.Contains(t, e.audit.Lines(), "Product deleted: Lamp (ID: "+p.ID+")")

	assert.ErrorIs(t, e.catalog().Delete(ctx, p.ID), services.ErrProductNotFound)
}
