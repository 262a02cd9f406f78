package graphql

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auditlog"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/record"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestOrdersQueryShowsDisplayTotals(t *testing.T) {
	ctx := context.Background()
	store := record.NewMemory()
	products := repositories.NewProductRepository(store)
	orders := repositories.NewOrderRepository(store)
	customers := repositories.NewCustomerRepository(store)
	q := queue.New(queue.NewMemoryDriver())
	audit := auditlog.Discard{}

	_, err := products.Create(ctx, models.Product{ID: "p1", Name: "Lamp", Price: decimal.RequireFromString("3.00"), StockQuantity: 2, Category: "Home"})
	require.NoError(t, err)
	_, err = orders.Create(ctx, models.Order{
		ID: "o1", CustomerID: "c1", Status: models.StatusPending, OrderedAt: time.Now(),
		Items: []models.OrderItem{{ProductID: "p1", ProductName: "Lamp", Quantity: 4}},
	})
	require.NoError(t, err)

	schema, err := NewSchema(Deps{
		Ledger:     services.NewLedger(orders, products, q, audit, services.WritePolicy{}),
		Catalog:    services.NewCatalog(products, q, audit, services.WritePolicy{}),
		Dashboards: services.NewDashboards(orders, products, customers, q, cache.NewMemory(), time.Minute),
	})
	require.NoError(t, err)

	res := graphql.Do(graphql.Params{
		Schema:        schema,
		Context:       ctx,
		RequestString: `{ orders(status: "pending") { total items { id storedTotal displayTotal items { productName unitPrice } } } dashboard { totalOrders pendingOrders } }`,
	})
	require.False(t, res.HasErrors(), "%v", res.Errors)

	raw, err := json.Marshal(res.Data)
	require.NoError(t, err)
	body := string(raw)
	assert.Equal(t, int64(1), gjson.Get(body, "orders.total").Int())
	assert.Equal(t, "0.00", gjson.Get(body, "orders.items.0.storedTotal").String())
	assert.Equal(t, "12.00", gjson.Get(body, "orders.items.0.displayTotal").String())
	assert.Equal(t, "Lamp", gjson.Get(body, "orders.items.0.items.0.productName").String())
	assert.Equal(t, int64(1), gjson.Get(body, "dashboard.pendingOrders").Int())
}
